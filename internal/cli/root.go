package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/applog"
)

var rootCmd = &cobra.Command{
	Use:   "ocgb",
	Short: "Build OpenClimateGIS data request URLs",
	Long: `ocgb builds data extraction requests for the OpenClimateGIS API.

Pick an archive, scenario, climate model, variable, run and date range, add
statistics and an area-of-interest, and get back the request URL. The same
builder is available as a web page (ocgb serve) and from the command line.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applog.Init(rootDebug)
	},
}

var (
	rootOffline bool
	rootDebug   bool
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootOffline, "offline", false, "Use the embedded sample catalog instead of the API")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
}
