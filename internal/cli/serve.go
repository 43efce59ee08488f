package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web request builder",
	Long: `Start the web request builder.

The catalog loads in the background; the builder page answers 503 until it
is available.

Examples:
  ocgb serve                 # Listen on OCGB_ADDR (default :8080)
  ocgb serve --addr :3000    # Listen on port 3000
  ocgb serve --offline       # Use the embedded sample catalog`,
	RunE: runServe,
}

var (
	serveAddr    string
	serveHistory int
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Address to listen on (overrides OCGB_ADDR)")
	serveCmd.Flags().IntVar(&serveHistory, "history", 10, "Number of recent requests shown on the page")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	return serve(cmd.Context(), app, serveAddr, serveHistory)
}

func serve(ctx context.Context, app *AppContext, addr string, history int) error {
	if addr == "" {
		addr = app.Config.Addr
	}

	// The page reports the load error itself, so nothing waits on this task.
	task := app.Catalog.Start(ctx)
	go func() {
		if _, err := task.Wait(); err != nil {
			slog.Warn("builder is running without a catalog", "error", err)
		}
	}()

	srv := web.NewServer(web.Config{
		Addr:            addr,
		ShutdownTimeout: app.Config.ShutdownTimeout,
		HistoryLimit:    history,
	}, app.Catalog, app.Builder, app.AOIRepo)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
