package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Show the effective configuration.

Settings come from OCGB_* environment variables; "ocgb config env" lists them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Usage(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configEnvCmd)
}

func printConfig(out io.Writer, cfg *config.Config) error {
	token := "(not set)"
	if cfg.Database.AuthToken != "" {
		token = "(set)"
	}
	otlp := "disabled"
	if cfg.OTEL.Enabled {
		otlp = cfg.OTEL.Endpoint
	}

	w := newTable(out)
	fmt.Fprintf(w, "Listen address:\t%s\n", cfg.Addr)
	fmt.Fprintf(w, "API base URL:\t%s\n", cfg.APIBaseURL)
	fmt.Fprintf(w, "Catalog timeout:\t%s\n", cfg.CatalogTimeout)
	fmt.Fprintf(w, "Shutdown timeout:\t%s\n", cfg.ShutdownTimeout)
	fmt.Fprintf(w, "Database:\t%s\n", cfg.Database.URL)
	fmt.Fprintf(w, "Auth token:\t%s\n", token)
	fmt.Fprintf(w, "Metrics:\t%s\n", otlp)
	fmt.Fprintf(w, "Debug:\t%t\n", cfg.Debug)
	return w.Flush()
}
