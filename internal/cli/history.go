package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List generated request URLs",
	Long: `List the request URLs recorded by "Generate Data File" or "ocgb request --save".

Examples:
  ocgb history            # Last 10 requests
  ocgb history -n 0       # Everything`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error {
		return runHistory(ctx, app, cmd.OutOrStdout(), historyLast)
	}),
}

var historyLast int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLast, "last", "n", 10, "Number of requests to show, 0 for all")
}

func runHistory(ctx context.Context, app *AppContext, out io.Writer, limit int) error {
	records, err := app.Builder.History(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list request history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No requests generated yet.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "CREATED\tFORMAT\tURL")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", util.FormatDateTime(r.CreatedAt), r.Format, r.URL)
	}
	return w.Flush()
}
