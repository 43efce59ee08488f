package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose statistics and output format interactively",
	Long: `Open the terminal statistic picker.

When you finish (q) the selection is printed as flags for "ocgb request".

Examples:
  ocgb pick
  ocgb pick --calc mean --format csv   # Start from an earlier selection`,
	RunE: runPickCmd,
}

var (
	pickCalcs  []string
	pickFormat string
)

func init() {
	rootCmd.AddCommand(pickCmd)
	pickCmd.Flags().StringArrayVar(&pickCalcs, "calc", nil, "Preselected statistic, repeatable")
	pickCmd.Flags().StringVarP(&pickFormat, "format", "f", domain.DefaultOutputFormat, "Preselected output format")
}

// pickerRunner shows the picker; tests replace it.
type pickerRunner func(ctx context.Context, m tui.Model) (tui.Result, error)

func runPickCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	run := func(ctx context.Context, m tui.Model) (tui.Result, error) {
		return tui.Run(ctx, m)
	}
	return runPick(cmd.Context(), app, cmd.OutOrStdout(), pickFormat, pickCalcs, run)
}

func runPick(ctx context.Context, app *AppContext, out io.Writer, format string, calcs []string, run pickerRunner) error {
	cat, err := app.Catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	initial := make([]domain.Calculation, 0, len(calcs))
	for _, raw := range calcs {
		c, err := domain.ParseCalculation(raw)
		if err != nil {
			return err
		}
		initial = append(initial, c)
	}

	m, err := tui.New(cat.Statistics, format, initial)
	if err != nil {
		return err
	}
	result, err := run(ctx, m)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, pickFlags(result))
	return nil
}

// pickFlags renders the picker result as request flags.
func pickFlags(r tui.Result) string {
	parts := make([]string, 0, 2*len(r.Calculations)+2)
	for _, c := range r.Calculations {
		parts = append(parts, "--calc", shellQuote(c.String()))
	}
	parts = append(parts, "--format", r.Format)
	return strings.Join(parts, " ")
}
