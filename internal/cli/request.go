package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/builder"
	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Build a data request URL",
	Long: `Build a data request URL from flags.

Archive, scenario, model and variable take the URL slugs listed by
"ocgb catalog". --calc may be repeated; statistics with parameters are
written as key(p1,p2).

Examples:
  ocgb request --archive usgs-cida-maurer --scenario sres-a2 \
    --model bccr-bcm2.0 --variable tas --start 2001-01-01 --end 2001-12-31

  ocgb request ... --grouping month --calc mean --calc 'between(0,10)'
  ocgb request ... --aoi <id> --clip --format kml --save`,
	RunE: runRequestCmd,
}

type requestFlags struct {
	archive   string
	scenario  string
	model     string
	variable  string
	run       int
	start     string
	end       string
	aoi       string
	clip      bool
	aggregate bool
	grouping  string
	calcs     []string
	format    string
	save      bool
}

var reqFlags requestFlags

func init() {
	rootCmd.AddCommand(requestCmd)

	f := requestCmd.Flags()
	f.StringVar(&reqFlags.archive, "archive", "", "Archive URL slug")
	f.StringVar(&reqFlags.scenario, "scenario", "", "Emissions scenario URL slug")
	f.StringVar(&reqFlags.model, "model", "", "Climate model URL slug")
	f.StringVar(&reqFlags.variable, "variable", "", "Variable URL slug")
	f.IntVar(&reqFlags.run, "run", domain.DefaultRun, "Run number")
	f.StringVar(&reqFlags.start, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&reqFlags.end, "end", "", "End date (YYYY-MM-DD)")
	f.StringVar(&reqFlags.aoi, "aoi", "", "Area-of-interest ID (see ocgb aoi list)")
	f.BoolVar(&reqFlags.clip, "clip", false, "Clip output to the AOI")
	f.BoolVar(&reqFlags.aggregate, "aggregate", false, "Aggregate geometries")
	f.StringVar(&reqFlags.grouping, "grouping", string(domain.GroupYear), "Grouping interval: year, month or day")
	f.StringArrayVar(&reqFlags.calcs, "calc", nil, "Statistic to compute, repeatable")
	f.StringVarP(&reqFlags.format, "format", "f", domain.DefaultOutputFormat, "Output format")
	f.BoolVar(&reqFlags.save, "save", false, "Record the request in the history")
}

func (f requestFlags) form() builder.Form {
	return builder.Form{
		Archive:      f.archive,
		Scenario:     f.scenario,
		Model:        f.model,
		Variable:     f.variable,
		Run:          strconv.Itoa(f.run),
		Start:        f.start,
		End:          f.end,
		AOI:          f.aoi,
		Clip:         f.clip,
		Aggregate:    f.aggregate,
		Grouping:     f.grouping,
		Calculations: f.calcs,
		Format:       f.format,
	}
}

func runRequestCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	return runRequest(cmd.Context(), app, cmd.OutOrStdout(), reqFlags)
}

func runRequest(ctx context.Context, app *AppContext, out io.Writer, f requestFlags) error {
	if _, err := app.Catalog.Load(ctx); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	var u string
	var err error
	if f.save {
		var record *domain.RequestRecord
		record, err = app.Builder.Generate(ctx, f.form())
		if record != nil {
			u = record.URL
		}
	} else {
		u, _, err = app.Builder.BuildURL(ctx, f.form())
	}
	if err != nil {
		return requestError(err)
	}

	fmt.Fprintln(out, u)
	return nil
}

func requestError(err error) error {
	var verr *builder.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return fmt.Errorf("invalid request:\n  %s", strings.Join(verr.Problems(), "\n  "))
}
