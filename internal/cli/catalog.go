package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

var catalogKinds = []string{"archives", "scenarios", "models", "variables", "statistics", "formats", "groupings"}

var catalogCmd = &cobra.Command{
	Use:   "catalog [kind]",
	Short: "Show the builder catalog",
	Long: `Show the catalog the builder offers.

Without arguments a summary is printed. Kinds: ` + strings.Join(catalogKinds, ", ") + `.

Examples:
  ocgb catalog
  ocgb catalog models
  ocgb catalog statistics --json`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: catalogKinds,
	RunE:      runCatalogCmd,
}

var catalogJSON bool

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print JSON instead of a table")
}

func runCatalogCmd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	kind := ""
	if len(args) == 1 {
		kind = args[0]
	}
	return runCatalog(cmd.Context(), app, cmd.OutOrStdout(), kind, catalogJSON)
}

func runCatalog(ctx context.Context, app *AppContext, out io.Writer, kind string, asJSON bool) error {
	cat, err := app.Catalog.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	var data any
	switch kind {
	case "":
		data = catalogCounts(cat)
	case "archives":
		data = cat.Archives
	case "scenarios":
		data = cat.Scenarios
	case "models":
		data = cat.Models
	case "variables":
		data = cat.Variables
	case "statistics":
		data = cat.Statistics.Root.Children
	case "formats":
		formats := make([]map[string]string, len(domain.OutputFormats))
		for i, f := range domain.OutputFormats {
			formats[i] = map[string]string{"value": f.Value, "text": f.Text}
		}
		data = formats
	case "groupings":
		data = domain.GroupingIntervals
	default:
		return fmt.Errorf("unknown catalog kind %q (want one of %s)", kind, strings.Join(catalogKinds, ", "))
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return printCatalog(out, cat, kind)
}

func catalogCounts(cat *domain.Catalog) map[string]int {
	return map[string]int{
		"archives":   len(cat.Archives),
		"scenarios":  len(cat.Scenarios),
		"models":     len(cat.Models),
		"variables":  len(cat.Variables),
		"statistics": len(cat.Statistics.Keys()),
		"formats":    len(domain.OutputFormats),
		"groupings":  len(domain.GroupingIntervals),
	}
}

func printCatalog(out io.Writer, cat *domain.Catalog, kind string) error {
	w := newTable(out)
	switch kind {
	case "":
		counts := catalogCounts(cat)
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "KIND\tCOUNT")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%d\n", name, counts[name])
		}
	case "archives":
		fmt.Fprintln(w, "SLUG\tCODE\tNAME")
		for _, a := range cat.Archives {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.URLSlug, a.Code, a.Name)
		}
	case "scenarios":
		fmt.Fprintln(w, "SLUG\tNAME\tDESCRIPTION")
		for _, s := range cat.Scenarios {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.URLSlug, s.Name, s.Description)
		}
	case "models":
		fmt.Fprintln(w, "SLUG\tNAME\tORGANIZATION")
		for _, m := range cat.Models {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.URLSlug, m.Name, m.Organization)
		}
	case "variables":
		fmt.Fprintln(w, "SLUG\tNAME\tUNITS")
		for _, v := range cat.Variables {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.URLSlug, v.Name, v.Units)
		}
	case "statistics":
		fmt.Fprintln(w, "KEY\tNAME\tPARAMETERS")
		cat.Statistics.Walk(func(n domain.StatisticNode, depth int) {
			indent := strings.Repeat("  ", depth)
			if !n.Leaf {
				fmt.Fprintf(w, "\t%s%s/\t\n", indent, n.Text)
				return
			}
			d, _ := cat.Statistics.Descriptor(n.Key())
			params := "-"
			if labels := d.Split().Labels(); len(labels) > 0 {
				params = strings.Join(labels, ", ")
			}
			fmt.Fprintf(w, "%s\t%s%s\t%s\n", n.Key(), indent, n.Text, params)
		})
	case "formats":
		fmt.Fprintln(w, "FORMAT\tDESCRIPTION")
		for _, f := range domain.OutputFormats {
			fmt.Fprintf(w, "%s\t%s\n", f.Value, f.Text)
		}
	case "groupings":
		fmt.Fprintln(w, "GROUPING")
		for _, g := range domain.GroupingIntervals {
			fmt.Fprintln(w, string(g))
		}
	}
	return w.Flush()
}
