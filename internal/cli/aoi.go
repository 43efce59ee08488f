package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

var aoiCmd = &cobra.Command{
	Use:   "aoi",
	Short: "Manage areas-of-interest",
	Long: `List, add and delete the areas-of-interest offered by the builder.

Geometries are WKT. AOIs can be exported to and imported from YAML:

  aois:
    - name: boulder
      geometry: POLYGON((-105.3 39.9, -105.2 39.9, -105.2 40.1, -105.3 39.9))`,
}

var aoiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved AOIs",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error {
		return runAOIList(ctx, app, cmd.OutOrStdout())
	}),
}

var aoiAddCmd = &cobra.Command{
	Use:   "add <name> <wkt>",
	Short: "Save a new AOI",
	Example: `  ocgb aoi add boulder 'POINT(-105.27 40.01)'
  ocgb aoi add colorado --file colorado.wkt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withApp(func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error {
		geometry, err := aoiGeometry(args, aoiGeometryFile)
		if err != nil {
			return err
		}
		return runAOIAdd(ctx, app, cmd.OutOrStdout(), args[0], geometry)
	}),
}

var aoiDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an AOI",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error {
		return runAOIDelete(ctx, app, cmd.OutOrStdout(), args[0])
	}),
}

var aoiImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import AOIs from YAML",
	Long:  `Import AOIs from a YAML file ("-" reads stdin). AOIs whose name already exists are skipped.`,
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			in = f
		}
		return runAOIImport(ctx, app, cmd.OutOrStdout(), in)
	}),
}

var aoiExportCmd = &cobra.Command{
	Use:   "export [file.yaml]",
	Short: "Export AOIs as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runAOIExport(ctx, app, cmd.OutOrStdout())
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		if err := runAOIExport(ctx, app, f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}),
}

var aoiGeometryFile string

func init() {
	rootCmd.AddCommand(aoiCmd)
	aoiCmd.AddCommand(aoiListCmd, aoiAddCmd, aoiDeleteCmd, aoiImportCmd, aoiExportCmd)
	aoiAddCmd.Flags().StringVar(&aoiGeometryFile, "file", "", "Read the WKT geometry from a file")
}

// withApp opens the app context around a command body.
func withApp(fn func(ctx context.Context, app *AppContext, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(cmd.Context(), app, cmd, args)
	}
}

func aoiGeometry(args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) == 2:
		return "", errors.New("give the geometry either as an argument or with --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return strings.TrimSpace(string(data)), nil
	case len(args) == 2:
		return args[1], nil
	}
	return "", errors.New("a WKT geometry is required")
}

type aoiFile struct {
	AOIs []domain.AOI `yaml:"aois"`
}

func runAOIList(ctx context.Context, app *AppContext, out io.Writer) error {
	aois, err := app.AOIRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list aois: %w", err)
	}
	if len(aois) == 0 {
		fmt.Fprintln(out, "No areas-of-interest saved.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tGEOMETRY\tCREATED")
	for _, a := range aois {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, util.Truncate(a.Geometry, 48), util.FormatDateTime(a.CreatedAt))
	}
	return w.Flush()
}

func runAOIAdd(ctx context.Context, app *AppContext, out io.Writer, name, geometry string) error {
	aoi := &domain.AOI{Name: strings.TrimSpace(name), Geometry: strings.TrimSpace(geometry)}
	if err := app.AOIRepo.Create(ctx, aoi); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved AOI %s (%s)\n", aoi.Name, aoi.ID)
	return nil
}

func runAOIDelete(ctx context.Context, app *AppContext, out io.Writer, id string) error {
	if err := app.AOIRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("aoi %q not found", id)
		}
		return err
	}
	fmt.Fprintf(out, "Deleted AOI %s\n", id)
	return nil
}

func runAOIImport(ctx context.Context, app *AppContext, out io.Writer, in io.Reader) error {
	var file aoiFile
	if err := yaml.NewDecoder(in).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "Imported 0 AOIs")
			return nil
		}
		return fmt.Errorf("failed to parse aoi file: %w", err)
	}

	existing, err := app.AOIRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list aois: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, a := range existing {
		names[a.Name] = true
	}

	imported, skipped := 0, 0
	for i, a := range file.AOIs {
		aoi := &domain.AOI{Name: strings.TrimSpace(a.Name), Geometry: strings.TrimSpace(a.Geometry)}
		if err := aoi.Validate(); err != nil {
			return fmt.Errorf("aoi #%d: %w", i+1, err)
		}
		if names[aoi.Name] {
			skipped++
			continue
		}
		if err := app.AOIRepo.Create(ctx, aoi); err != nil {
			return err
		}
		names[aoi.Name] = true
		imported++
	}

	fmt.Fprintf(out, "Imported %d AOIs", imported)
	if skipped > 0 {
		fmt.Fprintf(out, " (%d skipped, name already exists)", skipped)
	}
	fmt.Fprintln(out)
	return nil
}

func runAOIExport(ctx context.Context, app *AppContext, out io.Writer) error {
	aois, err := app.AOIRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list aois: %w", err)
	}
	file := aoiFile{AOIs: make([]domain.AOI, len(aois))}
	for i, a := range aois {
		file.AOIs[i] = *a
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode aois: %w", err)
	}
	return enc.Close()
}
