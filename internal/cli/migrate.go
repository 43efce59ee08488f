package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/config"
	"github.com/emiliopalmerini/ocgbuilder/internal/migrate"
	"github.com/emiliopalmerini/ocgbuilder/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations.

Other commands apply pending migrations on startup; use this command to
inspect the schema version or roll back.

Examples:
  ocgb migrate up        # Run all pending migrations
  ocgb migrate up 1      # Migrate up to version 1
  ocgb migrate down 0    # Roll back everything
  ocgb migrate status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up [version]",
	Short: "Apply pending migrations",
	Args:  cobra.MaximumNArgs(1),
	RunE: withDB(func(ctx context.Context, db *sql.DB, out io.Writer, args []string) error {
		target := -1
		if len(args) == 1 {
			v, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			target = v
		}
		return runMigrateUp(ctx, db, out, target)
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down <version>",
	Short: "Roll back to a version",
	Args:  cobra.ExactArgs(1),
	RunE: withDB(func(ctx context.Context, db *sql.DB, out io.Writer, args []string) error {
		target, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		return runMigrateDown(ctx, db, out, target)
	}),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version and pending migrations",
	Args:  cobra.NoArgs,
	RunE: withDB(func(ctx context.Context, db *sql.DB, out io.Writer, args []string) error {
		return runMigrateStatus(ctx, db, out)
	}),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

// withDB opens the configured database without applying migrations.
func withDB(fn func(ctx context.Context, db *sql.DB, out io.Writer, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd.Context(), db, cmd.OutOrStdout(), args)
	}
}

func parseVersion(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version number: %s", s)
	}
	return v, nil
}

func runMigrateUp(ctx context.Context, db *sql.DB, out io.Writer, target int) error {
	all, err := migrate.Load(migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	applied, err := migrate.Up(ctx, db, all, target)
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	version, _, err := migrate.CurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", version, applied)
	return nil
}

func runMigrateDown(ctx context.Context, db *sql.DB, out io.Writer, target int) error {
	all, err := migrate.Load(migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	reverted, err := migrate.Down(ctx, db, all, target)
	if err != nil {
		return err
	}
	if reverted == 0 {
		fmt.Fprintln(out, "Already at target version")
		return nil
	}
	fmt.Fprintf(out, "Migrated to version %d (%d migrations reverted)\n", target, reverted)
	return nil
}

func runMigrateStatus(ctx context.Context, db *sql.DB, out io.Writer) error {
	all, err := migrate.Load(migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	st, err := migrate.CurrentStatus(ctx, db, all)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Current version: %d", st.Version)
	if st.Dirty {
		fmt.Fprint(out, " (dirty, manual intervention required)")
	}
	fmt.Fprintln(out)
	if len(st.Pending) == 0 {
		fmt.Fprintln(out, "No pending migrations")
		return nil
	}
	fmt.Fprintln(out, "Pending:")
	for _, m := range st.Pending {
		fmt.Fprintf(out, "  %s\n", m)
	}
	return nil
}
