// Package migrate applies the embedded SQL migrations to the local database.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/ocgbuilder/migrations"
)

type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

func (m Migration) String() string {
	return fmt.Sprintf("%03d_%s", m.Version, m.Name)
}

// Status describes where a database stands relative to the known migrations.
type Status struct {
	Version int
	Dirty   bool
	Pending []Migration
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

func ensureTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// CurrentVersion returns the applied version and whether a migration was interrupted.
func CurrentVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	if err := ensureTable(ctx, db); err != nil {
		return 0, false, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var version, dirty int
	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

func setVersion(ctx context.Context, db *sql.DB, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 && !dirty {
		return nil
	}
	_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// Load reads NNN_name.up.sql files (and their optional .down.sql pairs) from fsys.
func Load(fsys fs.FS) ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matches := upPattern.FindStringSubmatch(path.Base(p))
		if matches == nil {
			return nil
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("invalid migration version in %s: %w", p, err)
		}
		upSQL, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		downPath := path.Join(path.Dir(p), matches[1]+"_"+matches[2]+".down.sql")
		downSQL, err := fs.ReadFile(fsys, downPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", downPath, err)
		}

		result = append(result, Migration{
			Version: version,
			Name:    matches[2],
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	for i := 1; i < len(result); i++ {
		if result[i].Version == result[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", result[i].Version)
		}
	}
	return result, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration, up bool) error {
	direction, script, target := "up", m.UpSQL, m.Version
	if !up {
		direction, script, target = "down", m.DownSQL, m.Version-1
	}
	slog.Info("applying migration", "migration", m.String(), "direction", direction)

	if err := setVersion(ctx, db, m.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s %s: %w", m, direction, err)
		}
	}
	if err := setVersion(ctx, db, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

func cleanVersion(ctx context.Context, db *sql.DB) (int, error) {
	current, dirty, err := CurrentVersion(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database is in dirty state at version %d", current)
	}
	return current, nil
}

// Up applies pending migrations up to and including target. A negative
// target applies everything. It returns the number of migrations applied.
func Up(ctx context.Context, db *sql.DB, all []Migration, target int) (int, error) {
	current, err := cleanVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range all {
		if m.Version <= current {
			continue
		}
		if target >= 0 && m.Version > target {
			break
		}
		if err := apply(ctx, db, m, true); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Down reverts applied migrations until the database is at target.
func Down(ctx context.Context, db *sql.DB, all []Migration, target int) (int, error) {
	current, err := cleanVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	reverted := 0
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if m.Version > current {
			continue
		}
		if m.Version <= target {
			break
		}
		if m.DownSQL == "" {
			return reverted, fmt.Errorf("no down migration for version %d", m.Version)
		}
		if err := apply(ctx, db, m, false); err != nil {
			return reverted, err
		}
		reverted++
	}
	return reverted, nil
}

// CurrentStatus reports the applied version and the migrations still pending.
func CurrentStatus(ctx context.Context, db *sql.DB, all []Migration) (Status, error) {
	current, dirty, err := CurrentVersion(ctx, db)
	if err != nil {
		return Status{}, err
	}
	st := Status{Version: current, Dirty: dirty}
	for _, m := range all {
		if m.Version > current {
			st.Pending = append(st.Pending, m)
		}
	}
	return st, nil
}

// RunAll applies every pending embedded migration.
func RunAll(ctx context.Context, db *sql.DB) error {
	all, err := Load(migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if _, err := Up(ctx, db, all, -1); err != nil {
		return err
	}
	return nil
}
