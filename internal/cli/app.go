package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/catalogapi"
	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/otel"
	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/storage"
	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/turso"
	"github.com/emiliopalmerini/ocgbuilder/internal/applog"
	"github.com/emiliopalmerini/ocgbuilder/internal/builder"
	"github.com/emiliopalmerini/ocgbuilder/internal/catalog"
	"github.com/emiliopalmerini/ocgbuilder/internal/config"
	"github.com/emiliopalmerini/ocgbuilder/internal/database"
	"github.com/emiliopalmerini/ocgbuilder/internal/migrate"
	"github.com/emiliopalmerini/ocgbuilder/internal/ports"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config      *config.Config
	DB          *sql.DB
	AOIRepo     ports.AOIRepository
	RequestRepo ports.RequestRepository
	Catalog     *catalog.Store
	Metrics     ports.MetricsExporter
	Builder     *builder.Service
}

// AppOptions overrides how the app context is assembled.
type AppOptions struct {
	Offline bool
	// Source replaces the API client or the offline fixture when set.
	Source ports.CatalogSource
	// Cache replaces the catalog snapshot in the XDG cache directory when set.
	Cache ports.CatalogCache
}

// NewAppContext opens the database, applies pending migrations and wires the
// catalog store, metrics and builder service. The catalog is not loaded yet.
func NewAppContext(ctx context.Context, cfg *config.Config, opts AppOptions) (*AppContext, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	source := opts.Source
	if source == nil {
		if opts.Offline {
			source = catalogapi.NewFixtureSource()
		} else {
			source = catalogapi.NewClient(cfg.APIBaseURL, cfg.CatalogTimeout)
		}
	}

	metrics := otel.New(ctx, cfg.OTELConfig())
	storeOpts := []catalog.Option{catalog.WithMetrics(metrics)}
	cache := opts.Cache
	if cache == nil {
		if c, err := storage.NewCatalogCache(); err != nil {
			slog.Warn("catalog cache disabled", "error", err)
		} else {
			cache = c
		}
	}
	if cache != nil {
		storeOpts = append(storeOpts, catalog.WithCache(cache))
	}
	store := catalog.NewStore(source, storeOpts...)

	aois := turso.NewAOIRepository(db)
	requests := turso.NewRequestRepository(db)

	return &AppContext{
		Config:      cfg,
		DB:          db,
		AOIRepo:     aois,
		RequestRepo: requests,
		Catalog:     store,
		Metrics:     metrics,
		Builder:     builder.NewService(cfg.APIBaseURL, store, aois, requests, metrics),
	}, nil
}

// newApp loads the environment config and builds the app context for a command.
func newApp(cmd *cobra.Command) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Debug && !applog.IsDebug() {
		applog.Init(true)
	}
	return NewAppContext(cmd.Context(), cfg, AppOptions{Offline: rootOffline})
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	if err := ensureLocalDir(cfg.Database.URL); err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.URL, cfg.Database.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ensureLocalDir creates the parent directory of a file: database URL.
func ensureLocalDir(databaseURL string) error {
	path, ok := strings.CutPrefix(databaseURL, "file:")
	if !ok {
		return nil
	}
	path, _, _ = strings.Cut(path, "?")
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	var errs []error
	if a.Catalog != nil {
		a.Catalog.Close()
	}
	if a.Metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.Metrics.Close(ctx))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
