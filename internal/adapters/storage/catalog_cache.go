package storage

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

const catalogFile = "catalog.json.gz"

// CatalogCache keeps a gzip-compressed JSON snapshot of the last catalog
// that loaded successfully.
type CatalogCache struct {
	baseDir string
}

type catalogSnapshot struct {
	SavedAt    time.Time              `json:"saved_at"`
	Archives   []domain.Archive       `json:"archives"`
	Scenarios  []domain.Scenario      `json:"scenarios"`
	Models     []domain.ClimateModel  `json:"models"`
	Variables  []domain.Variable      `json:"variables"`
	Statistics []domain.StatisticNode `json:"statistics"`
}

func NewCatalogCache() (*CatalogCache, error) {
	baseDir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	return NewCatalogCacheAt(filepath.Join(baseDir, "cache"))
}

func NewCatalogCacheAt(dir string) (*CatalogCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &CatalogCache{baseDir: dir}, nil
}

func (s *CatalogCache) Store(ctx context.Context, catalog *domain.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := catalogSnapshot{
		SavedAt:   time.Now().UTC(),
		Archives:  catalog.Archives,
		Scenarios: catalog.Scenarios,
		Models:    catalog.Models,
		Variables: catalog.Variables,
	}
	if catalog.Statistics != nil {
		snap.Statistics = catalog.Statistics.Root.Children
	}

	tmp, err := os.CreateTemp(s.baseDir, catalogFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	gw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(gw).Encode(snap); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := gw.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path()); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Load returns domain.ErrNotFound when nothing has been cached yet.
func (s *CatalogCache) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog cache: %w", err)
	}
	defer func() { _ = file.Close() }()

	gr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	var snap catalogSnapshot
	if err := json.NewDecoder(gr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to read catalog cache: %w", err)
	}

	return &domain.Catalog{
		Archives:   snap.Archives,
		Scenarios:  snap.Scenarios,
		Models:     snap.Models,
		Variables:  snap.Variables,
		Statistics: domain.NewStatisticTree(snap.Statistics),
	}, nil
}

// Clear removes the cached snapshot.
func (s *CatalogCache) Clear(ctx context.Context) error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete catalog cache: %w", err)
	}
	return nil
}

func (s *CatalogCache) path() string {
	return filepath.Join(s.baseDir, catalogFile)
}
