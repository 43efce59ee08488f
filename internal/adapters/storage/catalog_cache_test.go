package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

func sampleCatalog() *domain.Catalog {
	return &domain.Catalog{
		Archives:  []domain.Archive{{ID: 1, Code: "maurer07", URLSlug: "usgs-cida-maurer"}},
		Scenarios: []domain.Scenario{{ID: 2, Code: "sresa1b", URLSlug: "sresa1b"}},
		Models:    []domain.ClimateModel{{ID: 3, Code: "bccr_bcm2.0", URLSlug: "bccr_bcm2.0"}},
		Variables: []domain.Variable{{ID: 4, Code: "pr", URLSlug: "pr", Units: "mm/day"}},
		Statistics: domain.NewStatisticTree([]domain.StatisticNode{
			{Text: "Thresholds", Children: []domain.StatisticNode{
				{Text: "Between", Leaf: true, Value: "between", Desc: "Count of values between {0} and {1}."},
			}},
			{Text: "Mean", Leaf: true, Value: "mean", Desc: "Mean value."},
		}),
	}
}

func TestCatalogCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCatalogCacheAt(dir)
	if err != nil {
		t.Fatalf("NewCatalogCacheAt: %v", err)
	}
	ctx := context.Background()

	want := sampleCatalog()
	if err := cache.Store(ctx, want); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, catalogFile)); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}

	got, err := cache.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want.Archives, got.Archives); diff != "" {
		t.Errorf("archives mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Variables, got.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Statistics.Keys(), got.Statistics.Keys()); diff != "" {
		t.Errorf("statistic keys mismatch (-want +got):\n%s", diff)
	}
	d, ok := got.Statistics.Descriptor("between")
	if !ok || d.ParameterCount() != 2 {
		t.Errorf("expected between with 2 parameters after reload")
	}
}

func TestCatalogCache_LoadEmpty(t *testing.T) {
	cache, err := NewCatalogCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewCatalogCacheAt: %v", err)
	}
	if _, err := cache.Load(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogCache_Clear(t *testing.T) {
	cache, err := NewCatalogCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewCatalogCacheAt: %v", err)
	}
	ctx := context.Background()
	if err := cache.Store(ctx, sampleCatalog()); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := cache.Clear(ctx); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
	if _, err := cache.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after Clear, got %v", err)
	}
}

func TestCatalogCache_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCatalogCacheAt(dir)
	if err != nil {
		t.Fatalf("NewCatalogCacheAt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, catalogFile), []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(context.Background()); err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
}
