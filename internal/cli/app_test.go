package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/emiliopalmerini/ocgbuilder/internal/migrate"
)

func TestNewAppContext_MigratesAndWires(t *testing.T) {
	app := testApp(t)

	version, dirty, err := migrate.CurrentVersion(context.Background(), app.DB)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("expected clean version 2, got %d dirty=%v", version, dirty)
	}
	if app.AOIRepo == nil || app.RequestRepo == nil || app.Builder == nil || app.Metrics == nil {
		t.Error("app context is missing dependencies")
	}

	if _, err := app.Catalog.Current(); err == nil {
		t.Error("catalog should not load until asked")
	}
	cat, err := app.Catalog.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Archives) == 0 {
		t.Error("expected offline catalog archives")
	}
}

func TestEnsureLocalDir(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		url     string
		created string
	}{
		{"local file", "file:" + filepath.Join(dir, "a", "ocgb.db"), filepath.Join(dir, "a")},
		{"local file with query", "file:" + filepath.Join(dir, "b", "ocgb.db") + "?mode=rwc", filepath.Join(dir, "b")},
		{"memory", "file::memory:?cache=shared", ""},
		{"remote", "libsql://example.turso.io", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ensureLocalDir(tt.url); err != nil {
				t.Fatalf("ensureLocalDir: %v", err)
			}
			if tt.created == "" {
				return
			}
			if info, err := os.Stat(tt.created); err != nil || !info.IsDir() {
				t.Errorf("expected directory %s", tt.created)
			}
		})
	}
}
