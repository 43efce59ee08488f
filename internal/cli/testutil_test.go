package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/adapters/storage"
	"github.com/emiliopalmerini/ocgbuilder/internal/config"
)

// testApp builds an offline app context on a temporary libsql file.
func testApp(t *testing.T) *AppContext {
	t.Helper()

	cache, err := storage.NewCatalogCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("catalog cache: %v", err)
	}
	cfg := &config.Config{
		Addr:            "127.0.0.1:0",
		APIBaseURL:      "http://openclimategis.org",
		CatalogTimeout:  5 * time.Second,
		ShutdownTimeout: time.Second,
		Database:        config.Database{URL: "file:" + filepath.Join(t.TempDir(), "db", "test.db")},
	}

	app, err := NewAppContext(context.Background(), cfg, AppOptions{Offline: true, Cache: cache})
	if err != nil {
		t.Fatalf("NewAppContext: %v", err)
	}
	t.Cleanup(func() {
		if err := app.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return app
}
