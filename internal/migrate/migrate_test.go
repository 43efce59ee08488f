package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/ocgbuilder/migrations"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count > 0
}

func TestLoad_Embedded(t *testing.T) {
	all, err := Load(migrations.FS)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(all) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(all))
	}
	for i, m := range all {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d", i, m.Version)
		}
		if m.DownSQL == "" {
			t.Errorf("migration %s has no down script", m)
		}
	}
}

func TestLoad_SortsAndPairs(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.up.sql":  {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"001_first.up.sql":   {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"001_first.down.sql": {Data: []byte("DROP TABLE a")},
		"README.md":          {Data: []byte("ignored")},
	}

	all, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(all))
	}
	if all[0].Name != "first" || all[0].DownSQL != "DROP TABLE a" {
		t.Errorf("unexpected first migration: %+v", all[0])
	}
	if all[1].Name != "second" || all[1].DownSQL != "" {
		t.Errorf("unexpected second migration: %+v", all[1])
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.up.sql":  {Data: []byte("SELECT 1")},
		"0001_b.up.sql": {Data: []byte("SELECT 1")},
	}
	if _, err := Load(fsys); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestRunAll_Idempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if err := RunAll(ctx, db); err != nil {
		t.Fatalf("second RunAll: %v", err)
	}
	for _, table := range []string{"aois", "request_history"} {
		if !tableExists(t, db, table) {
			t.Errorf("expected table %s", table)
		}
	}

	all, _ := Load(migrations.FS)
	st, err := CurrentStatus(ctx, db, all)
	if err != nil {
		t.Fatalf("CurrentStatus: %v", err)
	}
	if st.Version != all[len(all)-1].Version || st.Dirty || len(st.Pending) != 0 {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestUpDown(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	all, err := Load(migrations.FS)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	n, err := Up(ctx, db, all, 1)
	if err != nil || n != 1 {
		t.Fatalf("Up to 1: applied %d, err %v", n, err)
	}
	if !tableExists(t, db, "aois") || tableExists(t, db, "request_history") {
		t.Error("expected only the aois table after migrating to version 1")
	}

	if _, err := Up(ctx, db, all, -1); err != nil {
		t.Fatalf("Up: %v", err)
	}
	n, err = Down(ctx, db, all, 0)
	if err != nil {
		t.Fatalf("Down: %v", err)
	}
	if n != len(all) {
		t.Errorf("expected %d reverted, got %d", len(all), n)
	}
	if tableExists(t, db, "aois") {
		t.Error("aois should be dropped")
	}
	if v, dirty, _ := CurrentVersion(ctx, db); v != 0 || dirty {
		t.Errorf("expected clean version 0, got %d dirty=%v", v, dirty)
	}
}

func TestUp_FailureLeavesDirty(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	all := []Migration{{Version: 1, Name: "broken", UpSQL: "CREATE TABLE ("}}

	if _, err := Up(ctx, db, all, -1); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Up(ctx, db, all, -1); err == nil || !strings.Contains(err.Error(), "dirty") {
		t.Errorf("expected dirty state error, got %v", err)
	}
}

func TestDown_MissingScript(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	all := []Migration{{Version: 1, Name: "oneway", UpSQL: "CREATE TABLE t (id INTEGER)"}}

	if _, err := Up(ctx, db, all, -1); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if _, err := Down(ctx, db, all, 0); err == nil || !strings.Contains(err.Error(), "no down migration") {
		t.Errorf("expected missing down error, got %v", err)
	}
}
