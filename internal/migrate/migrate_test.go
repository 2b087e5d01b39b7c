package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A single connection keeps the in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRun_AppliesEmbeddedSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	applied, err := Run(ctx, db)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("Run() applied %v; want 2 migrations", applied)
	}

	for _, table := range []string{"station", "measurement"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := Run(ctx, db); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	applied, err := Run(ctx, db)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second Run() applied %v; want none", applied)
	}
}

func TestRunFS_OrdersByVersionAndSkipsOtherFiles(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte(`CREATE TABLE b (id INTEGER REFERENCES a(id));`)},
		"m/0001_first.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER PRIMARY KEY);`)},
		"m/README.md":       {Data: []byte(`not a migration`)},
	}

	applied, err := runFS(context.Background(), db, fsys, "m")
	if err != nil {
		t.Fatalf("runFS() error = %v", err)
	}
	want := []string{"0001_first", "0002_second"}
	if len(applied) != len(want) {
		t.Fatalf("applied = %v; want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Errorf("applied[%d] = %q; want %q", i, applied[i], want[i])
		}
	}
}

func TestRunFS_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"m/0001_broken.sql": {Data: []byte(`CREATE TABLE (`)},
	}

	if _, err := runFS(context.Background(), db, fsys, "m"); err == nil {
		t.Fatal("runFS() error = nil; want non-nil")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + tableName).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 0 {
		t.Errorf("recorded migrations = %d; want 0", n)
	}
}

func Test_parseMigrationFilename(t *testing.T) {
	tests := []struct {
		in          string
		wantVersion string
		wantName    string
		wantOK      bool
	}{
		{in: "0001_stations.sql", wantVersion: "0001", wantName: "stations", wantOK: true},
		{in: "0010_add_index.sql", wantVersion: "0010", wantName: "add_index", wantOK: true},
		{in: "1_short.sql", wantOK: false},
		{in: "0001_missing_ext", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, n, ok := parseMigrationFilename(tt.in)
			if ok != tt.wantOK || v != tt.wantVersion || n != tt.wantName {
				t.Errorf("parseMigrationFilename(%q) = (%q, %q, %v); want (%q, %q, %v)",
					tt.in, v, n, ok, tt.wantVersion, tt.wantName, tt.wantOK)
			}
		})
	}
}
