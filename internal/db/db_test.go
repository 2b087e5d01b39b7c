package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"climate-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "hawaii.sqlite")
	if err := os.WriteFile(existing, nil, 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	tests := []struct {
		name    string
		cfg     config.Config
		want    string
		wantErr bool
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{SQLiteDSN: "file::memory:", SQLitePath: "ignored"},
			want: "file::memory:",
		},
		{
			name: "mattn read only",
			cfg:  config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: existing, SQLiteReadOnly: true},
			want: "file:" + existing + "?_busy_timeout=5000&mode=ro",
		},
		{
			name: "modernc read only",
			cfg:  config.Config{SQLiteDriver: config.DriverModernc, SQLitePath: existing, SQLiteReadOnly: true},
			want: "file:" + existing + "?_pragma=busy_timeout(5000)&mode=ro",
		},
		{
			name: "mattn writable",
			cfg:  config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: filepath.Join(dir, "new", "app.db")},
			want: "file:" + filepath.Join(dir, "new", "app.db") + "?_busy_timeout=5000&_foreign_keys=on",
		},
		{
			name: "file prefix with query keeps params",
			cfg:  config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: "file:" + existing + "?cache=shared", SQLiteReadOnly: true},
			want: "file:" + existing + "?cache=shared&_busy_timeout=5000&mode=ro",
		},
		{
			name:    "read only requires existing file",
			cfg:     config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: filepath.Join(dir, "missing.sqlite"), SQLiteReadOnly: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("buildDSN() = %q, nil; want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildDSN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestOpen_BothDrivers(t *testing.T) {
	for _, driver := range []string{config.DriverMattn, config.DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app.db")
			cfg := config.Config{SQLiteDriver: driver, SQLitePath: path, SQLiteMaxOpenConns: 1}

			conn, err := Open(cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer func() {
				if err := Close(conn); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			var ok int
			if err := conn.QueryRow(`SELECT 1`).Scan(&ok); err != nil || ok != 1 {
				t.Fatalf("SELECT 1 = %d, %v", ok, err)
			}
		})
	}
}

func TestOpen_LoggingConnector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	cfg := config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: path, SQLiteLogStatements: true}

	conn, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = Close(conn) }()

	if _, ok := conn.Driver().(*loggingDriver); !ok {
		t.Errorf("driver = %T; want *loggingDriver", conn.Driver())
	}
}

func TestOpen_ReadOnlyRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	rw, err := Open(config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: path})
	if err != nil {
		t.Fatalf("Open(rw) error = %v", err)
	}
	if _, err := rw.Exec(`CREATE TABLE station (station TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	_ = Close(rw)

	ro, err := Open(config.Config{SQLiteDriver: config.DriverMattn, SQLitePath: path, SQLiteReadOnly: true})
	if err != nil {
		t.Fatalf("Open(ro) error = %v", err)
	}
	defer func() { _ = Close(ro) }()

	_, err = ro.Exec(`INSERT INTO station (station) VALUES ('USC00519281')`)
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "readonly") {
		t.Errorf("insert on read-only handle error = %v; want readonly error", err)
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v; want nil", err)
	}
}
