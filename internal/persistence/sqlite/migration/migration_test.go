package migration

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 embedded migrations, got %d", len(migrations))
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version <= migrations[i-1].Version {
			t.Errorf("migrations out of order: %d before %d", migrations[i-1].Version, migrations[i].Version)
		}
	}
	if migrations[0].Checksum == "" {
		t.Error("expected checksum to be populated")
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "bad filename",
			fsys: fstest.MapFS{"migrations/schema.sql": &fstest.MapFile{Data: []byte("SELECT 1;")}},
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"migrations/001_first.sql":  &fstest.MapFile{Data: []byte("SELECT 1;")},
				"migrations/1_second.sql":   &fstest.MapFile{Data: []byte("SELECT 1;")},
				"migrations/002_filler.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
			},
		},
		{
			name: "empty file",
			fsys: fstest.MapFS{"migrations/001_empty.sql": &fstest.MapFile{Data: []byte("   \n")}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := loadFrom(tc.fsys, "migrations"); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestManagerRun(t *testing.T) {
	t.Parallel()

	t.Run("applies the full schema and seeds days", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		manager := NewManager(db, nil)
		if err := manager.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM days").Scan(&count); err != nil {
			t.Fatalf("count days: %v", err)
		}
		if count != 7 {
			t.Errorf("seeded days = %d, want 7", count)
		}

		var name string
		if err := db.QueryRow("SELECT name FROM days WHERE position = 1").Scan(&name); err != nil {
			t.Fatalf("query first day: %v", err)
		}
		if name != "Monday" {
			t.Errorf("first day = %q, want Monday", name)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		manager := NewManager(db, nil)
		if err := manager.Run(context.Background()); err != nil {
			t.Fatalf("first Run: %v", err)
		}
		if err := manager.Run(context.Background()); err != nil {
			t.Fatalf("second Run: %v", err)
		}

		applied, err := manager.AppliedVersions(context.Background())
		if err != nil {
			t.Fatalf("AppliedVersions: %v", err)
		}
		migrations, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(applied) != len(migrations) {
			t.Errorf("applied = %d, want %d", len(applied), len(migrations))
		}
	})

	t.Run("rejects a changed applied migration", func(t *testing.T) {
		t.Parallel()

		db := openTestDB(t)
		manager := NewManager(db, nil)

		first := []Migration{{Version: 1, Description: "first", SQL: "CREATE TABLE t (id INTEGER)", Checksum: "aaa"}}
		if err := manager.apply(context.Background(), first); err != nil {
			t.Fatalf("apply: %v", err)
		}

		changed := []Migration{{Version: 1, Description: "first", SQL: "CREATE TABLE t (id INTEGER, extra TEXT)", Checksum: "bbb"}}
		if err := manager.apply(context.Background(), changed); err == nil {
			t.Fatal("expected checksum mismatch error")
		}
	})
}
