// Package migration applies versioned schema migrations embedded in the
// binary. Files are named {version}_{description}.sql and run in version
// order inside individual transactions; applied versions are recorded in
// schema_migrations.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	SQL         string
	Checksum    string
}

// AppliedMigration records a migration that has already run.
type AppliedMigration struct {
	Version   int
	Checksum  string
	AppliedAt time.Time
}

// Load parses the embedded migration files, sorted by version.
func Load() ([]Migration, error) {
	return loadFrom(migrationFiles, "migrations")
}

func loadFrom(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migration: read directory: %w", err)
	}

	seen := make(map[int]string)
	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		matches := fileNamePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			return nil, fmt.Errorf("migration: %s does not match {version}_{description}.sql", entry.Name())
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("migration: %s has a non-numeric version: %w", entry.Name(), err)
		}
		if previous, ok := seen[version]; ok {
			return nil, fmt.Errorf("migration: version %d appears in both %s and %s", version, previous, entry.Name())
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("migration: read %s: %w", entry.Name(), err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return nil, fmt.Errorf("migration: %s is empty", entry.Name())
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(matches[2], "_", " "),
			SQL:         string(content),
			Checksum:    fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Manager runs pending migrations against a database.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, logger: logger}
}

// Run applies all pending embedded migrations in order.
func (m *Manager) Run(ctx context.Context) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("migration: manager is not configured")
	}

	migrations, err := Load()
	if err != nil {
		return err
	}
	return m.apply(ctx, migrations)
}

func (m *Manager) apply(ctx context.Context, migrations []Migration) error {
	if err := m.initVersionTable(ctx); err != nil {
		return err
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return err
	}
	appliedByVersion := make(map[int]AppliedMigration, len(applied))
	for _, record := range applied {
		appliedByVersion[record.Version] = record
	}

	for _, migration := range migrations {
		if record, ok := appliedByVersion[migration.Version]; ok {
			if record.Checksum != migration.Checksum {
				return fmt.Errorf("migration: version %d checksum mismatch, file changed after it was applied", migration.Version)
			}
			continue
		}

		start := time.Now()
		if err := m.applyOne(ctx, migration); err != nil {
			return fmt.Errorf("migration: apply version %d (%s): %w", migration.Version, migration.Description, err)
		}
		m.logger.InfoContext(ctx, "migration applied",
			"version", migration.Version,
			"description", migration.Description,
			"duration", time.Since(start),
		)
	}
	return nil
}

func (m *Manager) applyOne(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, checksum, applied_at) VALUES (?, ?, ?)",
		migration.Version, migration.Checksum, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}

func (m *Manager) initVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			checksum   TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migration: create version table: %w", err)
	}
	return nil
}

// AppliedVersions lists the migrations recorded as applied, oldest first.
func (m *Manager) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version, checksum, applied_at FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("migration: query applied versions: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var record AppliedMigration
		var appliedAt string
		if err := rows.Scan(&record.Version, &record.Checksum, &appliedAt); err != nil {
			return nil, fmt.Errorf("migration: scan applied version: %w", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339, appliedAt); err != nil {
			return nil, fmt.Errorf("migration: parse applied_at: %w", err)
		}
		applied = append(applied, record)
	}
	return applied, rows.Err()
}
