package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
)

// UnitRepository implements persistence.UnitRepository on SQLite.
type UnitRepository struct {
	pool *ConnectionPool
}

func NewUnitRepository(pool *ConnectionPool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

func (r *UnitRepository) CreateUnit(ctx context.Context, unit persistence.Unit) (persistence.Unit, error) {
	now := time.Now().UTC()
	unit.CreatedAt = now
	unit.UpdatedAt = now

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			INSERT INTO units (code, title, description, credits, capacity, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			unit.Code,
			unit.Title,
			nullableString(unit.Description),
			unit.Credits,
			unit.Capacity,
			boolToInt(unit.IsActive),
			unit.CreatedAt.Format(time.RFC3339),
			unit.UpdatedAt.Format(time.RFC3339),
		)
		return execErr
	})
	if err != nil {
		return persistence.Unit{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Unit{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	unit.ID = id
	return unit, nil
}

func (r *UnitRepository) GetUnit(ctx context.Context, id int64) (persistence.Unit, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, code, title, description, credits, capacity, is_active, created_at, updated_at
		FROM units
		WHERE id = ?
	`, id)
	unit, err := scanUnit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Unit{}, persistence.ErrNotFound
		}
		return persistence.Unit{}, mapError(err)
	}
	return unit, nil
}

func (r *UnitRepository) GetUnitByCode(ctx context.Context, code string) (persistence.Unit, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, code, title, description, credits, capacity, is_active, created_at, updated_at
		FROM units
		WHERE code = ? AND is_active = 1
	`, code)
	unit, err := scanUnit(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Unit{}, persistence.ErrNotFound
		}
		return persistence.Unit{}, mapError(err)
	}
	return unit, nil
}

func (r *UnitRepository) UpdateUnit(ctx context.Context, unit persistence.Unit) (persistence.Unit, error) {
	unit.UpdatedAt = time.Now().UTC()

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			UPDATE units
			SET code = ?, title = ?, description = ?, credits = ?, capacity = ?, is_active = ?, updated_at = ?
			WHERE id = ?
		`,
			unit.Code,
			unit.Title,
			nullableString(unit.Description),
			unit.Credits,
			unit.Capacity,
			boolToInt(unit.IsActive),
			unit.UpdatedAt.Format(time.RFC3339),
			unit.ID,
		)
		return execErr
	})
	if err != nil {
		return persistence.Unit{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Unit{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Unit{}, persistence.ErrNotFound
	}
	return unit, nil
}

func (r *UnitRepository) ListUnits(ctx context.Context, includeInactive bool) ([]persistence.Unit, error) {
	query := `
		SELECT id, code, title, description, credits, capacity, is_active, created_at, updated_at
		FROM units
	`
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY code ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var units []persistence.Unit
	for rows.Next() {
		unit, err := scanUnit(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func scanUnit(scan func(dest ...any) error) (persistence.Unit, error) {
	var unit persistence.Unit
	var description sql.NullString
	var createdStr, updatedStr string
	var active int

	if err := scan(&unit.ID, &unit.Code, &unit.Title, &description, &unit.Credits, &unit.Capacity, &active, &createdStr, &updatedStr); err != nil {
		return persistence.Unit{}, err
	}
	unit.IsActive = active != 0
	if description.Valid {
		unit.Description = &description.String
	}

	var err error
	if unit.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Unit{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if unit.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Unit{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return unit, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
