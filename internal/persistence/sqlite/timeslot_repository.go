package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
)

// TimeSlotRepository implements persistence.TimeSlotRepository on SQLite.
type TimeSlotRepository struct {
	pool *ConnectionPool
}

func NewTimeSlotRepository(pool *ConnectionPool) *TimeSlotRepository {
	return &TimeSlotRepository{pool: pool}
}

func (r *TimeSlotRepository) CreateTimeSlot(ctx context.Context, slot persistence.TimeSlot) (persistence.TimeSlot, error) {
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			INSERT INTO time_slots (name, start_time, end_time, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			slot.Name,
			slot.StartTime.UTC().Format(time.RFC3339),
			slot.EndTime.UTC().Format(time.RFC3339),
			boolToInt(slot.IsActive),
			slot.CreatedAt.Format(time.RFC3339),
			slot.UpdatedAt.Format(time.RFC3339),
		)
		return execErr
	})
	if err != nil {
		return persistence.TimeSlot{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	slot.ID = id
	return slot, nil
}

func (r *TimeSlotRepository) GetTimeSlot(ctx context.Context, id int64) (persistence.TimeSlot, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, end_time, is_active, created_at, updated_at
		FROM time_slots
		WHERE id = ?
	`, id)
	slot, err := scanTimeSlot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.TimeSlot{}, persistence.ErrNotFound
		}
		return persistence.TimeSlot{}, mapError(err)
	}
	return slot, nil
}

func (r *TimeSlotRepository) UpdateTimeSlot(ctx context.Context, slot persistence.TimeSlot) (persistence.TimeSlot, error) {
	slot.UpdatedAt = time.Now().UTC()

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			UPDATE time_slots
			SET name = ?, start_time = ?, end_time = ?, is_active = ?, updated_at = ?
			WHERE id = ?
		`,
			slot.Name,
			slot.StartTime.UTC().Format(time.RFC3339),
			slot.EndTime.UTC().Format(time.RFC3339),
			boolToInt(slot.IsActive),
			slot.UpdatedAt.Format(time.RFC3339),
			slot.ID,
		)
		return execErr
	})
	if err != nil {
		return persistence.TimeSlot{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.TimeSlot{}, persistence.ErrNotFound
	}
	return slot, nil
}

// DeleteTimeSlot removes a slot permanently. Soft-deleted schedules that still
// reference the slot are purged with it, together with their closed
// enrollments; an active reference fails the foreign key and rolls back.
func (r *TimeSlotRepository) DeleteTimeSlot(ctx context.Context, id int64) error {
	var affected int64
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM enrollments
			WHERE schedule_id IN (SELECT id FROM schedules WHERE time_slot_id = ? AND is_active = 0)
		`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schedules WHERE time_slot_id = ? AND is_active = 0", id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM time_slots WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *TimeSlotRepository) ListTimeSlots(ctx context.Context, includeInactive bool) ([]persistence.TimeSlot, error) {
	query := `
		SELECT id, name, start_time, end_time, is_active, created_at, updated_at
		FROM time_slots
	`
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var slots []persistence.TimeSlot
	for rows.Next() {
		slot, err := scanTimeSlot(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func scanTimeSlot(scan func(dest ...any) error) (persistence.TimeSlot, error) {
	var slot persistence.TimeSlot
	var startStr, endStr, createdStr, updatedStr string
	var active int

	if err := scan(&slot.ID, &slot.Name, &startStr, &endStr, &active, &createdStr, &updatedStr); err != nil {
		return persistence.TimeSlot{}, err
	}
	slot.IsActive = active != 0

	var err error
	if slot.StartTime, err = time.Parse(time.RFC3339, startStr); err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("sqlite: parse start_time: %w", err)
	}
	if slot.EndTime, err = time.Parse(time.RFC3339, endStr); err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("sqlite: parse end_time: %w", err)
	}
	if slot.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if slot.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return slot, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
