package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository on SQLite.
type ScheduleRepository struct {
	pool *ConnectionPool
}

func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, unit_id, time_slot_id, day_id, semester, academic_year,
	tutor_name, location, max_capacity, is_active, created_at, updated_at`

func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			INSERT INTO schedules (unit_id, time_slot_id, day_id, semester, academic_year,
				tutor_name, location, max_capacity, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			schedule.UnitID,
			schedule.TimeSlotID,
			schedule.DayID,
			schedule.Semester,
			schedule.AcademicYear,
			nullableString(schedule.TutorName),
			nullableString(schedule.Location),
			nullableInt(schedule.MaxCapacity),
			boolToInt(schedule.IsActive),
			schedule.CreatedAt.Format(time.RFC3339),
			schedule.UpdatedAt.Format(time.RFC3339),
		)
		return execErr
	})
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Schedule{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	schedule.ID = id
	return schedule, nil
}

func (r *ScheduleRepository) GetSchedule(ctx context.Context, id int64) (persistence.Schedule, error) {
	row := r.pool.db.QueryRowContext(ctx,
		"SELECT "+scheduleColumns+" FROM schedules WHERE id = ?", id,
	)
	schedule, err := scanSchedule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Schedule{}, persistence.ErrNotFound
		}
		return persistence.Schedule{}, mapError(err)
	}
	return schedule, nil
}

func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) (persistence.Schedule, error) {
	schedule.UpdatedAt = time.Now().UTC()

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			UPDATE schedules
			SET unit_id = ?, time_slot_id = ?, day_id = ?, semester = ?, academic_year = ?,
				tutor_name = ?, location = ?, max_capacity = ?, is_active = ?, updated_at = ?
			WHERE id = ?
		`,
			schedule.UnitID,
			schedule.TimeSlotID,
			schedule.DayID,
			schedule.Semester,
			schedule.AcademicYear,
			nullableString(schedule.TutorName),
			nullableString(schedule.Location),
			nullableInt(schedule.MaxCapacity),
			boolToInt(schedule.IsActive),
			schedule.UpdatedAt.Format(time.RFC3339),
			schedule.ID,
		)
		return execErr
	})
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Schedule{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Schedule{}, persistence.ErrNotFound
	}
	return schedule, nil
}

func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.Schedule, error) {
	where, args := buildScheduleFilter(filter)
	query := "SELECT " + scheduleColumns + " FROM schedules" + where + " ORDER BY id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) CountSchedules(ctx context.Context, filter persistence.ScheduleFilter) (int, error) {
	where, args := buildScheduleFilter(filter)

	var count int
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules"+where, args...).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

func buildScheduleFilter(filter persistence.ScheduleFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.UnitID != nil {
		clauses = append(clauses, "unit_id = ?")
		args = append(args, *filter.UnitID)
	}
	if filter.TimeSlotID != nil {
		clauses = append(clauses, "time_slot_id = ?")
		args = append(args, *filter.TimeSlotID)
	}
	if filter.DayID != nil {
		clauses = append(clauses, "day_id = ?")
		args = append(args, *filter.DayID)
	}
	if filter.Semester != nil {
		clauses = append(clauses, "semester = ?")
		args = append(args, *filter.Semester)
	}
	if filter.AcademicYear != nil {
		clauses = append(clauses, "academic_year = ?")
		args = append(args, *filter.AcademicYear)
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active = 1")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanSchedule(scan func(dest ...any) error) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	var tutorName, location sql.NullString
	var maxCapacity sql.NullInt64
	var createdStr, updatedStr string
	var active int

	if err := scan(
		&schedule.ID,
		&schedule.UnitID,
		&schedule.TimeSlotID,
		&schedule.DayID,
		&schedule.Semester,
		&schedule.AcademicYear,
		&tutorName,
		&location,
		&maxCapacity,
		&active,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.Schedule{}, err
	}

	schedule.IsActive = active != 0
	if tutorName.Valid {
		schedule.TutorName = &tutorName.String
	}
	if location.Valid {
		schedule.Location = &location.String
	}
	if maxCapacity.Valid {
		capacity := int(maxCapacity.Int64)
		schedule.MaxCapacity = &capacity
	}

	var err error
	if schedule.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return persistence.Schedule{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if schedule.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Schedule{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return schedule, nil
}
