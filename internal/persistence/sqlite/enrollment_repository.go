package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
	"github.com/example/course-scheduler/internal/timetable"
)

// EnrollmentRepository implements persistence.EnrollmentRepository on SQLite.
type EnrollmentRepository struct {
	pool *ConnectionPool
}

func NewEnrollmentRepository(pool *ConnectionPool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, enrollment persistence.Enrollment) (persistence.Enrollment, error) {
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			INSERT INTO enrollments (schedule_id, student_id, status, enrolled_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`,
			enrollment.ScheduleID,
			enrollment.StudentID,
			string(enrollment.Status),
			enrollment.EnrolledAt.UTC().Format(time.RFC3339),
			enrollment.UpdatedAt.Format(time.RFC3339),
		)
		return execErr
	})
	if err != nil {
		return persistence.Enrollment{}, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Enrollment{}, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	enrollment.ID = id
	return enrollment, nil
}

func (r *EnrollmentRepository) GetEnrollment(ctx context.Context, id int64) (persistence.Enrollment, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, schedule_id, student_id, status, enrolled_at, updated_at
		FROM enrollments
		WHERE id = ?
	`, id)
	enrollment, err := scanEnrollment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Enrollment{}, persistence.ErrNotFound
		}
		return persistence.Enrollment{}, mapError(err)
	}
	return enrollment, nil
}

func (r *EnrollmentRepository) UpdateEnrollment(ctx context.Context, enrollment persistence.Enrollment) (persistence.Enrollment, error) {
	enrollment.UpdatedAt = time.Now().UTC()

	var result sql.Result
	err := retry(ctx, func() error {
		var execErr error
		result, execErr = r.pool.db.ExecContext(ctx, `
			UPDATE enrollments
			SET status = ?, updated_at = ?
			WHERE id = ?
		`,
			string(enrollment.Status),
			enrollment.UpdatedAt.Format(time.RFC3339),
			enrollment.ID,
		)
		return execErr
	})
	if err != nil {
		return persistence.Enrollment{}, mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Enrollment{}, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Enrollment{}, persistence.ErrNotFound
	}
	return enrollment, nil
}

func (r *EnrollmentRepository) ListEnrollments(ctx context.Context, filter persistence.EnrollmentFilter) ([]persistence.Enrollment, error) {
	var clauses []string
	var args []any

	if filter.ScheduleID != nil {
		clauses = append(clauses, "schedule_id = ?")
		args = append(args, *filter.ScheduleID)
	}
	if filter.StudentID != nil {
		clauses = append(clauses, "student_id = ?")
		args = append(args, *filter.StudentID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, "?")
			args = append(args, string(status))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := "SELECT id, schedule_id, student_id, status, enrolled_at, updated_at FROM enrollments"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY enrolled_at ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var enrollments []persistence.Enrollment
	for rows.Next() {
		enrollment, err := scanEnrollment(rows.Scan)
		if err != nil {
			return nil, mapError(err)
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}

func (r *EnrollmentRepository) CountEnrollmentsByStatus(ctx context.Context, scheduleID int64) (timetable.StatusTally, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM enrollments
		WHERE schedule_id = ?
		GROUP BY status
	`, scheduleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tally := make(timetable.StatusTally)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, mapError(err)
		}
		tally[timetable.EnrollmentStatus(status)] = count
	}
	return tally, rows.Err()
}

func scanEnrollment(scan func(dest ...any) error) (persistence.Enrollment, error) {
	var enrollment persistence.Enrollment
	var status, enrolledStr, updatedStr string

	if err := scan(&enrollment.ID, &enrollment.ScheduleID, &enrollment.StudentID, &status, &enrolledStr, &updatedStr); err != nil {
		return persistence.Enrollment{}, err
	}
	enrollment.Status = timetable.EnrollmentStatus(status)

	var err error
	if enrollment.EnrolledAt, err = time.Parse(time.RFC3339, enrolledStr); err != nil {
		return persistence.Enrollment{}, fmt.Errorf("sqlite: parse enrolled_at: %w", err)
	}
	if enrollment.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return persistence.Enrollment{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return enrollment, nil
}
