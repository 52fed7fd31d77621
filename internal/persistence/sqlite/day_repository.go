package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/course-scheduler/internal/persistence"
)

// DayRepository reads the seeded weekday reference data.
type DayRepository struct {
	pool *ConnectionPool
}

func NewDayRepository(pool *ConnectionPool) *DayRepository {
	return &DayRepository{pool: pool}
}

func (r *DayRepository) GetDay(ctx context.Context, id int64) (persistence.Day, error) {
	var day persistence.Day
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, name, position FROM days WHERE id = ?", id,
	).Scan(&day.ID, &day.Name, &day.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Day{}, persistence.ErrNotFound
		}
		return persistence.Day{}, mapError(err)
	}
	return day, nil
}

func (r *DayRepository) ListDays(ctx context.Context) ([]persistence.Day, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, name, position FROM days ORDER BY position ASC",
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var days []persistence.Day
	for rows.Next() {
		var day persistence.Day
		if err := rows.Scan(&day.ID, &day.Name, &day.Position); err != nil {
			return nil, mapError(err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
