package application

import (
	"context"
	"fmt"
	"sort"
)

// DayRepository exposes the seeded weekday reference data.
type DayRepository interface {
	DayCatalog
	ListDays(ctx context.Context) ([]Day, error)
}

// DayService reads the seeded weekday catalog. Days are reference data and
// are never created or mutated through the API.
type DayService struct {
	days DayRepository
}

// NewDayService wires the day repository.
func NewDayService(days DayRepository) *DayService {
	return &DayService{days: days}
}

// ListDays returns the weekday catalog ordered by position.
func (s *DayService) ListDays(ctx context.Context) ([]Day, error) {
	if s == nil || s.days == nil {
		return nil, fmt.Errorf("day repository not configured")
	}
	days, err := s.days.ListDays(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Position < days[j].Position })
	return days, nil
}

// GetDay returns one weekday by id.
func (s *DayService) GetDay(ctx context.Context, id int64) (Day, error) {
	if s == nil || s.days == nil {
		return Day{}, fmt.Errorf("day repository not configured")
	}
	day, err := s.days.GetDay(ctx, id)
	if err != nil {
		return Day{}, mapRepoError(err)
	}
	return day, nil
}
