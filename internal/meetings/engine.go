package meetings

import (
	"errors"
	"time"
)

var utc = time.UTC

// ErrInvalidWindow indicates the expansion window is empty or unbounded.
var ErrInvalidWindow = errors.New("meetings: expansion window requires an end after its start")

// ErrInvalidDuration indicates the slot's interval is not positive.
var ErrInvalidDuration = errors.New("meetings: slot duration must be positive")

// WeeklySlot describes the weekly teaching pattern of one schedule: a weekday
// plus the clock times carried by its time slot.
type WeeklySlot struct {
	ScheduleID int64
	Weekday    time.Weekday
	StartTime  time.Time
	EndTime    time.Time
}

// Meeting is one concrete class meeting generated from a weekly slot.
type Meeting struct {
	ScheduleID int64
	Start      time.Time
	End        time.Time
}

// Engine expands weekly slots into dated class meetings.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that normalizes results to the provided
// location. If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = utc
	}
	return &Engine{location: loc}
}

// Expand walks the [from, until] window day by day and emits one meeting for
// every date that falls on the slot's weekday, combining the date with the
// slot's clock times.
func (e *Engine) Expand(slot WeeklySlot, from, until time.Time) ([]Meeting, error) {
	loc := e.location
	if loc == nil {
		loc = utc
	}

	if until.IsZero() || !until.After(from) {
		return nil, ErrInvalidWindow
	}
	start := slot.StartTime.In(loc)
	end := slot.EndTime.In(loc)
	duration := clockOf(end).Sub(clockOf(start))
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	from = from.In(loc)
	until = until.In(loc)

	current := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	meetings := make([]Meeting, 0)
	for !current.After(until) {
		if current.Weekday() == slot.Weekday {
			meetingStart := time.Date(current.Year(), current.Month(), current.Day(), start.Hour(), start.Minute(), start.Second(), 0, loc)
			if !meetingStart.Before(from) && !meetingStart.After(until) {
				meetings = append(meetings, Meeting{
					ScheduleID: slot.ScheduleID,
					Start:      meetingStart,
					End:        meetingStart.Add(duration),
				})
			}
		}
		current = current.AddDate(0, 0, 1)
	}
	return meetings, nil
}

// clockOf strips the date component so differently dated templates still yield
// the intended duration.
func clockOf(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
