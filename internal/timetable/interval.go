package timetable

import (
	"errors"
	"time"
)

// ErrInvalidInterval indicates a candidate interval whose start is not before its end.
var ErrInvalidInterval = errors.New("timetable: interval start must be before end")

// Interval represents a named half-open time interval [Start, End).
type Interval struct {
	ID     int64
	Name   string
	Start  time.Time
	End    time.Time
	Active bool
}

// Overlapping returns every active interval that overlaps the candidate
// [start, end) range. Intervals are half-open: an interval ending exactly when
// another begins does not overlap it. When excludeID is non-zero the matching
// interval is removed from consideration before the check, which lets callers
// re-validate a record against its peers without reporting a self-conflict.
func Overlapping(start, end time.Time, existing []Interval, excludeID int64) ([]Interval, error) {
	if !start.Before(end) {
		return nil, ErrInvalidInterval
	}

	var conflicts []Interval
	for _, candidate := range existing {
		if !candidate.Active {
			continue
		}
		if excludeID != 0 && candidate.ID == excludeID {
			continue
		}
		if intervalsOverlap(start, end, candidate.Start, candidate.End) {
			conflicts = append(conflicts, candidate)
		}
	}

	return conflicts, nil
}

// intervalsOverlap applies the four-clause predicate over half-open intervals.
// The containment clauses are implied by the first two plus boundary handling,
// but all four are kept so boundary behavior stays byte-for-byte predictable.
func intervalsOverlap(s1, e1, s2, e2 time.Time) bool {
	// candidate starts inside existing: s2 <= s1 < e2
	if !s1.Before(s2) && s1.Before(e2) {
		return true
	}
	// candidate ends inside existing: s2 < e1 <= e2
	if e1.After(s2) && !e1.After(e2) {
		return true
	}
	// candidate fully contains existing: s1 <= s2 && e1 >= e2
	if !s2.Before(s1) && !e1.Before(e2) {
		return true
	}
	// existing fully contains candidate: s2 <= s1 && e2 >= e1
	if !s1.Before(s2) && !e2.Before(e1) {
		return true
	}
	return false
}
