package timetable

import (
	"fmt"
	"strings"
)

// EnrollmentStatus enumerates the lifecycle states of an enrollment.
type EnrollmentStatus string

const (
	// StatusPending marks an enrollment awaiting an administrator decision.
	StatusPending EnrollmentStatus = "PENDING"
	// StatusApproved marks an enrollment that holds a seat.
	StatusApproved EnrollmentStatus = "APPROVED"
	// StatusWaitlisted marks an enrollment queued behind a full schedule.
	StatusWaitlisted EnrollmentStatus = "WAITLISTED"
	// StatusRejected marks an enrollment declined by an administrator.
	StatusRejected EnrollmentStatus = "REJECTED"
	// StatusWithdrawn marks an enrollment cancelled by the student.
	StatusWithdrawn EnrollmentStatus = "WITHDRAWN"
)

// Terminal reports whether the status is final. Terminal enrollments never
// block structural changes to their schedule.
func (s EnrollmentStatus) Terminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// NonTerminalStatuses lists the statuses that keep an enrollment "live".
func NonTerminalStatuses() []EnrollmentStatus {
	return []EnrollmentStatus{StatusPending, StatusApproved, StatusWaitlisted}
}

// ParseEnrollmentStatus converts a caller supplied string into a status value.
func ParseEnrollmentStatus(value string) (EnrollmentStatus, error) {
	switch EnrollmentStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusWaitlisted:
		return StatusWaitlisted, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusWithdrawn:
		return StatusWithdrawn, nil
	}
	return "", fmt.Errorf("timetable: unknown enrollment status %q", value)
}

// StatusTally counts enrollments per status for one schedule.
type StatusTally map[EnrollmentStatus]int

// NonTerminal returns the number of live enrollments in the tally.
func (t StatusTally) NonTerminal() int {
	total := 0
	for _, status := range NonTerminalStatuses() {
		total += t[status]
	}
	return total
}
