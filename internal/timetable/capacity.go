package timetable

import "math"

// CapacityStats captures the derived per-schedule enrollment statistics.
type CapacityStats struct {
	Capacity       int
	Approved       int
	Pending        int
	Waitlisted     int
	Rejected       int
	Withdrawn      int
	AvailableSpots int
	// UtilizationPct is round(approved / capacity * 100), or 0 when capacity
	// is zero.
	UtilizationPct int
	Full           bool
}

// EffectiveCapacity resolves the capacity that binds a schedule: the
// schedule-level override when set, else the unit's base capacity.
func EffectiveCapacity(override *int, unitCapacity int) int {
	if override != nil {
		return *override
	}
	return unitCapacity
}

// ComputeCapacityStats derives capacity statistics from an enrollment tally.
// Every read path that reports utilization goes through here so the rounding
// and zero-capacity rules cannot drift between endpoints. AvailableSpots may
// be negative when a capacity override was reduced after approvals; that state
// is reported as-is rather than re-validated on read.
func ComputeCapacityStats(capacity int, tally StatusTally) CapacityStats {
	stats := CapacityStats{
		Capacity:   capacity,
		Approved:   tally[StatusApproved],
		Pending:    tally[StatusPending],
		Waitlisted: tally[StatusWaitlisted],
		Rejected:   tally[StatusRejected],
		Withdrawn:  tally[StatusWithdrawn],
	}

	stats.AvailableSpots = capacity - stats.Approved
	stats.Full = stats.Approved >= capacity
	if capacity > 0 {
		stats.UtilizationPct = int(math.Round(float64(stats.Approved) / float64(capacity) * 100))
	}

	return stats
}

// UtilizationPercent is the shared rounding rule for aggregate counters such
// as the time-slot usage report: round(used / total * 100), 0 when total is 0.
func UtilizationPercent(used, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(used) / float64(total) * 100))
}
