package http

import (
	"context"
	"log/slog"

	"github.com/example/course-scheduler/internal/application"
	"github.com/example/course-scheduler/internal/logging"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	timeSlotIDContextKey   contextKey = "time_slot_id"
	scheduleIDContextKey   contextKey = "schedule_id"
	unitIDContextKey       contextKey = "unit_id"
	enrollmentIDContextKey contextKey = "enrollment_id"
	accountIDContextKey    contextKey = "account_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithLogger returns a derived context carrying a request-scoped logger.
// The logger is stored through the shared logging package so the application
// layer sees the same request-scoped logger as the handlers.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request-scoped logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithTimeSlotID injects the time slot identifier resolved from the request path.
func ContextWithTimeSlotID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, timeSlotIDContextKey, id)
}

// TimeSlotIDFromContext extracts a time slot identifier previously associated with the context.
func TimeSlotIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(timeSlotIDContextKey).(string)
	return id, ok
}

// ContextWithScheduleID injects the schedule identifier resolved from the request path.
func ContextWithScheduleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scheduleIDContextKey, id)
}

// ScheduleIDFromContext extracts a schedule identifier previously associated with the context.
func ScheduleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(scheduleIDContextKey).(string)
	return id, ok
}

// ContextWithUnitID injects the unit identifier resolved from the request path.
func ContextWithUnitID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, unitIDContextKey, id)
}

// UnitIDFromContext extracts a unit identifier previously associated with the context.
func UnitIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(unitIDContextKey).(string)
	return id, ok
}

// ContextWithEnrollmentID injects the enrollment identifier resolved from the request path.
func ContextWithEnrollmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, enrollmentIDContextKey, id)
}

// EnrollmentIDFromContext extracts an enrollment identifier previously associated with the context.
func EnrollmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(enrollmentIDContextKey).(string)
	return id, ok
}

// ContextWithAccountID injects the account identifier resolved from the request path.
func ContextWithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDContextKey, id)
}

// AccountIDFromContext extracts an account identifier previously associated with the context.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDContextKey).(string)
	return id, ok
}
