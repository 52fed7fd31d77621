package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/course-scheduler/internal/application"
)

var (
	errBadRequestBody      = errors.New("request body could not be parsed")
	errInvalidTimeSlotID   = errors.New("invalid time slot id")
	errInvalidScheduleID   = errors.New("invalid schedule id")
	errInvalidUnitID       = errors.New("invalid unit id")
	errInvalidEnrollmentID = errors.New("invalid enrollment id")
	errInvalidAccountID    = errors.New("invalid account id")
	errMissingSessionToken = errors.New("a session token is required")
)

// envelope is the uniform response wrapper: success plus either data or error.
type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeData wraps a successful payload in the response envelope.
func (r responder) writeData(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	r.writeJSON(ctx, w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError wraps a failure in the response envelope with the given status.
func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	var code string
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}
	if status == http.StatusUnauthorized {
		code = "AUTH_REQUIRED"
	}

	r.writeJSON(ctx, w, status, envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

// handleServiceError maps domain errors onto HTTP statuses. Unexpected errors
// collapse to a generic 500 so store-level detail never reaches the client.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, envelope{Success: false, Error: &errorBody{
			Code:    "AUTH_FORBIDDEN",
			Message: "You do not have permission to perform this operation",
		}})
		return
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, envelope{Success: false, Error: &errorBody{
			Message: "The requested resource was not found",
		}})
		return
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, envelope{Success: false, Error: &errorBody{
			Code:    "AUTH_SESSION_EXPIRED",
			Message: "Your session is no longer valid, please sign in again",
		}})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusBadRequest, envelope{Success: false, Error: &errorBody{
			Message: "Validation failed",
			Fields:  vErr.FieldErrors,
		}})
		return
	}
	var cErr *application.ConflictError
	if errors.As(err, &cErr) {
		r.writeJSON(ctx, w, http.StatusConflict, envelope{Success: false, Error: &errorBody{
			Message: cErr.Message,
		}})
		return
	}
	var pErr *application.PreconditionError
	if errors.As(err, &pErr) {
		r.writeJSON(ctx, w, http.StatusBadRequest, envelope{Success: false, Error: &errorBody{
			Message: pErr.Message,
		}})
		return
	}

	r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err)
	r.writeJSON(ctx, w, http.StatusInternalServerError, envelope{Success: false, Error: &errorBody{
		Message: "An internal error occurred",
	}})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed"
	case http.StatusUnauthorized:
		return "Authentication is required"
	case http.StatusForbidden:
		return "You do not have permission to perform this operation"
	case http.StatusNotFound:
		return "The requested resource was not found"
	case http.StatusConflict:
		return "The request conflicts with the current state"
	default:
		return "An internal error occurred"
	}
}

// parsePathID parses a positive integer identifier from its path segment form.
func parsePathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("identifier must be a positive integer")
	}
	return id, nil
}
