package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/application"
	"github.com/example/course-scheduler/internal/timetable"
)

type enrollmentService interface {
	Enroll(ctx context.Context, params application.EnrollParams) (application.Enrollment, error)
	UpdateStatus(ctx context.Context, params application.UpdateEnrollmentStatusParams) (application.Enrollment, error)
	Withdraw(ctx context.Context, principal application.Principal, enrollmentID int64) (application.Enrollment, error)
	ListForSchedule(ctx context.Context, principal application.Principal, scheduleID int64) ([]application.Enrollment, error)
	ListForStudent(ctx context.Context, principal application.Principal, studentID string) ([]application.Enrollment, error)
}

type EnrollmentHandler struct {
	service   enrollmentService
	responder responder
	logger    *slog.Logger
}

func NewEnrollmentHandler(service enrollmentService, logger *slog.Logger) *EnrollmentHandler {
	base := defaultLogger(logger)
	return &EnrollmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EnrollmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EnrollmentHandler", operation, attrs...)
}

func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode enrollment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID, "schedule_id", req.ScheduleID)

	enrollment, err := h.service.Enroll(r.Context(), application.EnrollParams{
		Principal:  principal,
		ScheduleID: req.ScheduleID,
		StudentID:  strings.TrimSpace(req.StudentID),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "enrollment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("enrollment_id", enrollment.ID).InfoContext(r.Context(), "enrollment created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "Enrollment created", toEnrollmentDTO(enrollment))
}

func (h *EnrollmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := enrollmentIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEnrollmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateStatus", "principal_id", principal.AccountID, "enrollment_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	status, err := timetable.ParseEnrollmentStatus(req.Status)
	if err != nil {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"status": "status is not recognized"}}
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "principal_id", principal.AccountID, "enrollment_id", id, "status", string(status))

	enrollment, err := h.service.UpdateStatus(r.Context(), application.UpdateEnrollmentStatusParams{
		Principal:    principal,
		EnrollmentID: id,
		Status:       status,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "enrollment status updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Enrollment updated", toEnrollmentDTO(enrollment))
}

func (h *EnrollmentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := enrollmentIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEnrollmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Withdraw", "principal_id", principal.AccountID, "enrollment_id", id)

	enrollment, err := h.service.Withdraw(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "withdrawal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "enrollment withdrawn")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Enrollment withdrawn", toEnrollmentDTO(enrollment))
}

func (h *EnrollmentHandler) ListForSchedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := scheduleIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	enrollments, err := h.service.ListForSchedule(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "ListForSchedule", "schedule_id", id).ErrorContext(r.Context(), "enrollment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Enrollments retrieved", toEnrollmentDTOs(enrollments))
}

func (h *EnrollmentHandler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	studentID := strings.TrimSpace(r.URL.Query().Get("studentId"))
	if studentID == "" {
		studentID = principal.AccountID
	}

	enrollments, err := h.service.ListForStudent(r.Context(), principal, studentID)
	if err != nil {
		h.log(r.Context(), "ListForStudent", "student_id", studentID).ErrorContext(r.Context(), "enrollment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Enrollments retrieved", toEnrollmentDTOs(enrollments))
}

func enrollmentIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := EnrollmentIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := parsePathID(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

type enrollRequest struct {
	ScheduleID int64  `json:"scheduleId"`
	StudentID  string `json:"studentId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type enrollmentDTO struct {
	ID         int64  `json:"id"`
	ScheduleID int64  `json:"scheduleId"`
	StudentID  string `json:"studentId"`
	Status     string `json:"status"`
	EnrolledAt string `json:"enrolledAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

func toEnrollmentDTO(enrollment application.Enrollment) enrollmentDTO {
	dto := enrollmentDTO{
		ID:         enrollment.ID,
		ScheduleID: enrollment.ScheduleID,
		StudentID:  enrollment.StudentID,
		Status:     string(enrollment.Status),
	}
	if !enrollment.EnrolledAt.IsZero() {
		dto.EnrolledAt = enrollment.EnrolledAt.UTC().Format(time.RFC3339)
	}
	if !enrollment.UpdatedAt.IsZero() {
		dto.UpdatedAt = enrollment.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toEnrollmentDTOs(enrollments []application.Enrollment) []enrollmentDTO {
	if len(enrollments) == 0 {
		return nil
	}
	out := make([]enrollmentDTO, 0, len(enrollments))
	for _, enrollment := range enrollments {
		out = append(out, toEnrollmentDTO(enrollment))
	}
	return out
}
