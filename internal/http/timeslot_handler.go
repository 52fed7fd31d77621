package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/application"
)

type timeSlotService interface {
	ListTimeSlots(ctx context.Context, principal application.Principal, includeInactive bool) ([]application.TimeSlot, error)
	GetTimeSlot(ctx context.Context, id int64) (application.TimeSlot, error)
	CreateTimeSlot(ctx context.Context, params application.CreateTimeSlotParams) (application.TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, params application.UpdateTimeSlotParams) (application.TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, principal application.Principal, id int64) error
	DeactivateTimeSlot(ctx context.Context, principal application.Principal, id int64) (application.TimeSlot, error)
	CheckOverlap(ctx context.Context, start, end time.Time, excludeID int64) ([]application.TimeSlot, error)
	AvailableTimeSlots(ctx context.Context, dayID int64, semester string, academicYear int) ([]application.TimeSlot, error)
	UsageStats(ctx context.Context, principal application.Principal) (application.TimeSlotUsageStats, error)
}

type TimeSlotHandler struct {
	service   timeSlotService
	responder responder
	logger    *slog.Logger
}

func NewTimeSlotHandler(service timeSlotService, logger *slog.Logger) *TimeSlotHandler {
	base := defaultLogger(logger)
	return &TimeSlotHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimeSlotHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TimeSlotHandler", operation, attrs...)
}

func (h *TimeSlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	includeInactive := queryFlag(r, "includeInactive")
	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	slots, err := h.service.ListTimeSlots(r.Context(), principal, includeInactive)
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(slots)).InfoContext(r.Context(), "time slots listed")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Time slots retrieved", toTimeSlotDTOs(slots))
}

func (h *TimeSlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := timeSlotIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeSlotID)
		return
	}

	slot, err := h.service.GetTimeSlot(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "time_slot_id", id).ErrorContext(r.Context(), "time slot lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Time slot retrieved", toTimeSlotDTO(slot))
}

func (h *TimeSlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode time slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	slot, err := h.service.CreateTimeSlot(r.Context(), application.CreateTimeSlotParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("time_slot_id", slot.ID).InfoContext(r.Context(), "time slot created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "Time slot created", toTimeSlotDTO(slot))
}

func (h *TimeSlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := timeSlotIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeSlotID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req timeSlotUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "time_slot_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode time slot update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "time_slot_id", id)

	slot, err := h.service.UpdateTimeSlot(r.Context(), application.UpdateTimeSlotParams{
		Principal:  principal,
		TimeSlotID: id,
		Input:      input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "time slot updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Time slot updated", toTimeSlotDTO(slot))
}

func (h *TimeSlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := timeSlotIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeSlotID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "time_slot_id", id)

	if err := h.service.DeleteTimeSlot(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "time slot delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "time slot deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TimeSlotHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := timeSlotIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeSlotID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Deactivate", "principal_id", principal.AccountID, "time_slot_id", id)

	slot, err := h.service.DeactivateTimeSlot(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot deactivation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "time slot deactivated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Time slot deactivated", toTimeSlotDTO(slot))
}

func (h *TimeSlotHandler) CheckOverlap(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	start, errStart := parseSlotTime(query.Get("startTime"))
	end, errEnd := parseSlotTime(query.Get("endTime"))
	if errStart != nil || errEnd != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("startTime and endTime are required in HH:MM form"))
		return
	}
	var excludeID int64
	if raw := query.Get("excludeId"); raw != "" {
		parsed, err := parsePathID(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimeSlotID)
			return
		}
		excludeID = parsed
	}

	conflicts, err := h.service.CheckOverlap(r.Context(), start, end, excludeID)
	if err != nil {
		h.log(r.Context(), "CheckOverlap").ErrorContext(r.Context(), "overlap probe failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Overlap check completed", overlapCheckDTO{
		HasOverlap: len(conflicts) > 0,
		Conflicts:  toTimeSlotDTOs(conflicts),
	})
}

func (h *TimeSlotHandler) Available(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	dayID, err := parsePathID(query.Get("dayId"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("dayId must be a positive integer"))
		return
	}
	semester := strings.TrimSpace(query.Get("semester"))
	year, err := strconv.Atoi(query.Get("academicYear"))
	if semester == "" || err != nil || year <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("semester and academicYear are required"))
		return
	}

	slots, svcErr := h.service.AvailableTimeSlots(r.Context(), dayID, semester, year)
	if svcErr != nil {
		h.log(r.Context(), "Available").ErrorContext(r.Context(), "availability lookup failed", "error", svcErr, "error_kind", application.ErrorKind(svcErr))
		h.responder.handleServiceError(r.Context(), w, svcErr)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Available time slots retrieved", toTimeSlotDTOs(slots))
}

func (h *TimeSlotHandler) UsageStats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "UsageStats", "principal_id", principal.AccountID)

	stats, err := h.service.UsageStats(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "usage stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Time slot usage retrieved", toUsageStatsDTO(stats))
}

func timeSlotIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := TimeSlotIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := parsePathID(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func queryFlag(r *http.Request, name string) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(name)))
	return value == "true" || value == "1"
}

// parseSlotTime accepts a clock time ("09:00" or "09:00:00") or a full
// RFC 3339 timestamp. Clock times are anchored to a fixed reference date so
// interval comparisons stay meaningful.
func parseSlotTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errors.New("time is required")
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(2000, 1, 1, parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC), nil
		}
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, errors.New("time must be HH:MM or RFC 3339")
}

func formatSlotTime(t time.Time) string {
	return t.UTC().Format("15:04")
}

type timeSlotRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (r timeSlotRequest) toInput() (application.TimeSlotInput, error) {
	input := application.TimeSlotInput{Name: strings.TrimSpace(r.Name)}
	if strings.TrimSpace(r.StartTime) != "" {
		start, err := parseSlotTime(r.StartTime)
		if err != nil {
			return application.TimeSlotInput{}, err
		}
		input.StartTime = start
	}
	if strings.TrimSpace(r.EndTime) != "" {
		end, err := parseSlotTime(r.EndTime)
		if err != nil {
			return application.TimeSlotInput{}, err
		}
		input.EndTime = end
	}
	return input, nil
}

type timeSlotUpdateRequest struct {
	Name      *string `json:"name"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
}

func (r timeSlotUpdateRequest) toInput() (application.TimeSlotUpdateInput, error) {
	input := application.TimeSlotUpdateInput{Name: r.Name}
	if r.StartTime != nil {
		start, err := parseSlotTime(*r.StartTime)
		if err != nil {
			return application.TimeSlotUpdateInput{}, err
		}
		input.StartTime = &start
	}
	if r.EndTime != nil {
		end, err := parseSlotTime(*r.EndTime)
		if err != nil {
			return application.TimeSlotUpdateInput{}, err
		}
		input.EndTime = &end
	}
	return input, nil
}

type timeSlotDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type overlapCheckDTO struct {
	HasOverlap bool          `json:"hasOverlap"`
	Conflicts  []timeSlotDTO `json:"conflicts,omitempty"`
}

type usageStatsDTO struct {
	Total          int            `json:"total"`
	Used           int            `json:"used"`
	Unused         int            `json:"unused"`
	UtilizationPct int            `json:"utilizationRate"`
	Slots          []slotUsageDTO `json:"slots"`
}

type slotUsageDTO struct {
	TimeSlotID      int64  `json:"timeSlotId"`
	Name            string `json:"name"`
	ActiveSchedules int    `json:"activeSchedules"`
}

func toTimeSlotDTO(slot application.TimeSlot) timeSlotDTO {
	dto := timeSlotDTO{
		ID:        slot.ID,
		Name:      slot.Name,
		StartTime: formatSlotTime(slot.StartTime),
		EndTime:   formatSlotTime(slot.EndTime),
		IsActive:  slot.IsActive,
	}
	if !slot.CreatedAt.IsZero() {
		dto.CreatedAt = slot.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !slot.UpdatedAt.IsZero() {
		dto.UpdatedAt = slot.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toTimeSlotDTOs(slots []application.TimeSlot) []timeSlotDTO {
	if len(slots) == 0 {
		return nil
	}
	out := make([]timeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toTimeSlotDTO(slot))
	}
	return out
}

func toUsageStatsDTO(stats application.TimeSlotUsageStats) usageStatsDTO {
	dto := usageStatsDTO{
		Total:          stats.Total,
		Used:           stats.Used,
		Unused:         stats.Unused,
		UtilizationPct: stats.UtilizationPct,
	}
	for _, usage := range stats.Slots {
		dto.Slots = append(dto.Slots, slotUsageDTO{
			TimeSlotID:      usage.TimeSlotID,
			Name:            usage.Name,
			ActiveSchedules: usage.ActiveSchedules,
		})
	}
	return dto
}
