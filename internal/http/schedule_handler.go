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
	"github.com/example/course-scheduler/internal/meetings"
)

type scheduleService interface {
	CreateSchedule(ctx context.Context, params application.CreateScheduleParams) (application.Schedule, error)
	UpdateSchedule(ctx context.Context, params application.UpdateScheduleParams) (application.Schedule, error)
	DeleteSchedule(ctx context.Context, principal application.Principal, scheduleID int64) error
	GetSchedule(ctx context.Context, id int64) (application.ScheduleDetail, error)
	ListSchedules(ctx context.Context, params application.ListSchedulesParams) (application.SchedulePage, error)
	ListSchedulesForUnit(ctx context.Context, unitID int64) ([]application.ScheduleDetail, error)
	AvailableSchedules(ctx context.Context, semester *string, academicYear *int) ([]application.ScheduleDetail, error)
	CheckConflict(ctx context.Context, params application.ConflictCheckParams) (application.ConflictCheck, error)
	OverviewStats(ctx context.Context, principal application.Principal) (application.ScheduleOverviewStats, error)
	MeetingDates(ctx context.Context, scheduleID int64, from, until time.Time) ([]meetings.Meeting, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params, err := listParamsFromQuery(r, principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.AccountID)

	page, err := h.service.ListSchedules(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(page.Schedules), "total", page.Total).InfoContext(r.Context(), "schedules listed")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Schedules retrieved", toSchedulePageDTO(page))
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := scheduleIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	detail, err := h.service.GetSchedule(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "schedule_id", id).ErrorContext(r.Context(), "schedule lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Schedule retrieved", toScheduleDetailDTO(detail))
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	schedule, err := h.service.CreateSchedule(r.Context(), application.CreateScheduleParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("schedule_id", schedule.ID).InfoContext(r.Context(), "schedule created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "Schedule created", toScheduleDTO(schedule))
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req scheduleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "schedule_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode schedule update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "schedule_id", id)

	schedule, err := h.service.UpdateSchedule(r.Context(), application.UpdateScheduleParams{
		Principal:  principal,
		ScheduleID: id,
		Input:      req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "schedule updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Schedule updated", toScheduleDTO(schedule))
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	logger := h.log(r.Context(), "Delete", "principal_id", principal.AccountID, "schedule_id", id)

	if err := h.service.DeleteSchedule(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "schedule delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "schedule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) ListForUnit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw, ok := UnitIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}
	unitID, err := parsePathID(raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}

	details, err := h.service.ListSchedulesForUnit(r.Context(), unitID)
	if err != nil {
		h.log(r.Context(), "ListForUnit", "unit_id", unitID).ErrorContext(r.Context(), "unit schedule list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Schedules retrieved", toScheduleDetailDTOs(details))
}

func (h *ScheduleHandler) Available(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	var semester *string
	if value := strings.TrimSpace(query.Get("semester")); value != "" {
		semester = &value
	}
	var academicYear *int
	if raw := strings.TrimSpace(query.Get("academicYear")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("academicYear must be a positive integer"))
			return
		}
		academicYear = &year
	}

	details, err := h.service.AvailableSchedules(r.Context(), semester, academicYear)
	if err != nil {
		h.log(r.Context(), "Available").ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Available schedules retrieved", toScheduleDetailDTOs(details))
}

// CheckConflict probes a weekly slot without mutating anything. A detected
// conflict still answers 200, the body carries the verdict.
func (h *ScheduleHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	timeSlotID, errSlot := parsePathID(query.Get("timeSlotId"))
	dayID, errDay := parsePathID(query.Get("dayId"))
	if errSlot != nil || errDay != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("timeSlotId and dayId must be positive integers"))
		return
	}
	year, err := strconv.Atoi(strings.TrimSpace(query.Get("academicYear")))
	if err != nil || year <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("academicYear must be a positive integer"))
		return
	}
	var excludeID int64
	if raw := strings.TrimSpace(query.Get("excludeId")); raw != "" {
		parsed, err := parsePathID(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
			return
		}
		excludeID = parsed
	}

	check, err := h.service.CheckConflict(r.Context(), application.ConflictCheckParams{
		TimeSlotID:   timeSlotID,
		DayID:        dayID,
		Semester:     strings.TrimSpace(query.Get("semester")),
		AcademicYear: year,
		ExcludeID:    excludeID,
	})
	if err != nil {
		h.log(r.Context(), "CheckConflict").ErrorContext(r.Context(), "conflict probe failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Conflict check completed", conflictCheckDTO{
		HasConflict: check.HasConflict,
		Message:     check.Message,
	})
}

func (h *ScheduleHandler) OverviewStats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "OverviewStats", "principal_id", principal.AccountID)

	stats, err := h.service.OverviewStats(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "overview stats failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Schedule overview retrieved", overviewStatsDTO{
		TotalSchedules:  stats.TotalSchedules,
		ActiveSchedules: stats.ActiveSchedules,
		TotalCapacity:   stats.TotalCapacity,
		TotalApproved:   stats.TotalApproved,
		AvailableSpots:  stats.AvailableSpots,
		FullSchedules:   stats.FullSchedules,
		EmptySchedules:  stats.EmptySchedules,
		UtilizationPct:  stats.UtilizationPct,
	})
}

func (h *ScheduleHandler) Meetings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := scheduleIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidScheduleID)
		return
	}

	query := r.URL.Query()
	from, errFrom := time.Parse(time.RFC3339, query.Get("from"))
	until, errUntil := time.Parse(time.RFC3339, query.Get("until"))
	if errFrom != nil || errUntil != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("from and until are required RFC 3339 timestamps"))
		return
	}

	dates, err := h.service.MeetingDates(r.Context(), id, from, until)
	if err != nil {
		h.log(r.Context(), "Meetings", "schedule_id", id).ErrorContext(r.Context(), "meeting expansion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]meetingDTO, 0, len(dates))
	for _, meeting := range dates {
		out = append(out, meetingDTO{
			ScheduleID: meeting.ScheduleID,
			Start:      meeting.Start.UTC().Format(time.RFC3339),
			End:        meeting.End.UTC().Format(time.RFC3339),
		})
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "Meeting dates retrieved", out)
}

func scheduleIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := ScheduleIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := parsePathID(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func listParamsFromQuery(r *http.Request, principal application.Principal) (application.ListSchedulesParams, error) {
	query := r.URL.Query()
	params := application.ListSchedulesParams{
		Principal:       principal,
		IncludeInactive: queryFlag(r, "includeInactive"),
	}

	for name, target := range map[string]**int64{
		"unitId":     &params.UnitID,
		"timeSlotId": &params.TimeSlotID,
		"dayId":      &params.DayID,
	} {
		raw := strings.TrimSpace(query.Get(name))
		if raw == "" {
			continue
		}
		id, err := parsePathID(raw)
		if err != nil {
			return application.ListSchedulesParams{}, errors.New(name + " must be a positive integer")
		}
		*target = &id
	}

	if semester := strings.TrimSpace(query.Get("semester")); semester != "" {
		params.Semester = &semester
	}
	if raw := strings.TrimSpace(query.Get("academicYear")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return application.ListSchedulesParams{}, errors.New("academicYear must be a positive integer")
		}
		params.AcademicYear = &year
	}
	if raw := strings.TrimSpace(query.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return application.ListSchedulesParams{}, errors.New("page must be a positive integer")
		}
		params.Page = page
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return application.ListSchedulesParams{}, errors.New("limit must be a positive integer")
		}
		params.Limit = limit
	}

	return params, nil
}

type scheduleRequest struct {
	UnitID       int64   `json:"unitId"`
	TimeSlotID   int64   `json:"timeSlotId"`
	DayID        int64   `json:"dayId"`
	Semester     string  `json:"semester"`
	AcademicYear int     `json:"academicYear"`
	TutorName    *string `json:"tutorName"`
	Location     *string `json:"location"`
	MaxCapacity  *int    `json:"maxCapacity"`
}

func (r scheduleRequest) toInput() application.ScheduleInput {
	return application.ScheduleInput{
		UnitID:       r.UnitID,
		TimeSlotID:   r.TimeSlotID,
		DayID:        r.DayID,
		Semester:     strings.TrimSpace(r.Semester),
		AcademicYear: r.AcademicYear,
		TutorName:    r.TutorName,
		Location:     r.Location,
		MaxCapacity:  r.MaxCapacity,
	}
}

type scheduleUpdateRequest struct {
	TimeSlotID   *int64  `json:"timeSlotId"`
	DayID        *int64  `json:"dayId"`
	Semester     *string `json:"semester"`
	AcademicYear *int    `json:"academicYear"`
	TutorName    *string `json:"tutorName"`
	Location     *string `json:"location"`
	MaxCapacity  *int    `json:"maxCapacity"`
}

func (r scheduleUpdateRequest) toInput() application.ScheduleUpdateInput {
	return application.ScheduleUpdateInput{
		TimeSlotID:   r.TimeSlotID,
		DayID:        r.DayID,
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
		TutorName:    r.TutorName,
		Location:     r.Location,
		MaxCapacity:  r.MaxCapacity,
	}
}

type conflictCheckDTO struct {
	HasConflict bool   `json:"hasConflict"`
	Message     string `json:"message,omitempty"`
}

type scheduleDTO struct {
	ID           int64       `json:"id"`
	Unit         unitDTO     `json:"unit"`
	TimeSlot     timeSlotDTO `json:"timeSlot"`
	Day          dayDTO      `json:"day"`
	Semester     string      `json:"semester"`
	AcademicYear int         `json:"academicYear"`
	TutorName    *string     `json:"tutorName,omitempty"`
	Location     *string     `json:"location,omitempty"`
	MaxCapacity  *int        `json:"maxCapacity,omitempty"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    string      `json:"createdAt,omitempty"`
	UpdatedAt    string      `json:"updatedAt,omitempty"`
}

type scheduleDetailDTO struct {
	scheduleDTO
	Capacity      int  `json:"capacity"`
	ApprovedCount int  `json:"approvedCount"`
	PendingCount  int  `json:"pendingCount"`
	SpotsLeft     int  `json:"spotsLeft"`
	Full          bool `json:"full"`
}

type schedulePageDTO struct {
	Schedules []scheduleDetailDTO `json:"schedules"`
	Total     int                 `json:"total"`
	Page      int                 `json:"page"`
	Limit     int                 `json:"limit"`
}

type overviewStatsDTO struct {
	TotalSchedules  int `json:"totalSchedules"`
	ActiveSchedules int `json:"activeSchedules"`
	TotalCapacity   int `json:"totalCapacity"`
	TotalApproved   int `json:"totalApproved"`
	AvailableSpots  int `json:"availableSpots"`
	FullSchedules   int `json:"fullSchedules"`
	EmptySchedules  int `json:"emptySchedules"`
	UtilizationPct  int `json:"utilizationRate"`
}

type meetingDTO struct {
	ScheduleID int64  `json:"scheduleId"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func toScheduleDTO(schedule application.Schedule) scheduleDTO {
	dto := scheduleDTO{
		ID:           schedule.ID,
		Unit:         toUnitDTO(schedule.Unit),
		TimeSlot:     toTimeSlotDTO(schedule.TimeSlot),
		Day:          toDayDTO(schedule.Day),
		Semester:     schedule.Semester,
		AcademicYear: schedule.AcademicYear,
		TutorName:    schedule.TutorName,
		Location:     schedule.Location,
		MaxCapacity:  schedule.MaxCapacity,
		IsActive:     schedule.IsActive,
	}
	if !schedule.CreatedAt.IsZero() {
		dto.CreatedAt = schedule.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !schedule.UpdatedAt.IsZero() {
		dto.UpdatedAt = schedule.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toScheduleDetailDTO(detail application.ScheduleDetail) scheduleDetailDTO {
	return scheduleDetailDTO{
		scheduleDTO:   toScheduleDTO(detail.Schedule),
		Capacity:      detail.Stats.Capacity,
		ApprovedCount: detail.Stats.Approved,
		PendingCount:  detail.Stats.Pending,
		SpotsLeft:     detail.Stats.AvailableSpots,
		Full:          detail.Stats.Full,
	}
}

func toScheduleDetailDTOs(details []application.ScheduleDetail) []scheduleDetailDTO {
	if len(details) == 0 {
		return nil
	}
	out := make([]scheduleDetailDTO, 0, len(details))
	for _, detail := range details {
		out = append(out, toScheduleDetailDTO(detail))
	}
	return out
}

func toSchedulePageDTO(page application.SchedulePage) schedulePageDTO {
	dto := schedulePageDTO{
		Schedules: toScheduleDetailDTOs(page.Schedules),
		Total:     page.Total,
		Page:      page.Page,
		Limit:     page.Limit,
	}
	if dto.Schedules == nil {
		dto.Schedules = []scheduleDetailDTO{}
	}
	return dto
}
