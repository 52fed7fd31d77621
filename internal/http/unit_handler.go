package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/application"
)

type unitService interface {
	CreateUnit(ctx context.Context, params application.CreateUnitParams) (application.Unit, error)
	UpdateUnit(ctx context.Context, params application.UpdateUnitParams) (application.Unit, error)
	GetUnit(ctx context.Context, id int64) (application.Unit, error)
	ListUnits(ctx context.Context, includeInactive bool) ([]application.Unit, error)
	DeactivateUnit(ctx context.Context, principal application.Principal, unitID int64) error
}

type UnitHandler struct {
	service   unitService
	responder responder
	logger    *slog.Logger
}

func NewUnitHandler(service unitService, logger *slog.Logger) *UnitHandler {
	base := defaultLogger(logger)
	return &UnitHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *UnitHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UnitHandler", operation, attrs...)
}

func (h *UnitHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	units, err := h.service.ListUnits(r.Context(), queryFlag(r, "includeInactive"))
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "unit list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Units retrieved", toUnitDTOs(units))
}

func (h *UnitHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := unitIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}

	unit, err := h.service.GetUnit(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "unit_id", id).ErrorContext(r.Context(), "unit lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, "Unit retrieved", toUnitDTO(unit))
}

func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req unitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.AccountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode unit request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.AccountID)

	unit, err := h.service.CreateUnit(r.Context(), application.CreateUnitParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "unit creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("unit_id", unit.ID, "unit_code", unit.Code).InfoContext(r.Context(), "unit created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, "Unit created", toUnitDTO(unit))
}

func (h *UnitHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := unitIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req unitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.AccountID, "unit_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode unit update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.AccountID, "unit_id", id)

	unit, err := h.service.UpdateUnit(r.Context(), application.UpdateUnitParams{
		Principal: principal,
		UnitID:    id,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "unit update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "unit updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, "Unit updated", toUnitDTO(unit))
}

func (h *UnitHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := unitIDFromRequest(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUnitID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Deactivate", "principal_id", principal.AccountID, "unit_id", id)

	if err := h.service.DeactivateUnit(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "unit deactivation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "unit deactivated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func unitIDFromRequest(r *http.Request) (int64, bool) {
	raw, ok := UnitIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	id, err := parsePathID(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

type unitRequest struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Credits     int     `json:"credits"`
	Capacity    int     `json:"capacity"`
}

func (r unitRequest) toInput() application.UnitInput {
	return application.UnitInput{
		Code:        strings.TrimSpace(r.Code),
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Credits:     r.Credits,
		Capacity:    r.Capacity,
	}
}

type unitDTO struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Credits     int     `json:"credits"`
	Capacity    int     `json:"capacity"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

func toUnitDTO(unit application.Unit) unitDTO {
	dto := unitDTO{
		ID:          unit.ID,
		Code:        unit.Code,
		Title:       unit.Title,
		Description: unit.Description,
		Credits:     unit.Credits,
		Capacity:    unit.Capacity,
		IsActive:    unit.IsActive,
	}
	if !unit.CreatedAt.IsZero() {
		dto.CreatedAt = unit.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !unit.UpdatedAt.IsZero() {
		dto.UpdatedAt = unit.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toUnitDTOs(units []application.Unit) []unitDTO {
	if len(units) == 0 {
		return nil
	}
	out := make([]unitDTO, 0, len(units))
	for _, unit := range units {
		out = append(out, toUnitDTO(unit))
	}
	return out
}
