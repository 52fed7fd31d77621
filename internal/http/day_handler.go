package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/course-scheduler/internal/application"
)

type dayService interface {
	ListDays(ctx context.Context) ([]application.Day, error)
	GetDay(ctx context.Context, id int64) (application.Day, error)
}

type DayHandler struct {
	service   dayService
	responder responder
	logger    *slog.Logger
}

func NewDayHandler(service dayService, logger *slog.Logger) *DayHandler {
	base := defaultLogger(logger)
	return &DayHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DayHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	days, err := h.service.ListDays(r.Context())
	if err != nil {
		handlerLogger(r.Context(), h.logger, "DayHandler", "List").ErrorContext(r.Context(), "day list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]dayDTO, 0, len(days))
	for _, day := range days {
		out = append(out, toDayDTO(day))
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, "Days retrieved", out)
}

type dayDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

func toDayDTO(day application.Day) dayDTO {
	return dayDTO{ID: day.ID, Name: day.Name, Position: day.Position}
}
