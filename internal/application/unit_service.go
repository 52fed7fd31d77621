package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// UnitRepository captures the persistence interactions needed by the service.
type UnitRepository interface {
	CreateUnit(ctx context.Context, unit Unit) (Unit, error)
	GetUnit(ctx context.Context, id int64) (Unit, error)
	GetUnitByCode(ctx context.Context, code string) (Unit, error)
	UpdateUnit(ctx context.Context, unit Unit) (Unit, error)
	ListUnits(ctx context.Context, includeInactive bool) ([]Unit, error)
}

// ScheduleCounter reports how many active schedules reference a unit.
type ScheduleCounter interface {
	CountActiveSchedulesForUnit(ctx context.Context, unitID int64) (int, error)
}

// UnitService manages the academic unit catalog. Unit codes are normalized to
// upper case and kept unique across the catalog.
type UnitService struct {
	units     UnitRepository
	schedules ScheduleCounter
	now       func() time.Time
	logger    *slog.Logger
}

// NewUnitService wires dependencies for unit operations.
func NewUnitService(units UnitRepository, schedules ScheduleCounter, now func() time.Time) *UnitService {
	return NewUnitServiceWithLogger(units, schedules, now, nil)
}

// NewUnitServiceWithLogger constructs a unit service with a specified logger.
func NewUnitServiceWithLogger(units UnitRepository, schedules ScheduleCounter, now func() time.Time, logger *slog.Logger) *UnitService {
	if now == nil {
		now = time.Now
	}
	return &UnitService{units: units, schedules: schedules, now: now, logger: defaultLogger(logger)}
}

func (s *UnitService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UnitService", operation, attrs...)
}

// CreateUnit validates and persists a new unit with an upper-cased unique code.
func (s *UnitService) CreateUnit(ctx context.Context, params CreateUnitParams) (unit Unit, err error) {
	if s == nil || s.units == nil {
		err = fmt.Errorf("unit repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateUnit", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create unit", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("unit_id", unit.ID).InfoContext(ctx, "unit created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var normalized UnitInput
	if normalized, err = validateUnitInput(params.Input); err != nil {
		return
	}

	if err = s.ensureCodeAvailable(ctx, normalized.Code, 0); err != nil {
		return
	}

	now := s.now()
	unit = Unit{
		Code:        normalized.Code,
		Title:       normalized.Title,
		Description: normalized.Description,
		Credits:     normalized.Credits,
		Capacity:    normalized.Capacity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	unit, err = s.units.CreateUnit(ctx, unit)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// UpdateUnit replaces the mutable fields of an existing unit.
func (s *UnitService) UpdateUnit(ctx context.Context, params UpdateUnitParams) (unit Unit, err error) {
	if s == nil || s.units == nil {
		err = fmt.Errorf("unit repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUnit",
		"principal_id", params.Principal.AccountID,
		"unit_id", params.UnitID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update unit", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "unit updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing Unit
	existing, err = s.units.GetUnit(ctx, params.UnitID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var normalized UnitInput
	if normalized, err = validateUnitInput(params.Input); err != nil {
		return
	}

	if normalized.Code != existing.Code {
		if err = s.ensureCodeAvailable(ctx, normalized.Code, existing.ID); err != nil {
			return
		}
	}

	existing.Code = normalized.Code
	existing.Title = normalized.Title
	existing.Description = normalized.Description
	existing.Credits = normalized.Credits
	existing.Capacity = normalized.Capacity
	existing.UpdatedAt = s.now()

	unit, err = s.units.UpdateUnit(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetUnit returns one unit by id.
func (s *UnitService) GetUnit(ctx context.Context, id int64) (Unit, error) {
	if s == nil || s.units == nil {
		return Unit{}, fmt.Errorf("unit repository not configured")
	}
	unit, err := s.units.GetUnit(ctx, id)
	if err != nil {
		return Unit{}, mapRepoError(err)
	}
	return unit, nil
}

// ListUnits returns the unit catalog ordered by code.
func (s *UnitService) ListUnits(ctx context.Context, includeInactive bool) ([]Unit, error) {
	if s == nil || s.units == nil {
		return nil, fmt.Errorf("unit repository not configured")
	}
	units, err := s.units.ListUnits(ctx, includeInactive)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Code < units[j].Code })
	return units, nil
}

// DeactivateUnit soft-deletes a unit that no active schedule references.
func (s *UnitService) DeactivateUnit(ctx context.Context, principal Principal, unitID int64) error {
	if s == nil || s.units == nil {
		return fmt.Errorf("unit repository not configured")
	}

	logger := s.loggerWith(ctx, "DeactivateUnit", "principal_id", principal.AccountID, "unit_id", unitID)

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	existing, err := s.units.GetUnit(ctx, unitID)
	if err != nil {
		return mapRepoError(err)
	}

	if s.schedules != nil {
		count, err := s.schedules.CountActiveSchedulesForUnit(ctx, existing.ID)
		if err != nil {
			return mapRepoError(err)
		}
		if count > 0 {
			err := &PreconditionError{Message: fmt.Sprintf("unit is referenced by %d active schedule(s)", count)}
			logger.ErrorContext(ctx, "unit deactivation blocked", "error", err, "error_kind", ErrorKind(err))
			return err
		}
	}

	existing.IsActive = false
	existing.UpdatedAt = s.now()
	if _, err := s.units.UpdateUnit(ctx, existing); err != nil {
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "unit deactivated")
	return nil
}

func (s *UnitService) ensureCodeAvailable(ctx context.Context, code string, selfID int64) error {
	existing, err := s.units.GetUnitByCode(ctx, code)
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			return nil
		}
		return mapRepoError(err)
	}
	if existing.ID == selfID {
		return nil
	}
	return &ConflictError{Message: fmt.Sprintf("unit code %s is already in use", code)}
}

func validateUnitInput(input UnitInput) (UnitInput, error) {
	vErr := &ValidationError{}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		vErr.add("code", "code is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		vErr.add("title", "title is required")
	}
	if input.Credits <= 0 {
		vErr.add("credits", "credits must be a positive integer")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be a positive integer")
	}
	if vErr.HasErrors() {
		return UnitInput{}, vErr
	}

	return UnitInput{
		Code:        code,
		Title:       title,
		Description: normalizeOptionalString(input.Description),
		Credits:     input.Credits,
		Capacity:    input.Capacity,
	}, nil
}
