package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// TimetableService manages weekly section slots
type TimetableService interface {
	List(ctx context.Context, filter repositories.TimetableFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.TimetableSlot, error)
	Create(ctx context.Context, req *dto.TimetableSlotRequest) (*models.TimetableSlot, error)
	Update(ctx context.Context, id int64, req *dto.TimetableSlotRequest) (*models.TimetableSlot, error)
	Delete(ctx context.Context, id int64) error
}

type timetableServiceImpl struct {
	slotRepo    repositories.ITimetableRepository
	sectionRepo repositories.ISectionRepository
	audit       AuditService
}

// NewTimetableService creates a new TimetableService
func NewTimetableService(slotRepo repositories.ITimetableRepository, sectionRepo repositories.ISectionRepository, audit AuditService) TimetableService {
	return &timetableServiceImpl{slotRepo: slotRepo, sectionRepo: sectionRepo, audit: audit}
}

// List returns timetable slots. The room filter is matched in the upper-cased form rooms are stored in.
func (s *timetableServiceImpl) List(ctx context.Context, filter repositories.TimetableFilter) (*dto.PaginatedResponse, error) {
	if filter.Room != nil {
		room := strings.ToUpper(strings.TrimSpace(*filter.Room))
		filter.Room = &room
	}

	items, total, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing timetable: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *timetableServiceImpl) GetByID(ctx context.Context, id int64) (*models.TimetableSlot, error) {
	return s.slotRepo.GetByID(ctx, id)
}

// buildSlot validates times and resolves the session and faculty the slot inherits from its section
func (s *timetableServiceImpl) buildSlot(ctx context.Context, req *dto.TimetableSlotRequest) (*models.TimetableSlot, error) {
	start, err := helpers.ClockMinutes(req.StartTime)
	if err != nil {
		return nil, apperrors.NewValidationError("startTime must be HH:MM")
	}
	end, err := helpers.ClockMinutes(req.EndTime)
	if err != nil {
		return nil, apperrors.NewValidationError("endTime must be HH:MM")
	}
	if start >= end {
		return nil, apperrors.NewValidationError("startTime must be before endTime")
	}

	section, err := s.sectionRepo.GetByID(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}

	return &models.TimetableSlot{
		SectionID: req.SectionID,
		DayOfWeek: req.DayOfWeek,
		StartTime: fmt.Sprintf("%02d:%02d", start/60, start%60),
		EndTime:   fmt.Sprintf("%02d:%02d", end/60, end%60),
		Room:      strings.ToUpper(strings.TrimSpace(req.Room)),
		SessionID: section.SessionID,
		FacultyID: section.FacultyID,
	}, nil
}

func (s *timetableServiceImpl) checkConflicts(ctx context.Context, slot *models.TimetableSlot, excludeID int64) error {
	conflicts, err := s.slotRepo.FindConflicts(ctx, slot, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}

	c := conflicts[0]
	reason := "faculty"
	switch {
	case c.Room == slot.Room:
		reason = "room"
	case c.SectionID == slot.SectionID:
		reason = "section"
	}

	return apperrors.NewCustomError(apperrors.ErrSlotConflict,
		fmt.Sprintf("Slot overlaps %s-%s on day %d (same %s)", c.StartTime, c.EndTime, c.DayOfWeek, reason)).
		WithDetails(map[string]interface{}{"conflict": c, "reason": reason})
}

func (s *timetableServiceImpl) Create(ctx context.Context, req *dto.TimetableSlotRequest) (*models.TimetableSlot, error) {
	slot, err := s.buildSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.checkConflicts(ctx, slot, 0); err != nil {
		return nil, err
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "timetable_slot", slot.ID, slot)
	return slot, nil
}

func (s *timetableServiceImpl) Update(ctx context.Context, id int64, req *dto.TimetableSlotRequest) (*models.TimetableSlot, error) {
	if _, err := s.slotRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	slot, err := s.buildSlot(ctx, req)
	if err != nil {
		return nil, err
	}
	slot.ID = id
	if err := s.checkConflicts(ctx, slot, id); err != nil {
		return nil, err
	}

	if err := s.slotRepo.Update(ctx, slot); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "timetable_slot", id, slot)
	return s.slotRepo.GetByID(ctx, id)
}

func (s *timetableServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.slotRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionDelete, "timetable_slot", id, nil)
	return nil
}
