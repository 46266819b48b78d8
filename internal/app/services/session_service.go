package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// SessionService handles academic sessions
type SessionService interface {
	List(ctx context.Context, filter repositories.SessionFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.AcademicSession, error)
	GetActive(ctx context.Context) (*models.AcademicSession, error)
	Create(ctx context.Context, req *dto.SessionRequest) (*models.AcademicSession, error)
	Update(ctx context.Context, id int64, req *dto.SessionRequest) (*models.AcademicSession, error)
	Activate(ctx context.Context, id int64) (*models.AcademicSession, error)
	Delete(ctx context.Context, id int64) error
}

type sessionServiceImpl struct {
	sessionRepo repositories.ISessionRepository
	tx          db.Transactor
	audit       AuditService
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repositories.ISessionRepository, tx db.Transactor, audit AuditService) SessionService {
	return &sessionServiceImpl{sessionRepo: sessionRepo, tx: tx, audit: audit}
}

func validateSessionDates(req *dto.SessionRequest) error {
	if !req.StartDate.Before(req.EndDate) {
		return apperrors.NewValidationError("startDate must be before endDate")
	}
	return nil
}

func (s *sessionServiceImpl) List(ctx context.Context, filter repositories.SessionFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *sessionServiceImpl) GetByID(ctx context.Context, id int64) (*models.AcademicSession, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

func (s *sessionServiceImpl) GetActive(ctx context.Context) (*models.AcademicSession, error) {
	return s.sessionRepo.GetActive(ctx)
}

func (s *sessionServiceImpl) Create(ctx context.Context, req *dto.SessionRequest) (*models.AcademicSession, error) {
	if err := validateSessionDates(req); err != nil {
		return nil, err
	}

	session := &models.AcademicSession{
		Name:      strings.TrimSpace(req.Name),
		Term:      models.Term(req.Term),
		Year:      req.Year,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "session", session.ID, map[string]string{"name": session.Name})
	return session, nil
}

func (s *sessionServiceImpl) Update(ctx context.Context, id int64, req *dto.SessionRequest) (*models.AcademicSession, error) {
	if err := validateSessionDates(req); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Name = strings.TrimSpace(req.Name)
	session.Term = models.Term(req.Term)
	session.Year = req.Year
	session.StartDate = req.StartDate
	session.EndDate = req.EndDate

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "session", id, nil)
	return session, nil
}

// Activate makes the session the only active one
func (s *sessionServiceImpl) Activate(ctx context.Context, id int64) (*models.AcademicSession, error) {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.sessionRepo.Activate(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionActivate, "session", id, nil)
	return s.sessionRepo.GetByID(ctx, id)
}

// Delete removes an inactive session
func (s *sessionServiceImpl) Delete(ctx context.Context, id int64) error {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session.IsActive {
		return apperrors.ErrSessionActive
	}

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "session", id, nil)
	return nil
}
