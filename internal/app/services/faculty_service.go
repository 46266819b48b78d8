package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// FacultyService manages teaching staff
type FacultyService interface {
	List(ctx context.Context, filter repositories.FacultyFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.FacultyMember, error)
	Create(ctx context.Context, req *dto.CreateFacultyRequest) (*models.FacultyMember, error)
	Update(ctx context.Context, id int64, req *dto.UpdateFacultyRequest) (*models.FacultyMember, error)
	Delete(ctx context.Context, id int64) error
	Sections(ctx context.Context, id int64, sessionID *int64) ([]*models.Section, error)
}

type facultyServiceImpl struct {
	facultyRepo    repositories.IFacultyRepository
	userRepo       repositories.IUserRepository
	departmentRepo repositories.IDepartmentRepository
	sectionRepo    repositories.ISectionRepository
	tx             db.Transactor
	mailer         *Mailer
	audit          AuditService
	logger         zerolog.Logger
}

// NewFacultyService creates a new FacultyService
func NewFacultyService(
	facultyRepo repositories.IFacultyRepository,
	userRepo repositories.IUserRepository,
	departmentRepo repositories.IDepartmentRepository,
	sectionRepo repositories.ISectionRepository,
	tx db.Transactor,
	mailer *Mailer,
	audit AuditService,
	logger zerolog.Logger,
) FacultyService {
	return &facultyServiceImpl{
		facultyRepo:    facultyRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		sectionRepo:    sectionRepo,
		tx:             tx,
		mailer:         mailer,
		audit:          audit,
		logger:         logger,
	}
}

func (s *facultyServiceImpl) List(ctx context.Context, filter repositories.FacultyFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.facultyRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing faculty: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *facultyServiceImpl) GetByID(ctx context.Context, id int64) (*models.FacultyMember, error) {
	return s.facultyRepo.GetByID(ctx, id)
}

// Create opens a FACULTY account and its staff record in one transaction
func (s *facultyServiceImpl) Create(ctx context.Context, req *dto.CreateFacultyRequest) (*models.FacultyMember, error) {
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	emailAddr := helpers.NormalizeEmail(req.Email)
	taken, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hash,
		FirstName: helpers.NormalizeName(req.FirstName),
		LastName:  helpers.NormalizeName(req.LastName),
		Phone:     req.Phone,
		Status:    models.UserStatusActive,
	}
	member := &models.FacultyMember{
		DepartmentID: req.DepartmentID,
		EmployeeCode: helpers.NormalizeCode(req.EmployeeCode),
		Designation:  strings.TrimSpace(req.Designation),
		JoiningDate:  req.JoiningDate,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := s.userRepo.AddRoleByName(ctx, user.ID, models.RoleFaculty); err != nil {
			return err
		}
		member.UserID = user.ID
		return s.facultyRepo.Create(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "faculty", member.ID, map[string]interface{}{"userId": user.ID, "employeeCode": member.EmployeeCode})
	s.mailer.Go("welcome", func(ctx context.Context, svc email.EmailService) error {
		return svc.SendWelcomeEmail(ctx, user.Email, user.FullName())
	})

	s.logger.Info().Int64("facultyID", member.ID).Int64("userID", user.ID).Msg("Faculty member created")
	return s.facultyRepo.GetByID(ctx, member.ID)
}

func (s *facultyServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateFacultyRequest) (*models.FacultyMember, error) {
	member, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member.DepartmentID != req.DepartmentID {
		if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, member.UserID)
	if err != nil {
		return nil, err
	}
	user.FirstName = helpers.NormalizeName(req.FirstName)
	user.LastName = helpers.NormalizeName(req.LastName)
	user.Phone = req.Phone

	member.DepartmentID = req.DepartmentID
	member.Designation = strings.TrimSpace(req.Designation)
	member.JoiningDate = req.JoiningDate

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		return s.facultyRepo.Update(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "faculty", id, nil)
	return s.facultyRepo.GetByID(ctx, id)
}

// Delete removes the faculty member's account. Their sections keep running without an instructor.
func (s *facultyServiceImpl) Delete(ctx context.Context, id int64) error {
	member, err := s.facultyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if member.UserID == auth.UserIDFromContext(ctx) {
		return apperrors.ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, member.UserID); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "faculty", id, map[string]int64{"userId": member.UserID})
	return nil
}

// Sections returns the teaching load, optionally limited to one session
func (s *facultyServiceImpl) Sections(ctx context.Context, id int64, sessionID *int64) ([]*models.Section, error) {
	if _, err := s.facultyRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.sectionRepo.ListAll(ctx, repositories.SectionFilter{FacultyID: &id, SessionID: sessionID})
}
