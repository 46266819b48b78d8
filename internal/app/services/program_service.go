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

// ProgramService handles degree programs and their learning outcomes
type ProgramService interface {
	List(ctx context.Context, filter repositories.ProgramFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	Create(ctx context.Context, req *dto.ProgramRequest) (*models.Program, error)
	Update(ctx context.Context, id int64, req *dto.ProgramRequest) (*models.Program, error)
	Delete(ctx context.Context, id int64) error

	ListPLOs(ctx context.Context, programID int64) ([]*models.PLO, error)
	CreatePLO(ctx context.Context, programID int64, req *dto.PLORequest) (*models.PLO, error)
	UpdatePLO(ctx context.Context, id int64, req *dto.PLORequest) (*models.PLO, error)
	DeletePLO(ctx context.Context, id int64) error
}

type programServiceImpl struct {
	programRepo    repositories.IProgramRepository
	departmentRepo repositories.IDepartmentRepository
	outcomeRepo    repositories.IOutcomeRepository
	audit          AuditService
}

// NewProgramService creates a new ProgramService
func NewProgramService(
	programRepo repositories.IProgramRepository,
	departmentRepo repositories.IDepartmentRepository,
	outcomeRepo repositories.IOutcomeRepository,
	audit AuditService,
) ProgramService {
	return &programServiceImpl{
		programRepo:    programRepo,
		departmentRepo: departmentRepo,
		outcomeRepo:    outcomeRepo,
		audit:          audit,
	}
}

func (s *programServiceImpl) List(ctx context.Context, filter repositories.ProgramFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.programRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *programServiceImpl) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	return s.programRepo.GetByID(ctx, id)
}

// Create creates a program in an existing department
func (s *programServiceImpl) Create(ctx context.Context, req *dto.ProgramRequest) (*models.Program, error) {
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	program := &models.Program{
		DepartmentID:  req.DepartmentID,
		Name:          strings.TrimSpace(req.Name),
		Code:          helpers.NormalizeCode(req.Code),
		DegreeLevel:   models.DegreeLevel(req.DegreeLevel),
		DurationYears: req.DurationYears,
	}
	if err := s.programRepo.Create(ctx, program); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "program", program.ID, map[string]string{"code": program.Code})
	return s.programRepo.GetByID(ctx, program.ID)
}

func (s *programServiceImpl) Update(ctx context.Context, id int64, req *dto.ProgramRequest) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if program.DepartmentID != req.DepartmentID {
		if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
			return nil, err
		}
	}

	program.DepartmentID = req.DepartmentID
	program.Name = strings.TrimSpace(req.Name)
	program.Code = helpers.NormalizeCode(req.Code)
	program.DegreeLevel = models.DegreeLevel(req.DegreeLevel)
	program.DurationYears = req.DurationYears

	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "program", id, map[string]string{"code": program.Code})
	return s.programRepo.GetByID(ctx, id)
}

// Delete removes a program without batches or students
func (s *programServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.programRepo.GetByID(ctx, id); err != nil {
		return err
	}

	related, err := s.programRepo.HasRelations(ctx, id)
	if err != nil {
		return fmt.Errorf("error checking program relations: %w", err)
	}
	if related {
		return apperrors.ErrProgramHasRelations
	}

	if err := s.programRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "program", id, nil)
	return nil
}

func (s *programServiceImpl) ListPLOs(ctx context.Context, programID int64) ([]*models.PLO, error) {
	if _, err := s.programRepo.GetByID(ctx, programID); err != nil {
		return nil, err
	}
	return s.outcomeRepo.ListPLOs(ctx, programID)
}

func (s *programServiceImpl) CreatePLO(ctx context.Context, programID int64, req *dto.PLORequest) (*models.PLO, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	plo := &models.PLO{
		ProgramID:    programID,
		DepartmentID: program.DepartmentID,
		Code:         helpers.NormalizeCode(req.Code),
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
	}
	if err := s.outcomeRepo.CreatePLO(ctx, plo); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "plo", plo.ID, map[string]interface{}{"programId": programID, "code": plo.Code})
	return plo, nil
}

func (s *programServiceImpl) UpdatePLO(ctx context.Context, id int64, req *dto.PLORequest) (*models.PLO, error) {
	plo, err := s.outcomeRepo.GetPLO(ctx, id)
	if err != nil {
		return nil, err
	}

	plo.Code = helpers.NormalizeCode(req.Code)
	plo.Title = strings.TrimSpace(req.Title)
	plo.Description = strings.TrimSpace(req.Description)

	if err := s.outcomeRepo.UpdatePLO(ctx, plo); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "plo", id, nil)
	return plo, nil
}

func (s *programServiceImpl) DeletePLO(ctx context.Context, id int64) error {
	if err := s.outcomeRepo.DeletePLO(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionDelete, "plo", id, nil)
	return nil
}
