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

// DepartmentService handles department-related operations
type DepartmentService interface {
	List(ctx context.Context, filter repositories.DepartmentFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	Create(ctx context.Context, req *dto.DepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, id int64, req *dto.DepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, id int64) error
	SetHead(ctx context.Context, id int64, facultyID *int64) (*models.Department, error)
}

type departmentServiceImpl struct {
	departmentRepo repositories.IDepartmentRepository
	facultyRepo    repositories.IFacultyRepository
	audit          AuditService
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(departmentRepo repositories.IDepartmentRepository, facultyRepo repositories.IFacultyRepository, audit AuditService) DepartmentService {
	return &departmentServiceImpl{
		departmentRepo: departmentRepo,
		facultyRepo:    facultyRepo,
		audit:          audit,
	}
}

func (s *departmentServiceImpl) List(ctx context.Context, filter repositories.DepartmentFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.departmentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *departmentServiceImpl) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	return s.departmentRepo.GetByID(ctx, id)
}

// Create creates a department; the name is title-cased and the code upper-cased
func (s *departmentServiceImpl) Create(ctx context.Context, req *dto.DepartmentRequest) (*models.Department, error) {
	department := &models.Department{
		Name:        helpers.NormalizeName(req.Name),
		Code:        helpers.NormalizeCode(req.Code),
		Description: strings.TrimSpace(req.Description),
	}

	if err := s.departmentRepo.Create(ctx, department); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "department", department.ID, map[string]string{"code": department.Code})
	return department, nil
}

func (s *departmentServiceImpl) Update(ctx context.Context, id int64, req *dto.DepartmentRequest) (*models.Department, error) {
	department, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	department.Name = helpers.NormalizeName(req.Name)
	department.Code = helpers.NormalizeCode(req.Code)
	department.Description = strings.TrimSpace(req.Description)

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "department", id, map[string]string{"code": department.Code})
	return s.departmentRepo.GetByID(ctx, id)
}

// Delete removes a department that nothing references
func (s *departmentServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
		return err
	}

	related, err := s.departmentRepo.HasRelations(ctx, id)
	if err != nil {
		return fmt.Errorf("error checking department relations: %w", err)
	}
	if related {
		return apperrors.ErrDepartmentHasRelations
	}

	if err := s.departmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "department", id, nil)
	return nil
}

// SetHead assigns a head from the department's own faculty; nil clears it
func (s *departmentServiceImpl) SetHead(ctx context.Context, id int64, facultyID *int64) (*models.Department, error) {
	if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if facultyID != nil {
		member, err := s.facultyRepo.GetByID(ctx, *facultyID)
		if err != nil {
			return nil, err
		}
		if member.DepartmentID != id {
			return nil, apperrors.ErrFacultyNotInDepartment
		}
	}

	if err := s.departmentRepo.SetHead(ctx, id, facultyID); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "department", id, map[string]interface{}{"headFacultyId": facultyID})
	return s.departmentRepo.GetByID(ctx, id)
}
