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

// CourseService handles the course catalog and course learning outcomes
type CourseService interface {
	List(ctx context.Context, filter repositories.CourseFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, req *dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id int64) error

	ListCLOs(ctx context.Context, courseID int64) ([]*models.CLO, error)
	CreateCLO(ctx context.Context, courseID int64, req *dto.CLORequest) (*models.CLO, error)
	UpdateCLO(ctx context.Context, id int64, req *dto.CLORequest) (*models.CLO, error)
	DeleteCLO(ctx context.Context, id int64) error
	MapCLOToPLOs(ctx context.Context, cloID int64, items []dto.CLOMappingItem) ([]models.CLOPLOMapping, error)
	OutcomeMatrix(ctx context.Context, courseID int64) (*dto.OutcomeMatrixResponse, error)
}

type courseServiceImpl struct {
	courseRepo     repositories.ICourseRepository
	departmentRepo repositories.IDepartmentRepository
	outcomeRepo    repositories.IOutcomeRepository
	tx             db.Transactor
	audit          AuditService
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	departmentRepo repositories.IDepartmentRepository,
	outcomeRepo repositories.IOutcomeRepository,
	tx db.Transactor,
	audit AuditService,
) CourseService {
	return &courseServiceImpl{
		courseRepo:     courseRepo,
		departmentRepo: departmentRepo,
		outcomeRepo:    outcomeRepo,
		tx:             tx,
		audit:          audit,
	}
}

func (s *courseServiceImpl) List(ctx context.Context, filter repositories.CourseFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *courseServiceImpl) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

func (s *courseServiceImpl) Create(ctx context.Context, req *dto.CourseRequest) (*models.Course, error) {
	if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	course := &models.Course{
		DepartmentID: req.DepartmentID,
		Code:         helpers.NormalizeCode(req.Code),
		Title:        strings.TrimSpace(req.Title),
		CreditHours:  req.CreditHours,
		Description:  strings.TrimSpace(req.Description),
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "course", course.ID, map[string]string{"code": course.Code})
	return course, nil
}

func (s *courseServiceImpl) Update(ctx context.Context, id int64, req *dto.CourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.DepartmentID != req.DepartmentID {
		if _, err := s.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
			return nil, err
		}
	}

	course.DepartmentID = req.DepartmentID
	course.Code = helpers.NormalizeCode(req.Code)
	course.Title = strings.TrimSpace(req.Title)
	course.CreditHours = req.CreditHours
	course.Description = strings.TrimSpace(req.Description)

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "course", id, map[string]string{"code": course.Code})
	return s.courseRepo.GetByID(ctx, id)
}

func (s *courseServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionDelete, "course", id, nil)
	return nil
}

func (s *courseServiceImpl) ListCLOs(ctx context.Context, courseID int64) ([]*models.CLO, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.outcomeRepo.ListCLOs(ctx, courseID)
}

func (s *courseServiceImpl) CreateCLO(ctx context.Context, courseID int64, req *dto.CLORequest) (*models.CLO, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	clo := &models.CLO{
		CourseID:    courseID,
		Code:        helpers.NormalizeCode(req.Code),
		Description: strings.TrimSpace(req.Description),
		BloomLevel:  req.BloomLevel,
	}
	if err := s.outcomeRepo.CreateCLO(ctx, clo); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "clo", clo.ID, map[string]interface{}{"courseId": courseID, "code": clo.Code})
	return clo, nil
}

func (s *courseServiceImpl) UpdateCLO(ctx context.Context, id int64, req *dto.CLORequest) (*models.CLO, error) {
	clo, err := s.outcomeRepo.GetCLO(ctx, id)
	if err != nil {
		return nil, err
	}

	clo.Code = helpers.NormalizeCode(req.Code)
	clo.Description = strings.TrimSpace(req.Description)
	clo.BloomLevel = req.BloomLevel

	if err := s.outcomeRepo.UpdateCLO(ctx, clo); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "clo", id, nil)
	return clo, nil
}

func (s *courseServiceImpl) DeleteCLO(ctx context.Context, id int64) error {
	if err := s.outcomeRepo.DeleteCLO(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionDelete, "clo", id, nil)
	return nil
}

// MapCLOToPLOs replaces the CLO's PLO mapping. Every PLO must belong to a program of the
// course's department. An empty list clears the mapping.
func (s *courseServiceImpl) MapCLOToPLOs(ctx context.Context, cloID int64, items []dto.CLOMappingItem) ([]models.CLOPLOMapping, error) {
	clo, err := s.outcomeRepo.GetCLO(ctx, cloID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, clo.CourseID)
	if err != nil {
		return nil, err
	}

	mappings := make([]models.CLOPLOMapping, 0, len(items))
	ploIDs := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if seen[item.PLOID] {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("PLO %d is mapped more than once", item.PLOID))
		}
		seen[item.PLOID] = true
		ploIDs = append(ploIDs, item.PLOID)
		mappings = append(mappings, models.CLOPLOMapping{CLOID: cloID, PLOID: item.PLOID, Weight: models.MappingWeight(item.Weight)})
	}

	if len(ploIDs) > 0 {
		plos, err := s.outcomeRepo.GetPLOsByIDs(ctx, ploIDs)
		if err != nil {
			return nil, err
		}
		if len(plos) != len(ploIDs) {
			return nil, apperrors.ErrPLONotFound
		}

		var outside []int64
		codes := make(map[int64]string, len(plos))
		for _, plo := range plos {
			codes[plo.ID] = plo.Code
			if plo.DepartmentID != course.DepartmentID {
				outside = append(outside, plo.ID)
			}
		}
		if len(outside) > 0 {
			return nil, apperrors.NewCustomError(apperrors.ErrPLOOutsideDepartment,
				"PLOs must belong to a program of the course's department").
				WithDetails(map[string]interface{}{"ploIds": outside})
		}
		for i := range mappings {
			mappings[i].PLOCode = codes[mappings[i].PLOID]
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.outcomeRepo.ReplaceCLOMappings(ctx, cloID, mappings)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "clo", cloID, map[string]interface{}{"ploIds": ploIDs})
	return mappings, nil
}

// OutcomeMatrix returns the course's CLOs each with its mapped PLOs
func (s *courseServiceImpl) OutcomeMatrix(ctx context.Context, courseID int64) (*dto.OutcomeMatrixResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	clos, err := s.outcomeRepo.ListCLOs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	mappings, err := s.outcomeRepo.ListMappingsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	byCLO := make(map[int64][]models.CLOPLOMapping, len(clos))
	for _, m := range mappings {
		byCLO[m.CLOID] = append(byCLO[m.CLOID], m)
	}

	rows := make([]dto.OutcomeMatrixRow, 0, len(clos))
	for _, clo := range clos {
		mapped := byCLO[clo.ID]
		if mapped == nil {
			mapped = []models.CLOPLOMapping{}
		}
		rows = append(rows, dto.OutcomeMatrixRow{CLO: clo, Mappings: mapped})
	}

	return &dto.OutcomeMatrixResponse{Course: course, Rows: rows}, nil
}
