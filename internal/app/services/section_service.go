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

// SectionService manages course offerings and enrollment
type SectionService interface {
	List(ctx context.Context, filter repositories.SectionFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.Section, error)
	Create(ctx context.Context, req *dto.SectionRequest) (*models.Section, error)
	Update(ctx context.Context, id int64, req *dto.SectionRequest) (*models.Section, error)
	Delete(ctx context.Context, id int64) error

	Enroll(ctx context.Context, id int64, studentIDs []int64) (*dto.EnrollmentResult, error)
	EnrollBatch(ctx context.Context, id int64) (*dto.EnrollmentResult, error)
	Unenroll(ctx context.Context, id, studentID int64) error
	Roster(ctx context.Context, id int64) ([]models.SectionStudent, error)
}

type sectionServiceImpl struct {
	sectionRepo repositories.ISectionRepository
	courseRepo  repositories.ICourseRepository
	sessionRepo repositories.ISessionRepository
	facultyRepo repositories.IFacultyRepository
	batchRepo   repositories.IBatchRepository
	studentRepo repositories.IStudentRepository
	tx          db.Transactor
	audit       AuditService
}

// NewSectionService creates a new SectionService
func NewSectionService(
	sectionRepo repositories.ISectionRepository,
	courseRepo repositories.ICourseRepository,
	sessionRepo repositories.ISessionRepository,
	facultyRepo repositories.IFacultyRepository,
	batchRepo repositories.IBatchRepository,
	studentRepo repositories.IStudentRepository,
	tx db.Transactor,
	audit AuditService,
) SectionService {
	return &sectionServiceImpl{
		sectionRepo: sectionRepo,
		courseRepo:  courseRepo,
		sessionRepo: sessionRepo,
		facultyRepo: facultyRepo,
		batchRepo:   batchRepo,
		studentRepo: studentRepo,
		tx:          tx,
		audit:       audit,
	}
}

// checkReferences makes sure every referenced record exists so the caller gets a 404 instead of a generic FK error
func (s *sectionServiceImpl) checkReferences(ctx context.Context, req *dto.SectionRequest) error {
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return err
	}
	if _, err := s.sessionRepo.GetByID(ctx, req.SessionID); err != nil {
		return err
	}
	if req.BatchID != nil {
		if _, err := s.batchRepo.GetByID(ctx, *req.BatchID); err != nil {
			return err
		}
	}
	if req.FacultyID != nil {
		if _, err := s.facultyRepo.GetByID(ctx, *req.FacultyID); err != nil {
			return err
		}
	}
	return nil
}

func (s *sectionServiceImpl) List(ctx context.Context, filter repositories.SectionFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.sectionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing sections: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *sectionServiceImpl) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	return s.sectionRepo.GetByID(ctx, id)
}

func (s *sectionServiceImpl) Create(ctx context.Context, req *dto.SectionRequest) (*models.Section, error) {
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	section := &models.Section{
		CourseID:  req.CourseID,
		SessionID: req.SessionID,
		BatchID:   req.BatchID,
		FacultyID: req.FacultyID,
		Name:      strings.ToUpper(strings.TrimSpace(req.Name)),
		Capacity:  req.Capacity,
	}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "section", section.ID, map[string]interface{}{
		"courseId":  section.CourseID,
		"sessionId": section.SessionID,
		"name":      section.Name,
	})
	return s.sectionRepo.GetByID(ctx, section.ID)
}

// Update rewrites a section. Capacity may not drop below the current enrollment.
func (s *sectionServiceImpl) Update(ctx context.Context, id int64, req *dto.SectionRequest) (*models.Section, error) {
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.sectionRepo.LockCapacity(ctx, id); err != nil {
			return err
		}
		enrolled, err := s.sectionRepo.CountEnrolled(ctx, id)
		if err != nil {
			return err
		}
		if int64(req.Capacity) < enrolled {
			return apperrors.NewCustomError(apperrors.ErrSectionFull, "Capacity cannot be lower than the current enrollment").
				WithDetails(map[string]interface{}{"enrolled": enrolled, "capacity": req.Capacity})
		}

		return s.sectionRepo.Update(ctx, &models.Section{
			ID:        id,
			CourseID:  req.CourseID,
			SessionID: req.SessionID,
			BatchID:   req.BatchID,
			FacultyID: req.FacultyID,
			Name:      strings.ToUpper(strings.TrimSpace(req.Name)),
			Capacity:  req.Capacity,
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "section", id, nil)
	return s.sectionRepo.GetByID(ctx, id)
}

func (s *sectionServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.sectionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionDelete, "section", id, nil)
	return nil
}

// Enroll adds students to the section. Already enrolled students are skipped and the whole
// request is refused when the new enrollments would exceed capacity.
func (s *sectionServiceImpl) Enroll(ctx context.Context, id int64, studentIDs []int64) (*dto.EnrollmentResult, error) {
	ids := uniqueIDs(studentIDs)
	result := &dto.EnrollmentResult{Requested: len(ids)}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		capacity, err := s.sectionRepo.LockCapacity(ctx, id)
		if err != nil {
			return err
		}
		enrolled, err := s.sectionRepo.CountEnrolled(ctx, id)
		if err != nil {
			return err
		}
		already, err := s.sectionRepo.EnrolledAmong(ctx, id, ids)
		if err != nil {
			return err
		}

		incoming := int64(len(ids) - len(already))
		if enrolled+incoming > int64(capacity) {
			return apperrors.NewCustomError(apperrors.ErrSectionFull, "Section capacity exceeded").
				WithDetails(map[string]interface{}{
					"capacity":  capacity,
					"enrolled":  enrolled,
					"requested": incoming,
				})
		}

		added, err := s.sectionRepo.Enroll(ctx, id, ids)
		if err != nil {
			return err
		}
		result.Enrolled = added
		result.Total = enrolled + added
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Enrolled > 0 {
		s.audit.Record(ctx, ActionEnroll, "section", id, map[string]interface{}{"studentIds": ids, "added": result.Enrolled})
	}
	return result, nil
}

// EnrollBatch enrolls every active student of the section's batch
func (s *sectionServiceImpl) EnrollBatch(ctx context.Context, id int64) (*dto.EnrollmentResult, error) {
	section, err := s.sectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if section.BatchID == nil {
		return nil, apperrors.NewBadRequestError("Section is not linked to a batch")
	}

	ids, err := s.studentRepo.ListActiveIDsByBatch(ctx, *section.BatchID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &dto.EnrollmentResult{Total: int64(section.Enrolled)}, nil
	}
	return s.Enroll(ctx, id, ids)
}

func (s *sectionServiceImpl) Unenroll(ctx context.Context, id, studentID int64) error {
	if err := s.sectionRepo.Unenroll(ctx, id, studentID); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionUnenroll, "section", id, map[string]int64{"studentId": studentID})
	return nil
}

// Roster returns the enrolled students ordered by registration number. Students get only their own entry.
func (s *sectionServiceImpl) Roster(ctx context.Context, id int64) ([]models.SectionStudent, error) {
	if _, err := s.sectionRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	roster, err := s.sectionRepo.ListStudents(ctx, id)
	if err != nil {
		return nil, err
	}
	return ownRosterLine(ctx, s.studentRepo, roster)
}
