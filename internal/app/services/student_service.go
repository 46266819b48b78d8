package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/events"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// StudentService manages student records
type StudentService interface {
	List(ctx context.Context, filter repositories.StudentFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error)
	UpdateStatus(ctx context.Context, id int64, status models.StudentStatus) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
	Sections(ctx context.Context, id int64, sessionID *int64) ([]*models.Section, error)
}

type studentServiceImpl struct {
	studentRepo repositories.IStudentRepository
	userRepo    repositories.IUserRepository
	programRepo repositories.IProgramRepository
	batchRepo   repositories.IBatchRepository
	sectionRepo repositories.ISectionRepository
	tx          db.Transactor
	mailer      *Mailer
	publisher   events.Publisher
	audit       AuditService
	logger      zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	userRepo repositories.IUserRepository,
	programRepo repositories.IProgramRepository,
	batchRepo repositories.IBatchRepository,
	sectionRepo repositories.ISectionRepository,
	tx db.Transactor,
	mailer *Mailer,
	publisher events.Publisher,
	audit AuditService,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
		userRepo:    userRepo,
		programRepo: programRepo,
		batchRepo:   batchRepo,
		sectionRepo: sectionRepo,
		tx:          tx,
		mailer:      mailer,
		publisher:   publisher,
		audit:       audit,
		logger:      logger,
	}
}

// checkPlacement verifies batch -> program -> department
func (s *studentServiceImpl) checkPlacement(ctx context.Context, departmentID, programID, batchID int64) error {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return err
	}
	if program.DepartmentID != departmentID {
		return apperrors.NewCustomError(apperrors.ErrStudentProgramMismatch, "Program does not belong to the department")
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return err
	}
	if batch.ProgramID != programID {
		return apperrors.NewCustomError(apperrors.ErrStudentProgramMismatch, "Batch does not belong to the program")
	}
	return nil
}

// authorizeRead lets students see only their own record
func (s *studentServiceImpl) authorizeRead(ctx context.Context, student *models.Student) error {
	if studentOnly(ctx) && student.UserID != auth.UserIDFromContext(ctx) {
		return apperrors.NewForbiddenError("Students may only access their own record")
	}
	return nil
}

func (s *studentServiceImpl) List(ctx context.Context, filter repositories.StudentFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.studentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *studentServiceImpl) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Create opens a STUDENT account and its record in one transaction
func (s *studentServiceImpl) Create(ctx context.Context, req *dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.checkPlacement(ctx, req.DepartmentID, req.ProgramID, req.BatchID); err != nil {
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
	student := &models.Student{
		RegistrationNo: helpers.NormalizeCode(req.RegistrationNo),
		DepartmentID:   req.DepartmentID,
		ProgramID:      req.ProgramID,
		BatchID:        req.BatchID,
		EnrollmentDate: req.EnrollmentDate,
		Status:         models.StudentStatusActive,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := s.userRepo.AddRoleByName(ctx, user.ID, models.RoleStudent); err != nil {
			return err
		}
		student.UserID = user.ID
		return s.studentRepo.Create(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.studentRepo.GetByID(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error reloading student: %w", err)
	}

	s.audit.Record(ctx, ActionCreate, "student", created.ID, map[string]interface{}{
		"userId":         user.ID,
		"registrationNo": created.RegistrationNo,
	})
	events.Emit(ctx, s.publisher, s.logger, events.New(events.StudentCreated, created.ID, created))
	s.mailer.Go("welcome", func(ctx context.Context, svc email.EmailService) error {
		return svc.SendWelcomeEmail(ctx, user.Email, user.FullName())
	})

	s.logger.Info().Int64("studentID", created.ID).Str("registrationNo", created.RegistrationNo).Msg("Student created")
	return created, nil
}

func (s *studentServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlacement(ctx, req.DepartmentID, req.ProgramID, req.BatchID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, student.UserID)
	if err != nil {
		return nil, err
	}
	user.FirstName = helpers.NormalizeName(req.FirstName)
	user.LastName = helpers.NormalizeName(req.LastName)
	user.Phone = req.Phone

	student.DepartmentID = req.DepartmentID
	student.ProgramID = req.ProgramID
	student.BatchID = req.BatchID

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		return s.studentRepo.Update(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "student", id, nil)
	return s.studentRepo.GetByID(ctx, id)
}

func (s *studentServiceImpl) UpdateStatus(ctx context.Context, id int64, status models.StudentStatus) (*models.Student, error) {
	if err := s.studentRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionStatus, "student", id, map[string]string{"status": string(status)})
	return s.studentRepo.GetByID(ctx, id)
}

// Delete removes the student's account together with enrollments and attendance
func (s *studentServiceImpl) Delete(ctx context.Context, id int64) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, student.UserID); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "student", id, map[string]interface{}{"userId": student.UserID, "registrationNo": student.RegistrationNo})
	return nil
}

// Sections lists the sections the student is enrolled in
func (s *studentServiceImpl) Sections(ctx context.Context, id int64, sessionID *int64) ([]*models.Section, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.sectionRepo.ListAll(ctx, repositories.SectionFilter{StudentID: &id, SessionID: sessionID})
}
