package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// MinIntakeYear is the earliest accepted batch intake year
const MinIntakeYear = 1950

// BatchService handles program intakes
type BatchService interface {
	List(ctx context.Context, filter repositories.BatchFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.Batch, error)
	Create(ctx context.Context, req *dto.BatchRequest) (*models.Batch, error)
	Update(ctx context.Context, id int64, req *dto.BatchRequest) (*models.Batch, error)
	UpdateStatus(ctx context.Context, id int64, status models.BatchStatus) (*models.Batch, error)
	Delete(ctx context.Context, id int64) error
}

type batchServiceImpl struct {
	batchRepo   repositories.IBatchRepository
	programRepo repositories.IProgramRepository
	audit       AuditService
	now         func() time.Time
}

// NewBatchService creates a new BatchService
func NewBatchService(batchRepo repositories.IBatchRepository, programRepo repositories.IProgramRepository, audit AuditService) BatchService {
	return &batchServiceImpl{batchRepo: batchRepo, programRepo: programRepo, audit: audit, now: time.Now}
}

func (s *batchServiceImpl) validateIntakeYear(year int) error {
	maxYear := s.now().Year() + 1
	if year < MinIntakeYear || year > maxYear {
		return apperrors.NewValidationError(fmt.Sprintf("intakeYear must be between %d and %d", MinIntakeYear, maxYear))
	}
	return nil
}

func (s *batchServiceImpl) List(ctx context.Context, filter repositories.BatchFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.batchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing batches: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *batchServiceImpl) GetByID(ctx context.Context, id int64) (*models.Batch, error) {
	return s.batchRepo.GetByID(ctx, id)
}

func (s *batchServiceImpl) Create(ctx context.Context, req *dto.BatchRequest) (*models.Batch, error) {
	if err := s.validateIntakeYear(req.IntakeYear); err != nil {
		return nil, err
	}
	if _, err := s.programRepo.GetByID(ctx, req.ProgramID); err != nil {
		return nil, err
	}

	batch := &models.Batch{
		ProgramID:  req.ProgramID,
		Name:       strings.TrimSpace(req.Name),
		IntakeYear: req.IntakeYear,
		Status:     models.BatchStatusActive,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "batch", batch.ID, map[string]interface{}{"programId": batch.ProgramID, "intakeYear": batch.IntakeYear})
	return s.batchRepo.GetByID(ctx, batch.ID)
}

func (s *batchServiceImpl) Update(ctx context.Context, id int64, req *dto.BatchRequest) (*models.Batch, error) {
	if err := s.validateIntakeYear(req.IntakeYear); err != nil {
		return nil, err
	}

	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch.ProgramID != req.ProgramID {
		if _, err := s.programRepo.GetByID(ctx, req.ProgramID); err != nil {
			return nil, err
		}
	}

	batch.ProgramID = req.ProgramID
	batch.Name = strings.TrimSpace(req.Name)
	batch.IntakeYear = req.IntakeYear

	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "batch", id, nil)
	return s.batchRepo.GetByID(ctx, id)
}

func (s *batchServiceImpl) UpdateStatus(ctx context.Context, id int64, status models.BatchStatus) (*models.Batch, error) {
	if err := s.batchRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionStatus, "batch", id, map[string]string{"status": string(status)})
	return s.batchRepo.GetByID(ctx, id)
}

func (s *batchServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.batchRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, ActionDelete, "batch", id, nil)
	return nil
}
