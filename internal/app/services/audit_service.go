package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// Audit actions
const (
	ActionCreate     = "CREATE"
	ActionUpdate     = "UPDATE"
	ActionDelete     = "DELETE"
	ActionStatus     = "STATUS"
	ActionRoles      = "ROLES"
	ActionActivate   = "ACTIVATE"
	ActionEnroll     = "ENROLL"
	ActionUnenroll   = "UNENROLL"
	ActionAttendance = "ATTENDANCE"
	ActionPassword   = "PASSWORD"
	ActionNotify     = "NOTIFY"
)

// AuditService records and lists audit entries
type AuditService interface {
	Record(ctx context.Context, action, entity string, entityID int64, details interface{})
	List(ctx context.Context, filter repositories.AuditLogFilter) (*dto.PaginatedResponse, error)
}

type auditServiceImpl struct {
	repo   repositories.IAuditLogRepository
	logger zerolog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo repositories.IAuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditServiceImpl{repo: repo, logger: logger}
}

// Record stores an entry for the caller in ctx. It never fails the request; call it after the
// surrounding transaction has committed.
func (s *auditServiceImpl) Record(ctx context.Context, action, entity string, entityID int64, details interface{}) {
	entry := &models.AuditLog{
		Action:    action,
		Entity:    entity,
		IPAddress: auth.ClientIPFromContext(ctx),
	}
	if actor := auth.UserIDFromContext(ctx); actor != 0 {
		entry.ActorID = &actor
	}
	if entityID != 0 {
		entry.EntityID = &entityID
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn().Err(err).Str("entity", entity).Msg("Failed to encode audit details")
		} else {
			entry.Details = raw
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).
			Str("action", action).
			Str("entity", entity).
			Int64("entityID", entityID).
			Msg("Failed to record audit log")
	}
}

// List returns a page of audit entries
func (s *auditServiceImpl) List(ctx context.Context, filter repositories.AuditLogFilter) (*dto.PaginatedResponse, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing audit logs: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}
