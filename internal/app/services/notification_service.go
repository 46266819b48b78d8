package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/events"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// PushNotification is the websocket event type for a new notification
const PushNotification = "notification"

// NotificationService delivers in-app notifications
type NotificationService interface {
	Send(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationSentResponse, error)
	Notify(ctx context.Context, userIDs []int64, title, message string, kind models.NotificationType) (int, error)
	List(ctx context.Context, unreadOnly bool, page, size int) (*dto.PaginatedResponse, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)
}

type notificationServiceImpl struct {
	notificationRepo repositories.INotificationRepository
	userRepo         repositories.IUserRepository
	pusher           Pusher
	publisher        events.Publisher
	audit            AuditService
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService. A nil pusher skips live delivery.
func NewNotificationService(
	notificationRepo repositories.INotificationRepository,
	userRepo repositories.IUserRepository,
	pusher Pusher,
	publisher events.Publisher,
	audit AuditService,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		pusher:           pusher,
		publisher:        publisher,
		audit:            audit,
		logger:           logger,
	}
}

// Send addresses explicit users, or every active holder of a role
func (s *notificationServiceImpl) Send(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationSentResponse, error) {
	ids := uniqueIDs(req.UserIDs)
	role := strings.ToUpper(strings.TrimSpace(req.Role))

	switch {
	case len(ids) > 0 && role != "":
		return nil, apperrors.NewBadRequestError("Provide either userIds or role, not both")
	case role != "":
		byRole, err := s.userRepo.ListIDsByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		ids = byRole
	case len(ids) == 0:
		return nil, apperrors.NewBadRequestError("userIds or role is required")
	}

	kind := models.NotificationType(req.Type)
	if kind == "" {
		kind = models.NotificationInfo
	}

	sent, err := s.Notify(ctx, ids, strings.TrimSpace(req.Title), strings.TrimSpace(req.Message), kind)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionNotify, "notification", 0, map[string]interface{}{
		"title":      req.Title,
		"role":       role,
		"recipients": sent,
	})
	return &dto.NotificationSentResponse{Recipients: sent}, nil
}

// Notify stores one notification per user, pushes it to connected clients and publishes an event
func (s *notificationServiceImpl) Notify(ctx context.Context, userIDs []int64, title, message string, kind models.NotificationType) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	batch := make([]*models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		batch = append(batch, &models.Notification{UserID: id, Title: title, Message: message, Type: kind})
	}
	if err := s.notificationRepo.CreateMany(ctx, batch); err != nil {
		return 0, err
	}

	evs := make([]events.Event, 0, len(batch))
	for _, n := range batch {
		if s.pusher != nil {
			s.pusher.SendToUser(n.UserID, PushNotification, n)
		}
		evs = append(evs, events.New(events.NotificationCreated, n.UserID, n))
	}
	events.Emit(ctx, s.publisher, s.logger, evs...)

	s.logger.Debug().Int("recipients", len(batch)).Str("type", string(kind)).Msg("Notifications created")
	return len(batch), nil
}

// List returns the caller's notifications
func (s *notificationServiceImpl) List(ctx context.Context, unreadOnly bool, page, size int) (*dto.PaginatedResponse, error) {
	filter := repositories.NotificationFilter{
		UserID:     auth.UserIDFromContext(ctx),
		UnreadOnly: unreadOnly,
		Page:       page,
		Size:       size,
	}

	items, total, err := s.notificationRepo.ListByUser(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, page, size)
	return &resp, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id int64) error {
	return s.notificationRepo.MarkRead(ctx, id, auth.UserIDFromContext(ctx))
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, auth.UserIDFromContext(ctx))
}

func (s *notificationServiceImpl) UnreadCount(ctx context.Context) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, auth.UserIDFromContext(ctx))
}
