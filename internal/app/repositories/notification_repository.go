package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// NotificationFilter narrows a user's inbox
type NotificationFilter struct {
	UserID     int64
	UnreadOnly bool
	Page       int
	Size       int
}

// INotificationRepository defines notification persistence
type INotificationRepository interface {
	CreateMany(ctx context.Context, notifications []*models.Notification) error
	ListByUser(ctx context.Context, filter NotificationFilter) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

// NotificationRepository handles user notifications
type NotificationRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(h db.Handle) *NotificationRepository {
	return &NotificationRepository{db: h, sb: psql}
}

// CreateMany inserts the notifications in one statement and fills their IDs
func (r *NotificationRepository) CreateMany(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	ins := r.sb.Insert("notifications").
		Columns("user_id", "title", "message", "type").
		Suffix("RETURNING id, created_at")
	for _, n := range notifications {
		if n.Type == "" {
			n.Type = models.NotificationInfo
		}
		ins = ins.Values(n.UserID, n.Title, n.Message, n.Type)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notifications query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error creating notifications: %w", err)
	}
	defer rows.Close()

	for i := 0; rows.Next() && i < len(notifications); i++ {
		if err := rows.Scan(&notifications[i].ID, &notifications[i].CreatedAt); err != nil {
			return fmt.Errorf("error scanning created notification: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating notifications: %w", err)
	}
	return nil
}

// ListByUser returns a page of the user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, filter NotificationFilter) ([]*models.Notification, int64, error) {
	q := r.sb.Select("id", "user_id", "title", "message", "type", "is_read", "read_at", "created_at").
		From("notifications").
		Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.UnreadOnly {
		q = q.Where(squirrel.Eq{"is_read": false})
	}

	total, err := count(ctx, r.db.Conn(ctx), q, "notifications")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("created_at DESC", "id DESC"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	items := []*models.Notification{}
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

// MarkRead marks one of the user's notifications read. Notifications of other users are reported as missing.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Conn(ctx).Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the user's unread count
func (r *NotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return n, nil
}
