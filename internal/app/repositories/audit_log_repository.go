package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// AuditLogFilter narrows audit log listings
type AuditLogFilter struct {
	ActorID *int64
	Entity  *string
	Action  *string
	From    *time.Time
	To      *time.Time
	Page    int
	Size    int
}

// IAuditLogRepository defines audit log persistence
type IAuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]*models.AuditLog, int64, error)
}

// AuditLogRepository stores audit entries
type AuditLogRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(h db.Handle) *AuditLogRepository {
	return &AuditLogRepository{db: h, sb: psql}
}

// Create inserts an audit entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	details := entry.Details
	if len(details) == 0 {
		details = []byte("{}")
	}

	sql, args, err := r.sb.Insert("audit_logs").
		Columns("actor_id", "action", "entity", "entity_id", "details", "ip_address").
		Values(entry.ActorID, entry.Action, entry.Entity, entry.EntityID, string(details), entry.IPAddress).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create audit log query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("error creating audit log: %w", err)
	}
	return nil
}

// List retrieves a page of audit entries, newest first
func (r *AuditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]*models.AuditLog, int64, error) {
	q := r.sb.Select("id", "actor_id", "action", "entity", "entity_id", "details", "ip_address", "created_at").
		From("audit_logs")
	if filter.ActorID != nil {
		q = q.Where(squirrel.Eq{"actor_id": *filter.ActorID})
	}
	if filter.Entity != nil {
		q = q.Where(squirrel.Eq{"entity": *filter.Entity})
	}
	if filter.Action != nil {
		q = q.Where(squirrel.Eq{"action": *filter.Action})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}

	total, err := count(ctx, r.db.Conn(ctx), q, "audit logs")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("created_at DESC", "id DESC"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list audit logs query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing audit logs: %w", err)
	}
	defer rows.Close()

	items := []*models.AuditLog{}
	for rows.Next() {
		e := &models.AuditLog{}
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &details, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning audit log: %w", err)
		}
		e.Details = details
		items = append(items, e)
	}
	return items, total, rows.Err()
}
