package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
)

// IRoleRepository defines role and permission persistence
type IRoleRepository interface {
	List(ctx context.Context) ([]*models.Role, error)
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
	Delete(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	CountExisting(ctx context.Context, roleIDs []int64) (int, error)
}

// RoleRepository handles roles, permissions and their links
type RoleRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(h db.Handle) *RoleRepository {
	return &RoleRepository{db: h, sb: psql}
}

func (r *RoleRepository) selectRoles() squirrel.SelectBuilder {
	return r.sb.Select("id", "name", "description", "is_system", "created_at").From("roles")
}

// List returns all roles with their permissions
func (r *RoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	sql, args, err := r.selectRoles().OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list roles query: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing roles: %w", err)
	}

	roles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Role, error) {
		role := &models.Role{}
		return role, row.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning roles: %w", err)
	}

	byID := make(map[int64]*models.Role, len(roles))
	for _, role := range roles {
		role.Permissions = []models.Permission{}
		byID[role.ID] = role
	}

	linkRows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT rp.role_id, p.id, p.code, p.description
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		ORDER BY p.code`)
	if err != nil {
		return nil, fmt.Errorf("error loading role permissions: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var roleID int64
		var p models.Permission
		if err := linkRows.Scan(&roleID, &p.ID, &p.Code, &p.Description); err != nil {
			return nil, fmt.Errorf("error scanning role permission: %w", err)
		}
		if role, ok := byID[roleID]; ok {
			role.Permissions = append(role.Permissions, p)
		}
	}
	return roles, linkRows.Err()
}

// GetByID returns a role with its permissions
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByName returns a role by its unique name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

func (r *RoleRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Role, error) {
	sql, args, err := r.selectRoles().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get role query: %w", err)
	}

	role := &models.Role{}
	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("error getting role: %w", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT p.id, p.code, p.description
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.code`, role.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading role permissions: %w", err)
	}
	role.Permissions, err = pgx.CollectRows(rows, pgx.RowToStructByPos[models.Permission])
	if err != nil {
		return nil, fmt.Errorf("error scanning role permissions: %w", err)
	}
	return role, nil
}

// Create inserts a non-system role
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	sql, args, err := r.sb.Insert("roles").
		Columns("name", "description", "is_system").
		Values(role.Name, role.Description, false).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create role query: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&role.ID, &role.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_roles_name") {
			return apperrors.ErrRoleAlreadyExists
		}
		return fmt.Errorf("error creating role: %w", err)
	}
	return nil
}

// SetPermissions replaces a role's permission set. Run inside a transaction.
func (r *RoleRepository) SetPermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	conn := r.db.Conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("error clearing role permissions: %w", err)
	}
	if len(permissionIDs) == 0 {
		return nil
	}

	ins := r.sb.Insert("role_permissions").Columns("role_id", "permission_id").Suffix("ON CONFLICT DO NOTHING")
	for _, pid := range permissionIDs {
		ins = ins.Values(roleID, pid)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set permissions query: %w", err)
	}
	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.NewBadRequestError("one or more permissions do not exist")
		}
		return fmt.Errorf("error setting role permissions: %w", err)
	}
	return nil
}

// Delete removes a role that no user holds
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.NewConflictError("role is still assigned to users")
		}
		return fmt.Errorf("error deleting role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrRoleNotFound
	}
	return nil
}

// ListPermissions returns the permission catalog
func (r *RoleRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `SELECT id, code, description FROM permissions ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("error listing permissions: %w", err)
	}
	perms, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Permission])
	if err != nil {
		return nil, fmt.Errorf("error scanning permissions: %w", err)
	}
	return perms, nil
}

// CountExisting returns how many of roleIDs exist
func (r *RoleRepository) CountExisting(ctx context.Context, roleIDs []int64) (int, error) {
	var n int
	if err := r.db.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM roles WHERE id = ANY($1)`, roleIDs).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting roles: %w", err)
	}
	return n, nil
}
