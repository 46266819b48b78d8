package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/dberrors"
	"github.com/yigit/unicampus/internal/pkg/helpers"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// UserFilter narrows user listings
type UserFilter struct {
	Status *string
	Role   *string
	Search string
	Page   int
	Size   int
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	SetRoles(ctx context.Context, userID int64, roleIDs []int64) error
	AddRoleByName(ctx context.Context, userID int64, roleName string) error
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	HasPermission(ctx context.Context, userID int64, code string) (bool, error)
	ListIDsByRole(ctx context.Context, roleName string) ([]int64, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db db.Handle
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(h db.Handle) *UserRepository {
	return &UserRepository{db: h, sb: psql}
}

const userRolesColumn = `COALESCE((SELECT array_agg(r.name ORDER BY r.name) FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id), '{}') AS roles`

func (r *UserRepository) selectUsers() squirrel.SelectBuilder {
	return r.sb.Select("u.id", "u.email", "u.password", "u.first_name", "u.last_name", "u.phone",
		"u.status", "u.last_login_at", "u.created_at", "u.updated_at", userRolesColumn).
		From("users u")
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Phone,
		&u.Status, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.Roles)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user and fills ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	sql, args, err := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "phone", "status").
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.Phone, user.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.Conn(ctx).QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "uq_users_email") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user with role names
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.id": id})
}

// GetByEmail retrieves a user by lower-cased email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"u.email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.selectUsers().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.Conn(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db.Conn(ctx), r.sb.Select("1").From("users").Where(squirrel.Eq{"email": email}))
}

// List returns a page of users and the total count
func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error) {
	q := r.selectUsers()
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"u.status": *filter.Status})
	}
	if filter.Role != nil {
		q = q.Where("EXISTS (SELECT 1 FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id AND r.name = ?)", *filter.Role)
	}
	q = helpers.ApplySearch(q, filter.Search, "u.first_name", "u.last_name", "u.email")

	conn := r.db.Conn(ctx)
	total, err := count(ctx, conn, q, "users")
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := helpers.ApplyPage(q.OrderBy("u.id"), filter.Page, filter.Size).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update writes profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("phone", user.Phone).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// UpdateStatus changes account status
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	sql, args, err := r.sb.Update("users").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	sql, args, err := r.sb.Update("users").
		Set("password", passwordHash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// UpdateLastLogin stamps the last successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// Delete removes a user; linked student or faculty rows cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

func (r *UserRepository) execOne(ctx context.Context, sql string, args []interface{}) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.NewConflictError("user is still referenced by other records")
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetRoles replaces the user's role set. Run inside a transaction.
func (r *UserRepository) SetRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	conn := r.db.Conn(ctx)

	sql, args, err := r.sb.Delete("user_roles").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear roles query: %w", err)
	}
	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error clearing user roles: %w", err)
	}

	if len(roleIDs) == 0 {
		return nil
	}

	ins := r.sb.Insert("user_roles").Columns("user_id", "role_id").Suffix("ON CONFLICT DO NOTHING")
	for _, roleID := range roleIDs {
		ins = ins.Values(userID, roleID)
	}
	sql, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build assign roles query: %w", err)
	}
	if _, err := conn.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return apperrors.ErrRoleNotFound
		}
		return fmt.Errorf("error assigning user roles: %w", err)
	}
	return nil
}

// AddRoleByName grants a built-in role
func (r *UserRepository) AddRoleByName(ctx context.Context, userID int64, roleName string) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) SELECT $1, id FROM roles WHERE name = $2 ON CONFLICT DO NOTHING`,
		userID, roleName)
	if err != nil {
		return fmt.Errorf("error granting role %s: %w", roleName, err)
	}
	if tag.RowsAffected() == 0 {
		var found bool
		if err := r.db.Conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, roleName).Scan(&found); err != nil {
			return fmt.Errorf("error checking role %s: %w", roleName, err)
		}
		if !found {
			return apperrors.ErrRoleNotFound
		}
	}
	return nil
}

// GetPermissions returns the distinct permission codes granted through the user's roles
func (r *UserRepository) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT DISTINCT p.code
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.code`, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading permissions: %w", err)
	}

	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error scanning permissions: %w", err)
	}
	return codes, nil
}

// HasPermission checks a single permission code for an active user. ADMIN grants every code.
func (r *UserRepository) HasPermission(ctx context.Context, userID int64, code string) (bool, error) {
	var ok bool
	err := r.db.Conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM users u
			JOIN user_roles ur ON ur.user_id = u.id
			JOIN roles r ON r.id = ur.role_id
			LEFT JOIN role_permissions rp ON rp.role_id = r.id
			LEFT JOIN permissions p ON p.id = rp.permission_id
			WHERE u.id = $1 AND u.status = $2 AND (r.name = $3 OR p.code = $4)
		)`, userID, models.UserStatusActive, models.RoleAdmin, code).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("error checking permission: %w", err)
	}
	return ok, nil
}

// ListIDsByRole returns IDs of active users holding a role
func (r *UserRepository) ListIDsByRole(ctx context.Context, roleName string) ([]int64, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT u.id
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id
		WHERE r.name = $1 AND u.status = 'ACTIVE'
		ORDER BY u.id`, roleName)
	if err != nil {
		return nil, fmt.Errorf("error listing users by role: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("error scanning user ids: %w", err)
	}
	return ids, nil
}
