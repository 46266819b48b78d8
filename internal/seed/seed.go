package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// MinPasswordLength applies to accounts created outside the API
const MinPasswordLength = 8

// Admin describes the bootstrap administrator account
type Admin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	AddRoleByName(ctx context.Context, userID int64, roleName string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type departmentStore interface {
	Create(ctx context.Context, department *models.Department) error
}

var defaultDepartments = []models.Department{
	{Name: "Computer Science", Code: "CS", Description: "Department of Computer Science"},
	{Name: "Electrical Engineering", Code: "EE", Description: "Department of Electrical Engineering"},
	{Name: "Business Administration", Code: "BBA", Description: "Department of Business Administration"},
}

// Run creates the administrator and the default departments
func Run(ctx context.Context, repos *repositories.Repositories, tx db.Transactor, admin Admin, lgr zerolog.Logger) error {
	if _, err := EnsureAdmin(ctx, tx, repos.User, admin, lgr); err != nil {
		return err
	}
	return CreateDefaultData(ctx, repos.Department, lgr)
}

// EnsureAdmin creates the administrator unless an account already holds the email.
// It reports whether a new account was created.
func EnsureAdmin(ctx context.Context, tx db.Transactor, users userStore, admin Admin, lgr zerolog.Logger) (bool, error) {
	emailAddr := helpers.NormalizeEmail(admin.Email)
	if emailAddr == "" {
		return false, fmt.Errorf("admin email is required")
	}

	existing, err := users.GetByEmail(ctx, emailAddr)
	if err == nil {
		if !existing.HasRole(models.RoleAdmin) {
			lgr.Warn().Str("email", emailAddr).Msg("Seed account exists without the ADMIN role")
		}
		lgr.Debug().Str("email", emailAddr).Msg("Admin account already present")
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, fmt.Errorf("error looking up admin: %w", err)
	}

	if len(admin.Password) < MinPasswordLength {
		return false, fmt.Errorf("admin password must be at least %d characters", MinPasswordLength)
	}
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("error hashing admin password: %w", err)
	}

	user := &models.User{
		Email:     emailAddr,
		Password:  hash,
		FirstName: helpers.NormalizeName(admin.FirstName),
		LastName:  helpers.NormalizeName(admin.LastName),
		Status:    models.UserStatusActive,
	}

	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return users.AddRoleByName(ctx, user.ID, models.RoleAdmin)
	})
	if err != nil {
		return false, fmt.Errorf("error creating admin: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Str("email", emailAddr).Msg("Admin account created")
	return true, nil
}

// ResetPassword replaces the password of the account holding email
func ResetPassword(ctx context.Context, users userStore, email, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	user, err := users.GetByEmail(ctx, helpers.NormalizeEmail(email))
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return users.UpdatePassword(ctx, user.ID, hash)
}

// CreateDefaultData creates the default departments if they don't exist
func CreateDefaultData(ctx context.Context, departments departmentStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default departments...")
	var finalErr error

	for _, d := range defaultDepartments {
		dept := d
		err := departments.Create(ctx, &dept)
		switch {
		case err == nil:
			lgr.Info().Str("code", dept.Code).Msg("Default department created")
		case errors.Is(err, apperrors.ErrDepartmentAlreadyExists):
		default:
			lgr.Error().Err(err).Str("code", dept.Code).Msg("Error creating default department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	return finalErr
}
