package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// UserService manages accounts and their roles
type UserService interface {
	List(ctx context.Context, filter repositories.UserFilter) (*dto.PaginatedResponse, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error)
	UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error
	Delete(ctx context.Context, id int64) error
	AssignRoles(ctx context.Context, id int64, roleIDs []int64) (*models.User, error)
}

type userServiceImpl struct {
	userRepo  repositories.IUserRepository
	roleRepo  repositories.IRoleRepository
	tokenRepo repositories.ITokenRepository
	tx        db.Transactor
	mailer    *Mailer
	audit     AuditService
	logger    zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	roleRepo repositories.IRoleRepository,
	tokenRepo repositories.ITokenRepository,
	tx db.Transactor,
	mailer *Mailer,
	audit AuditService,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		tokenRepo: tokenRepo,
		tx:        tx,
		mailer:    mailer,
		audit:     audit,
		logger:    logger,
	}
}

// List returns a page of users
func (s *userServiceImpl) List(ctx context.Context, filter repositories.UserFilter) (*dto.PaginatedResponse, error) {
	if filter.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*filter.Role))
		filter.Role = &role
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	resp := helpers.NewPaginatedResponse(users, total, filter.Page, filter.Size)
	return &resp, nil
}

// GetByID returns a user with role names
func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Create creates an account, assigns roles and sends a welcome email
func (s *userServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	emailAddr := helpers.NormalizeEmail(req.Email)
	exists, err := s.userRepo.EmailExists(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
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
	roleIDs := uniqueIDs(req.RoleIDs)

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if len(roleIDs) == 0 {
			return nil
		}
		if err := s.checkRoles(ctx, roleIDs); err != nil {
			return err
		}
		return s.userRepo.SetRoles(ctx, user.ID, roleIDs)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error reloading user: %w", err)
	}

	s.audit.Record(ctx, ActionCreate, "user", created.ID, map[string]interface{}{"email": created.Email, "roles": created.Roles})
	s.mailer.Go("welcome", func(ctx context.Context, svc email.EmailService) error {
		return svc.SendWelcomeEmail(ctx, created.Email, created.FullName())
	})

	s.logger.Info().Int64("userID", created.ID).Msg("User created")
	return created, nil
}

// Update changes profile fields
func (s *userServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = helpers.NormalizeName(req.FirstName)
	user.LastName = helpers.NormalizeName(req.LastName)
	user.Phone = req.Phone

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "user", id, nil)
	return s.userRepo.GetByID(ctx, id)
}

// UpdateStatus changes account status; leaving ACTIVE revokes every refresh token
func (s *userServiceImpl) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	if id == auth.UserIDFromContext(ctx) && status != models.UserStatusActive {
		return apperrors.NewBadRequestError("You cannot deactivate your own account")
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		if status == models.UserStatusActive {
			return nil
		}
		return s.tokenRepo.RevokeAllUserTokens(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, ActionStatus, "user", id, map[string]string{"status": string(status)})
	return nil
}

// Delete removes an account. Callers cannot delete themselves.
func (s *userServiceImpl) Delete(ctx context.Context, id int64) error {
	if id == auth.UserIDFromContext(ctx) {
		return apperrors.ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "user", id, nil)
	return nil
}

// AssignRoles replaces the user's roles
func (s *userServiceImpl) AssignRoles(ctx context.Context, id int64, roleIDs []int64) (*models.User, error) {
	roleIDs = uniqueIDs(roleIDs)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.checkRoles(ctx, roleIDs); err != nil {
			return err
		}
		return s.userRepo.SetRoles(ctx, id, roleIDs)
	})
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionRoles, "user", id, map[string]interface{}{"roles": user.Roles})
	return user, nil
}

func (s *userServiceImpl) checkRoles(ctx context.Context, roleIDs []int64) error {
	n, err := s.roleRepo.CountExisting(ctx, roleIDs)
	if err != nil {
		return err
	}
	if n != len(roleIDs) {
		return apperrors.ErrRoleNotFound
	}
	return nil
}
