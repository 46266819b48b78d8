package services

import (
	"context"
	"strings"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

// RoleService manages roles and their permissions
type RoleService interface {
	List(ctx context.Context) ([]*models.Role, error)
	Create(ctx context.Context, req *dto.CreateRoleRequest) (*models.Role, error)
	SetPermissions(ctx context.Context, id int64, permissionIDs []int64) (*models.Role, error)
	Delete(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]models.Permission, error)
}

type roleServiceImpl struct {
	roleRepo repositories.IRoleRepository
	tx       db.Transactor
	audit    AuditService
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo repositories.IRoleRepository, tx db.Transactor, audit AuditService) RoleService {
	return &roleServiceImpl{roleRepo: roleRepo, tx: tx, audit: audit}
}

func (s *roleServiceImpl) List(ctx context.Context) ([]*models.Role, error) {
	return s.roleRepo.List(ctx)
}

// Create creates a custom role with an initial permission set
func (s *roleServiceImpl) Create(ctx context.Context, req *dto.CreateRoleRequest) (*models.Role, error) {
	role := &models.Role{
		Name:        strings.ToUpper(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(req.Description),
	}
	permissionIDs := uniqueIDs(req.PermissionIDs)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.roleRepo.Create(ctx, role); err != nil {
			return err
		}
		return s.roleRepo.SetPermissions(ctx, role.ID, permissionIDs)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionCreate, "role", role.ID, map[string]interface{}{"name": role.Name, "permissions": permissionIDs})
	return s.roleRepo.GetByID(ctx, role.ID)
}

// SetPermissions replaces a role's permissions. ADMIN keeps every permission.
func (s *roleServiceImpl) SetPermissions(ctx context.Context, id int64, permissionIDs []int64) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.Name == models.RoleAdmin {
		return nil, apperrors.NewCustomError(apperrors.ErrSystemRole, "ADMIN permissions cannot be changed")
	}

	permissionIDs = uniqueIDs(permissionIDs)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.roleRepo.SetPermissions(ctx, id, permissionIDs)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ActionUpdate, "role", id, map[string]interface{}{"permissions": permissionIDs})
	return s.roleRepo.GetByID(ctx, id)
}

// Delete removes a custom role; system roles are protected
func (s *roleServiceImpl) Delete(ctx context.Context, id int64) error {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return apperrors.ErrSystemRole
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, ActionDelete, "role", id, map[string]string{"name": role.Name})
	return nil
}

func (s *roleServiceImpl) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.roleRepo.ListPermissions(ctx)
}
