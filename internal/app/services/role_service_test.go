package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

var roleNamesByID = map[int64]string{
	1: models.RoleAdmin,
	2: models.RoleFaculty,
	3: models.RoleStudent,
	4: "REGISTRAR",
}

type fakeRoleRepo struct {
	repositories.IRoleRepository
	roles   map[int64]*models.Role
	deleted []int64
}

func newFakeRoleRepo() *fakeRoleRepo {
	f := &fakeRoleRepo{roles: map[int64]*models.Role{}}
	for id, name := range roleNamesByID {
		f.roles[id] = &models.Role{ID: id, Name: name, IsSystem: id <= 3}
	}
	return f
}

func (f *fakeRoleRepo) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, apperrors.ErrRoleNotFound
	}
	return r, nil
}

func (f *fakeRoleRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.roles, id)
	return nil
}

func (f *fakeRoleRepo) CountExisting(ctx context.Context, roleIDs []int64) (int, error) {
	n := 0
	for _, id := range roleIDs {
		if _, ok := f.roles[id]; ok {
			n++
		}
	}
	return n, nil
}

func TestRoleDeleteProtectsSystemRoles(t *testing.T) {
	roles := newFakeRoleRepo()
	audit := &fakeAudit{}
	svc := NewRoleService(roles, &fakeTx{}, audit)

	for _, id := range []int64{1, 2, 3} {
		require.ErrorIs(t, svc.Delete(adminCtx(), id), apperrors.ErrSystemRole)
	}
	assert.Empty(t, roles.deleted)
	assert.Empty(t, audit.entries)

	require.NoError(t, svc.Delete(adminCtx(), 4))
	assert.Equal(t, []int64{4}, roles.deleted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, ActionDelete, audit.entries[0].Action)

	require.ErrorIs(t, svc.Delete(adminCtx(), 4), apperrors.ErrRoleNotFound)
}

func TestAssignRolesReplacesRoleSet(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: 60, Roles: []string{models.RoleStudent}})
	tx := &fakeTx{}
	svc := NewUserService(users, newFakeRoleRepo(), &fakeTokenRepo{}, tx, nil, &fakeAudit{}, zerolog.Nop())

	user, err := svc.AssignRoles(adminCtx(), 60, []int64{2, 4, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleFaculty, "REGISTRAR"}, user.Roles)
	assert.Equal(t, 1, tx.calls)

	user, err = svc.AssignRoles(adminCtx(), 60, []int64{3})
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStudent}, user.Roles)

	_, err = svc.AssignRoles(adminCtx(), 60, []int64{3, 42})
	require.ErrorIs(t, err, apperrors.ErrRoleNotFound)
	assert.Equal(t, []string{models.RoleStudent}, users.users[60].Roles)

	_, err = svc.AssignRoles(adminCtx(), 61, []int64{3})
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
