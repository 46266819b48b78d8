package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

type inlineTx struct{}

func (inlineTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx)
}

type memUsers struct {
	byEmail   map[string]*models.User
	passwords map[int64]string
	nextID    int64
	roleErr   error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}, passwords: map[int64]string{}}
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.nextID++
	user.ID = m.nextID
	m.byEmail[user.Email] = user
	m.passwords[user.ID] = user.Password
	return nil
}

func (m *memUsers) AddRoleByName(_ context.Context, userID int64, roleName string) error {
	if m.roleErr != nil {
		return m.roleErr
	}
	for _, u := range m.byEmail {
		if u.ID == userID {
			u.Roles = append(u.Roles, roleName)
		}
	}
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.passwords[id] = hash
	return nil
}

type memDepartments struct {
	codes map[string]bool
	fail  string
}

func (m *memDepartments) Create(_ context.Context, d *models.Department) error {
	if d.Code == m.fail {
		return errors.New("boom")
	}
	if m.codes[d.Code] {
		return apperrors.ErrDepartmentAlreadyExists
	}
	m.codes[d.Code] = true
	return nil
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	admin := Admin{Email: " Admin@Example.com ", Password: "Secret123!", FirstName: "system", LastName: "admin"}

	t.Run("creates once", func(t *testing.T) {
		users := newMemUsers()

		created, err := EnsureAdmin(ctx, inlineTx{}, users, admin, zerolog.Nop())
		require.NoError(t, err)
		assert.True(t, created)

		user := users.byEmail["admin@example.com"]
		require.NotNil(t, user)
		assert.Equal(t, []string{models.RoleAdmin}, user.Roles)
		assert.Equal(t, "System", user.FirstName)
		assert.True(t, auth.CheckPassword(user.Password, "Secret123!"))

		created, err = EnsureAdmin(ctx, inlineTx{}, users, admin, zerolog.Nop())
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("short password rejected", func(t *testing.T) {
		weak := admin
		weak.Password = "short"
		_, err := EnsureAdmin(ctx, inlineTx{}, newMemUsers(), weak, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("role assignment failure surfaces", func(t *testing.T) {
		users := newMemUsers()
		users.roleErr = apperrors.ErrRoleNotFound
		_, err := EnsureAdmin(ctx, inlineTx{}, users, admin, zerolog.Nop())
		assert.ErrorIs(t, err, apperrors.ErrRoleNotFound)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	_, err := EnsureAdmin(ctx, inlineTx{}, users, Admin{Email: "a@b.co", Password: "Original1!"}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, ResetPassword(ctx, users, "A@B.co", "Changed12!"))
	assert.True(t, auth.CheckPassword(users.passwords[1], "Changed12!"))

	assert.ErrorIs(t, ResetPassword(ctx, users, "missing@b.co", "Changed12!"), apperrors.ErrUserNotFound)
	assert.Error(t, ResetPassword(ctx, users, "a@b.co", "tiny"))
}

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()
	depts := &memDepartments{codes: map[string]bool{"CS": true}}

	require.NoError(t, CreateDefaultData(ctx, depts, zerolog.Nop()))
	assert.Len(t, depts.codes, len(defaultDepartments))

	depts = &memDepartments{codes: map[string]bool{}, fail: "EE"}
	err := CreateDefaultData(ctx, depts, zerolog.Nop())
	assert.Error(t, err)
	assert.True(t, depts.codes["CS"])
	assert.True(t, depts.codes["BBA"])
}
