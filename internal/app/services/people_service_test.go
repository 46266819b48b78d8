package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/events"
)

type fakeUserRepo struct {
	repositories.IUserRepository
	users     map[int64]*models.User
	roleNames map[int64][]string
	byRole    map[string][]int64
	statuses  map[int64]models.UserStatus
	passwords map[int64]string
	deleted   []int64
	nextID    int64
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{
		users:     map[int64]*models.User{},
		roleNames: map[int64][]string{},
		byRole:    map[string][]int64{},
		statuses:  map[int64]models.UserStatus{},
		passwords: map[int64]string{},
		nextID:    1000,
	}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	f.passwords[id] = hash
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64) error { return nil }

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserRepo) AddRoleByName(ctx context.Context, userID int64, role string) error {
	f.roleNames[userID] = append(f.roleNames[userID], role)
	return nil
}

func (f *fakeUserRepo) SetRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		names = append(names, roleNamesByID[id])
	}
	f.users[userID].Roles = names
	return nil
}

func (f *fakeUserRepo) ListIDsByRole(ctx context.Context, role string) ([]int64, error) {
	return f.byRole[role], nil
}

func (f *fakeUserRepo) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	return []string{"students:read"}, nil
}

type fakeTokenRepo struct {
	repositories.ITokenRepository
	revokedAll []int64
	created    []string
	revoked    []string
	stored     map[string]*models.RefreshToken
}

func (f *fakeTokenRepo) GetToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.stored[token]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	return t, nil
}

func (f *fakeTokenRepo) RevokeToken(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	if t, ok := f.stored[token]; ok {
		t.IsRevoked = true
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	f.revokedAll = append(f.revokedAll, userID)
	return nil
}

func (f *fakeTokenRepo) CreateToken(ctx context.Context, token string, userID int64, expiry time.Time) error {
	f.created = append(f.created, token)
	if f.stored == nil {
		f.stored = map[string]*models.RefreshToken{}
	}
	f.stored[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

type studentFixture struct {
	svc       StudentService
	users     *fakeUserRepo
	students  *fakeStudentRepo
	mail      *fakeEmail
	mailer    *Mailer
	publisher *fakePublisher
	tx        *fakeTx
}

func newStudentFixture() *studentFixture {
	f := &studentFixture{
		users:     newFakeUserRepo(&models.User{ID: 131, Email: "amna@uni.edu"}),
		students:  newFakeStudentRepo(&models.Student{ID: 31, UserID: 131, RegistrationNo: "2024-CS-001"}),
		mail:      &fakeEmail{},
		publisher: &fakePublisher{},
		tx:        &fakeTx{},
	}
	f.mailer = newTestMailer(f.mail)

	programs := &fakeProgramRepo{programs: map[int64]*models.Program{
		1: {ID: 1, DepartmentID: 1},
		2: {ID: 2, DepartmentID: 2},
	}}
	batches := &fakeBatchRepo{batches: map[int64]*models.Batch{
		10: {ID: 10, ProgramID: 1},
		20: {ID: 20, ProgramID: 2},
	}}
	f.svc = NewStudentService(f.students, f.users, programs, batches, newFakeSectionRepo(), f.tx,
		f.mailer, f.publisher, &fakeAudit{}, zerolog.Nop())
	return f
}

func studentRequest(dept, program, batch int64) *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		Email:          " Sara@Uni.edu ",
		Password:       "Passw0rd!",
		FirstName:      "sara",
		LastName:       "malik",
		RegistrationNo: "2025-cs-010",
		DepartmentID:   dept,
		ProgramID:      program,
		BatchID:        batch,
		EnrollmentDate: mustDate("2025-09-01"),
	}
}

func TestCreateStudent(t *testing.T) {
	f := newStudentFixture()

	student, err := f.svc.Create(adminCtx(), studentRequest(1, 1, 10))
	require.NoError(t, err)
	f.mailer.Wait()

	require.NotNil(t, f.students.created)
	assert.Equal(t, "2025-CS-010", student.RegistrationNo)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, []string{models.RoleStudent}, f.users.roleNames[student.UserID])
	assert.Equal(t, "sara@uni.edu", f.users.users[student.UserID].Email)
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{events.StudentCreated}, f.publisher.types())
	assert.Equal(t, []string{"welcome"}, f.mail.kinds())
}

func TestCreateStudentPlacementMismatch(t *testing.T) {
	tests := []struct {
		name                   string
		dept, program, batchID int64
	}{
		{name: "program outside department", dept: 2, program: 1, batchID: 10},
		{name: "batch outside program", dept: 1, program: 1, batchID: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStudentFixture()
			_, err := f.svc.Create(adminCtx(), studentRequest(tt.dept, tt.program, tt.batchID))
			require.ErrorIs(t, err, apperrors.ErrStudentProgramMismatch)
			assert.Nil(t, f.students.created)
			assert.Zero(t, f.tx.calls)
		})
	}
}

func TestCreateStudentDuplicateEmail(t *testing.T) {
	f := newStudentFixture()
	req := studentRequest(1, 1, 10)
	req.Email = "AMNA@uni.edu"

	_, err := f.svc.Create(adminCtx(), req)
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestStudentReadsOnlyOwnRecord(t *testing.T) {
	f := newStudentFixture()

	_, err := f.svc.GetByID(studentCtx(131), 31)
	require.NoError(t, err)

	_, err = f.svc.GetByID(studentCtx(999), 31)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.svc.GetByID(facultyCtx(104), 31)
	require.NoError(t, err)
}

func TestFacultySectionsAndDelete(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: 104})
	faculty := &fakeFacultyRepo{members: map[int64]*models.FacultyMember{4: {ID: 4, UserID: 104}}}
	sections := newFakeSectionRepo(
		&models.Section{ID: 1, FacultyID: int64Ptr(4)},
		&models.Section{ID: 2, FacultyID: int64Ptr(5)},
		&models.Section{ID: 3},
	)
	svc := NewFacultyService(faculty, users, nil, sections, &fakeTx{}, nil, &fakeAudit{}, zerolog.Nop())

	load, err := svc.Sections(adminCtx(), 4, nil)
	require.NoError(t, err)
	require.Len(t, load, 1)
	assert.Equal(t, int64(1), load[0].ID)

	require.ErrorIs(t, svc.Delete(facultyCtx(104), 4), apperrors.ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(adminCtx(), 4))
	assert.Equal(t, []int64{104}, users.deleted)
}

func TestUserStatusRevokesTokens(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: 50})
	tokens := &fakeTokenRepo{}
	svc := NewUserService(users, nil, tokens, &fakeTx{}, nil, &fakeAudit{}, zerolog.Nop())

	require.NoError(t, svc.UpdateStatus(adminCtx(), 50, models.UserStatusSuspended))
	assert.Equal(t, []int64{50}, tokens.revokedAll)

	require.NoError(t, svc.UpdateStatus(adminCtx(), 50, models.UserStatusActive))
	assert.Len(t, tokens.revokedAll, 1)

	require.ErrorIs(t, svc.UpdateStatus(adminCtx(), 1, models.UserStatusInactive), apperrors.ErrBadRequest)
	require.ErrorIs(t, svc.Delete(adminCtx(), 1), apperrors.ErrCannotDeleteSelf)
}
