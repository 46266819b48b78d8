package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

type fakeProgramRepo struct {
	repositories.IProgramRepository
	programs map[int64]*models.Program
}

func (f *fakeProgramRepo) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	p, ok := f.programs[id]
	if !ok {
		return nil, apperrors.ErrProgramNotFound
	}
	return p, nil
}

type fakeBatchRepo struct {
	repositories.IBatchRepository
	batches map[int64]*models.Batch
	created *models.Batch
}

func (f *fakeBatchRepo) GetByID(ctx context.Context, id int64) (*models.Batch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, apperrors.ErrBatchNotFound
	}
	return b, nil
}

func (f *fakeBatchRepo) Create(ctx context.Context, b *models.Batch) error {
	b.ID = 60
	f.batches[b.ID] = b
	f.created = b
	return nil
}

type fakeCourseRepo struct {
	repositories.ICourseRepository
	courses map[int64]*models.Course
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

type fakeOutcomeRepo struct {
	repositories.IOutcomeRepository
	clos     map[int64]*models.CLO
	plos     map[int64]*models.PLO
	mappings []models.CLOPLOMapping
	replaced bool
}

func (f *fakeOutcomeRepo) GetCLO(ctx context.Context, id int64) (*models.CLO, error) {
	c, ok := f.clos[id]
	if !ok {
		return nil, apperrors.ErrCLONotFound
	}
	return c, nil
}

func (f *fakeOutcomeRepo) GetPLOsByIDs(ctx context.Context, ids []int64) ([]*models.PLO, error) {
	var out []*models.PLO
	for _, id := range ids {
		if p, ok := f.plos[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeOutcomeRepo) ReplaceCLOMappings(ctx context.Context, cloID int64, mappings []models.CLOPLOMapping) error {
	f.replaced = true
	f.mappings = mappings
	return nil
}

func (f *fakeOutcomeRepo) ListCLOs(ctx context.Context, courseID int64) ([]*models.CLO, error) {
	var out []*models.CLO
	for _, c := range f.clos {
		if c.CourseID == courseID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeOutcomeRepo) ListMappingsByCourse(ctx context.Context, courseID int64) ([]models.CLOPLOMapping, error) {
	return f.mappings, nil
}

func TestBatchIntakeYearBounds(t *testing.T) {
	programs := &fakeProgramRepo{programs: map[int64]*models.Program{1: {ID: 1, DepartmentID: 1}}}
	batches := &fakeBatchRepo{batches: map[int64]*models.Batch{}}
	svc := NewBatchService(batches, programs, &fakeAudit{}).(*batchServiceImpl)
	svc.now = fixedClock

	for _, year := range []int{1949, 2027} {
		_, err := svc.Create(adminCtx(), &dto.BatchRequest{ProgramID: 1, Name: "X", IntakeYear: year})
		require.ErrorIs(t, err, apperrors.ErrValidationFailed, "year %d", year)
	}

	batch, err := svc.Create(adminCtx(), &dto.BatchRequest{ProgramID: 1, Name: " BSCS-2026 ", IntakeYear: 2026})
	require.NoError(t, err)
	assert.Equal(t, "BSCS-2026", batch.Name)
	assert.Equal(t, models.BatchStatusActive, batch.Status)
}

func TestBatchCreateUnknownProgram(t *testing.T) {
	svc := NewBatchService(&fakeBatchRepo{batches: map[int64]*models.Batch{}}, &fakeProgramRepo{}, &fakeAudit{})

	_, err := svc.Create(adminCtx(), &dto.BatchRequest{ProgramID: 8, Name: "X", IntakeYear: 2020})
	require.ErrorIs(t, err, apperrors.ErrProgramNotFound)
}

func newCourseFixture() (CourseService, *fakeOutcomeRepo, *fakeTx) {
	courses := &fakeCourseRepo{courses: map[int64]*models.Course{3: {ID: 3, DepartmentID: 1, Code: "CS-101"}}}
	outcomes := &fakeOutcomeRepo{
		clos: map[int64]*models.CLO{7: {ID: 7, CourseID: 3, Code: "CLO1"}},
		plos: map[int64]*models.PLO{
			11: {ID: 11, DepartmentID: 1, Code: "PLO1"},
			12: {ID: 12, DepartmentID: 1, Code: "PLO2"},
			21: {ID: 21, DepartmentID: 2, Code: "PLO1"},
		},
	}
	tx := &fakeTx{}
	return NewCourseService(courses, nil, outcomes, tx, &fakeAudit{}), outcomes, tx
}

func TestMapCLOToPLOs(t *testing.T) {
	svc, outcomes, tx := newCourseFixture()

	mapped, err := svc.MapCLOToPLOs(adminCtx(), 7, []dto.CLOMappingItem{
		{PLOID: 11, Weight: "HIGH"},
		{PLOID: 12, Weight: "LOW"},
	})
	require.NoError(t, err)

	require.Len(t, mapped, 2)
	assert.Equal(t, "PLO1", mapped[0].PLOCode)
	assert.Equal(t, models.WeightHigh, mapped[0].Weight)
	assert.True(t, outcomes.replaced)
	assert.Equal(t, 1, tx.calls)
}

func TestMapCLOToPLOsRejections(t *testing.T) {
	t.Run("outside department", func(t *testing.T) {
		svc, outcomes, _ := newCourseFixture()
		_, err := svc.MapCLOToPLOs(adminCtx(), 7, []dto.CLOMappingItem{{PLOID: 11, Weight: "LOW"}, {PLOID: 21, Weight: "LOW"}})
		require.ErrorIs(t, err, apperrors.ErrPLOOutsideDepartment)
		assert.Equal(t, []int64{21}, apperrors.DetailsOf(err)["ploIds"])
		assert.False(t, outcomes.replaced)
	})

	t.Run("unknown plo", func(t *testing.T) {
		svc, _, _ := newCourseFixture()
		_, err := svc.MapCLOToPLOs(adminCtx(), 7, []dto.CLOMappingItem{{PLOID: 99, Weight: "LOW"}})
		require.ErrorIs(t, err, apperrors.ErrPLONotFound)
	})

	t.Run("duplicate plo", func(t *testing.T) {
		svc, _, _ := newCourseFixture()
		_, err := svc.MapCLOToPLOs(adminCtx(), 7, []dto.CLOMappingItem{{PLOID: 11, Weight: "LOW"}, {PLOID: 11, Weight: "HIGH"}})
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestMapCLOToPLOsEmptyClears(t *testing.T) {
	svc, outcomes, _ := newCourseFixture()
	outcomes.mappings = []models.CLOPLOMapping{{CLOID: 7, PLOID: 11}}

	mapped, err := svc.MapCLOToPLOs(adminCtx(), 7, nil)
	require.NoError(t, err)
	assert.Empty(t, mapped)
	assert.Empty(t, outcomes.mappings)
}

func TestOutcomeMatrixGroupsByCLO(t *testing.T) {
	svc, outcomes, _ := newCourseFixture()
	outcomes.clos[8] = &models.CLO{ID: 8, CourseID: 3, Code: "CLO2"}
	outcomes.mappings = []models.CLOPLOMapping{{CLOID: 7, PLOID: 11}, {CLOID: 7, PLOID: 12}}

	matrix, err := svc.OutcomeMatrix(adminCtx(), 3)
	require.NoError(t, err)
	require.Len(t, matrix.Rows, 2)

	counts := map[int64]int{}
	for _, row := range matrix.Rows {
		counts[row.CLO.ID] = len(row.Mappings)
		assert.NotNil(t, row.Mappings)
	}
	assert.Equal(t, map[int64]int{7: 2, 8: 0}, counts)
}

func TestSessionRules(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: map[int64]*models.AcademicSession{
		1: {ID: 1, IsActive: true},
		2: {ID: 2},
	}}
	svc := NewSessionService(sessions, &fakeTx{}, &fakeAudit{})

	_, err := svc.Create(adminCtx(), &dto.SessionRequest{
		Name: "Fall 2025", Term: "FALL", Year: 2025,
		StartDate: mustDate("2025-12-31"), EndDate: mustDate("2025-09-01"),
	})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Nil(t, sessions.created)

	require.ErrorIs(t, svc.Delete(adminCtx(), 1), apperrors.ErrSessionActive)
	require.NoError(t, svc.Delete(adminCtx(), 2))
	assert.Equal(t, []int64{2}, sessions.deleted)
}

func TestSessionActivateLeavesSingleActive(t *testing.T) {
	sessions := &fakeSessionRepo{sessions: map[int64]*models.AcademicSession{
		1: {ID: 1, IsActive: true},
		2: {ID: 2},
		3: {ID: 3},
	}}
	tx := &fakeTx{}
	svc := NewSessionService(sessions, tx, &fakeAudit{})

	activated, err := svc.Activate(adminCtx(), 3)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.Equal(t, 1, tx.calls)

	var active []int64
	for id, s := range sessions.sessions {
		if s.IsActive {
			active = append(active, id)
		}
	}
	assert.Equal(t, []int64{3}, active)

	_, err = svc.Activate(adminCtx(), 9)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.True(t, sessions.sessions[3].IsActive)
}

type fakeDepartmentRepo struct {
	repositories.IDepartmentRepository
	departments map[int64]*models.Department
	heads       map[int64]*int64
}

func (f *fakeDepartmentRepo) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return d, nil
}

func (f *fakeDepartmentRepo) SetHead(ctx context.Context, id int64, facultyID *int64) error {
	f.heads[id] = facultyID
	return nil
}

func TestDepartmentHeadMustBelongToDepartment(t *testing.T) {
	departments := &fakeDepartmentRepo{
		departments: map[int64]*models.Department{1: {ID: 1, Code: "CS"}, 2: {ID: 2, Code: "EE"}},
		heads:       map[int64]*int64{},
	}
	faculty := &fakeFacultyRepo{members: map[int64]*models.FacultyMember{
		4: {ID: 4, UserID: 104, DepartmentID: 1},
		5: {ID: 5, UserID: 105, DepartmentID: 2},
	}}
	audit := &fakeAudit{}
	svc := NewDepartmentService(departments, faculty, audit)

	_, err := svc.SetHead(adminCtx(), 1, int64Ptr(5))
	require.ErrorIs(t, err, apperrors.ErrFacultyNotInDepartment)
	assert.NotContains(t, departments.heads, int64(1))

	_, err = svc.SetHead(adminCtx(), 1, int64Ptr(99))
	require.ErrorIs(t, err, apperrors.ErrFacultyNotFound)

	_, err = svc.SetHead(adminCtx(), 1, int64Ptr(4))
	require.NoError(t, err)
	require.NotNil(t, departments.heads[1])
	assert.Equal(t, int64(4), *departments.heads[1])

	_, err = svc.SetHead(adminCtx(), 1, nil)
	require.NoError(t, err)
	assert.Nil(t, departments.heads[1])
	assert.Len(t, audit.entries, 2)
}
