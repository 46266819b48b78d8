package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
)

type fakeSectionRepo struct {
	repositories.ISectionRepository
	sections map[int64]*models.Section
	enrolled map[int64][]int64
	locks    int
}

func newFakeSectionRepo(sections ...*models.Section) *fakeSectionRepo {
	f := &fakeSectionRepo{sections: map[int64]*models.Section{}, enrolled: map[int64][]int64{}}
	for _, s := range sections {
		f.sections[s.ID] = s
	}
	return f
}

func (f *fakeSectionRepo) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, apperrors.ErrSectionNotFound
	}
	copied := *s
	copied.Enrolled = len(f.enrolled[id])
	return &copied, nil
}

func (f *fakeSectionRepo) LockCapacity(ctx context.Context, id int64) (int, error) {
	s, ok := f.sections[id]
	if !ok {
		return 0, apperrors.ErrSectionNotFound
	}
	f.locks++
	return s.Capacity, nil
}

func (f *fakeSectionRepo) CountEnrolled(ctx context.Context, id int64) (int64, error) {
	return int64(len(f.enrolled[id])), nil
}

func (f *fakeSectionRepo) EnrolledAmong(ctx context.Context, id int64, ids []int64) ([]int64, error) {
	var out []int64
	for _, want := range ids {
		for _, have := range f.enrolled[id] {
			if want == have {
				out = append(out, want)
			}
		}
	}
	return out, nil
}

func (f *fakeSectionRepo) Enroll(ctx context.Context, id int64, ids []int64) (int64, error) {
	already, _ := f.EnrolledAmong(ctx, id, ids)
	var added int64
	for _, sid := range missingIDs(ids, already) {
		f.enrolled[id] = append(f.enrolled[id], sid)
		added++
	}
	return added, nil
}

func (f *fakeSectionRepo) Unenroll(ctx context.Context, id, studentID int64) error {
	list := f.enrolled[id]
	for i, sid := range list {
		if sid == studentID {
			f.enrolled[id] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrStudentNotEnrolledSection
}

func (f *fakeSectionRepo) ListStudents(ctx context.Context, id int64) ([]models.SectionStudent, error) {
	out := make([]models.SectionStudent, 0, len(f.enrolled[id]))
	for _, sid := range f.enrolled[id] {
		out = append(out, models.SectionStudent{StudentID: sid, RegistrationNo: fmt.Sprintf("REG-%03d", sid)})
	}
	return out, nil
}

func (f *fakeSectionRepo) ListAll(ctx context.Context, filter repositories.SectionFilter) ([]*models.Section, error) {
	var out []*models.Section
	for _, s := range f.sections {
		if filter.FacultyID != nil && (s.FacultyID == nil || *s.FacultyID != *filter.FacultyID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type fakeStudentRepo struct {
	repositories.IStudentRepository
	students      map[int64]*models.Student
	activeByBatch map[int64][]int64
	created       *models.Student
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	f := &fakeStudentRepo{students: map[int64]*models.Student{}, activeByBatch: map[int64][]int64{}}
	for _, s := range students {
		f.students[s.ID] = s
	}
	return f
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeStudentRepo) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	for _, s := range f.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Student, error) {
	var out []*models.Student
	for _, id := range ids {
		if s, ok := f.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) ListActiveIDsByBatch(ctx context.Context, batchID int64) ([]int64, error) {
	return f.activeByBatch[batchID], nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, s *models.Student) error {
	s.ID = int64(len(f.students) + 100)
	f.students[s.ID] = s
	f.created = s
	return nil
}

func newSectionService(sections *fakeSectionRepo, students *fakeStudentRepo) (SectionService, *fakeTx, *fakeAudit) {
	tx, audit := &fakeTx{}, &fakeAudit{}
	return NewSectionService(sections, nil, nil, nil, nil, students, tx, audit), tx, audit
}

func TestSectionEnrollSkipsExistingAndCountsNew(t *testing.T) {
	sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 3})
	sections.enrolled[5] = []int64{10}
	svc, tx, audit := newSectionService(sections, newFakeStudentRepo())

	res, err := svc.Enroll(adminCtx(), 5, []int64{10, 11, 11, 12})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Requested)
	assert.Equal(t, int64(2), res.Enrolled)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, 1, sections.locks)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, ActionEnroll, audit.entries[0].Action)
}

func TestSectionEnrollRejectsOverCapacity(t *testing.T) {
	sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 2})
	sections.enrolled[5] = []int64{10}
	svc, _, audit := newSectionService(sections, newFakeStudentRepo())

	_, err := svc.Enroll(adminCtx(), 5, []int64{11, 12})
	require.ErrorIs(t, err, apperrors.ErrSectionFull)
	assert.Equal(t, int64(1), apperrors.DetailsOf(err)["enrolled"])
	assert.Len(t, sections.enrolled[5], 1)
	assert.Empty(t, audit.entries)
}

func TestSectionEnrollIsIdempotentAtCapacity(t *testing.T) {
	sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 1})
	sections.enrolled[5] = []int64{10}
	svc, _, audit := newSectionService(sections, newFakeStudentRepo())

	res, err := svc.Enroll(adminCtx(), 5, []int64{10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Enrolled)
	assert.Empty(t, audit.entries)
}

func TestSectionEnrollBatch(t *testing.T) {
	t.Run("requires a batch", func(t *testing.T) {
		sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 10})
		svc, _, _ := newSectionService(sections, newFakeStudentRepo())

		_, err := svc.EnrollBatch(adminCtx(), 5)
		require.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("enrolls active students", func(t *testing.T) {
		sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 10, BatchID: int64Ptr(3)})
		students := newFakeStudentRepo()
		students.activeByBatch[3] = []int64{21, 22, 23}
		svc, _, _ := newSectionService(sections, students)

		res, err := svc.EnrollBatch(adminCtx(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.Enrolled)
		assert.ElementsMatch(t, []int64{21, 22, 23}, sections.enrolled[5])
	})
}

func TestSectionUnenrollMissing(t *testing.T) {
	sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 10})
	svc, _, _ := newSectionService(sections, newFakeStudentRepo())

	err := svc.Unenroll(adminCtx(), 5, 99)
	require.ErrorIs(t, err, apperrors.ErrStudentNotEnrolledSection)
}

func TestSectionRosterScopesStudents(t *testing.T) {
	sections := newFakeSectionRepo(&models.Section{ID: 5, Capacity: 10})
	sections.enrolled[5] = []int64{10, 11}
	students := newFakeStudentRepo(
		&models.Student{ID: 10, UserID: 110},
		&models.Student{ID: 12, UserID: 112},
	)
	svc, _, _ := newSectionService(sections, students)

	full, err := svc.Roster(facultyCtx(200), 5)
	require.NoError(t, err)
	assert.Len(t, full, 2)

	own, err := svc.Roster(studentCtx(110), 5)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, int64(10), own[0].StudentID)

	_, err = svc.Roster(studentCtx(112), 5)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.Roster(studentCtx(999), 5)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
