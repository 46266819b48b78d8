package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/events"
)

type fakeAttendanceRepo struct {
	repositories.IAttendanceRepository
	upserted   []*models.AttendanceRecord
	byDate     []*models.AttendanceRecord
	summaries  []models.SectionAttendanceSummary
	listFilter repositories.AttendanceFilter
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, records []*models.AttendanceRecord) error {
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeAttendanceRepo) ListBySectionDate(ctx context.Context, sectionID int64, date models.Date) ([]*models.AttendanceRecord, error) {
	return f.byDate, nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter repositories.AttendanceFilter) ([]*models.AttendanceRecord, int64, error) {
	f.listFilter = filter
	return []*models.AttendanceRecord{}, 0, nil
}

func (f *fakeAttendanceRepo) SummaryByStudent(ctx context.Context, studentID int64) ([]models.SectionAttendanceSummary, error) {
	return f.summaries, nil
}

func (f *fakeAttendanceRepo) SummaryBySection(ctx context.Context, sectionID int64) ([]models.SectionAttendanceSummary, error) {
	return f.summaries, nil
}

type fakeSessionRepo struct {
	repositories.ISessionRepository
	sessions map[int64]*models.AcademicSession
	deleted  []int64
	created  *models.AcademicSession
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id int64) (*models.AcademicSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *models.AcademicSession) error {
	s.ID = 77
	f.created = s
	return nil
}

func (f *fakeSessionRepo) Activate(ctx context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	for sid, s := range f.sessions {
		s.IsActive = sid == id
	}
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeFacultyRepo struct {
	repositories.IFacultyRepository
	members map[int64]*models.FacultyMember
}

func (f *fakeFacultyRepo) GetByID(ctx context.Context, id int64) (*models.FacultyMember, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, apperrors.ErrFacultyNotFound
	}
	return m, nil
}

func (f *fakeFacultyRepo) GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error) {
	for _, m := range f.members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, apperrors.ErrFacultyNotFound
}

type fakeNotifier struct {
	NotificationService
	notified []int64
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, userIDs []int64, title, message string, kind models.NotificationType) (int, error) {
	f.notified = append(f.notified, userIDs...)
	f.messages = append(f.messages, message)
	return len(userIDs), nil
}

type attendanceFixture struct {
	svc        *attendanceServiceImpl
	attendance *fakeAttendanceRepo
	sections   *fakeSectionRepo
	students   *fakeStudentRepo
	notifier   *fakeNotifier
	mail       *fakeEmail
	mailer     *Mailer
	publisher  *fakePublisher
	tx         *fakeTx
}

func newAttendanceFixture() *attendanceFixture {
	f := &attendanceFixture{
		attendance: &fakeAttendanceRepo{},
		sections: newFakeSectionRepo(&models.Section{
			ID: 9, SessionID: 2, CourseCode: "CS-101", Name: "A", Capacity: 40, FacultyID: int64Ptr(4),
		}),
		students: newFakeStudentRepo(
			&models.Student{ID: 31, UserID: 131, Email: "amna@uni.edu", FirstName: "Amna", LastName: "Khan"},
			&models.Student{ID: 32, UserID: 132, Email: "bilal@uni.edu", FirstName: "Bilal", LastName: "Ahmed"},
		),
		notifier:  &fakeNotifier{},
		mail:      &fakeEmail{},
		publisher: &fakePublisher{},
		tx:        &fakeTx{},
	}
	f.sections.enrolled[9] = []int64{31, 32}
	f.mailer = newTestMailer(f.mail)

	sessions := &fakeSessionRepo{sessions: map[int64]*models.AcademicSession{
		2: {ID: 2, StartDate: mustDate("2025-09-01"), EndDate: mustDate("2025-12-31")},
	}}
	faculty := &fakeFacultyRepo{members: map[int64]*models.FacultyMember{
		4: {ID: 4, UserID: 104},
		5: {ID: 5, UserID: 105},
	}}

	svc := NewAttendanceService(f.attendance, f.sections, sessions, f.students, faculty, f.tx,
		f.notifier, f.mailer, f.publisher, &fakeAudit{}, 0, zerolog.Nop()).(*attendanceServiceImpl)
	svc.now = fixedClock
	f.svc = svc
	return f
}

func markRequest(date string, entries ...dto.AttendanceEntry) *dto.MarkAttendanceRequest {
	return &dto.MarkAttendanceRequest{Date: mustDate(date), Records: entries}
}

func TestMarkAttendanceByAssignedFaculty(t *testing.T) {
	f := newAttendanceFixture()

	resp, err := f.svc.Mark(facultyCtx(104), 9, markRequest("2025-10-14",
		dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"},
		dto.AttendanceEntry{StudentID: 32, Status: "ABSENT"},
		dto.AttendanceEntry{StudentID: 31, Status: "LATE", Remarks: "bus"},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Saved)
	require.Len(t, f.attendance.upserted, 2)
	assert.Equal(t, models.AttendanceLate, f.attendance.upserted[0].Status)
	assert.Equal(t, "bus", f.attendance.upserted[0].Remarks)
	assert.Equal(t, int64(104), *f.attendance.upserted[0].MarkedBy)
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{events.AttendanceMarked}, f.publisher.types())
}

func TestMarkAttendanceRejections(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		req  *dto.MarkAttendanceRequest
		want error
	}{
		{
			name: "other faculty",
			ctx:  facultyCtx(105),
			req:  markRequest("2025-10-14", dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"}),
			want: apperrors.ErrPermissionDenied,
		},
		{
			name: "not a faculty member",
			ctx:  studentCtx(131),
			req:  markRequest("2025-10-14", dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"}),
			want: apperrors.ErrPermissionDenied,
		},
		{
			name: "future date",
			ctx:  adminCtx(),
			req:  markRequest("2025-10-16", dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"}),
			want: apperrors.ErrAttendanceDateInFuture,
		},
		{
			name: "before session start",
			ctx:  adminCtx(),
			req:  markRequest("2025-08-30", dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"}),
			want: apperrors.ErrAttendanceOutsideSession,
		},
		{
			name: "student not enrolled",
			ctx:  adminCtx(),
			req:  markRequest("2025-10-14", dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"}, dto.AttendanceEntry{StudentID: 99, Status: "PRESENT"}),
			want: apperrors.ErrStudentNotEnrolledSection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttendanceFixture()
			_, err := f.svc.Mark(tt.ctx, 9, tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.attendance.upserted)
			assert.Empty(t, f.publisher.types())
		})
	}
}

func TestMarkAttendanceListsOffenders(t *testing.T) {
	f := newAttendanceFixture()

	_, err := f.svc.Mark(adminCtx(), 9, markRequest("2025-10-14",
		dto.AttendanceEntry{StudentID: 98, Status: "PRESENT"},
		dto.AttendanceEntry{StudentID: 31, Status: "PRESENT"},
		dto.AttendanceEntry{StudentID: 99, Status: "ABSENT"},
	))
	require.ErrorIs(t, err, apperrors.ErrStudentNotEnrolledSection)
	assert.Equal(t, []int64{98, 99}, apperrors.DetailsOf(err)["studentIds"])
}

func TestSectionAttendanceLeavesUnmarkedNil(t *testing.T) {
	f := newAttendanceFixture()
	f.attendance.byDate = []*models.AttendanceRecord{{StudentID: 32, Status: models.AttendanceExcused, Remarks: "medical"}}

	resp, err := f.svc.SectionAttendance(adminCtx(), 9, mustDate("2025-10-14"))
	require.NoError(t, err)
	require.Len(t, resp.Records, 2)

	assert.Nil(t, resp.Records[0].Status)
	require.NotNil(t, resp.Records[1].Status)
	assert.Equal(t, models.AttendanceExcused, *resp.Records[1].Status)
	assert.Equal(t, "medical", resp.Records[1].Remarks)
}

func TestStudentSummaryPercentages(t *testing.T) {
	f := newAttendanceFixture()
	f.attendance.summaries = []models.SectionAttendanceSummary{
		{SectionID: 9, StudentID: 31, AttendanceCounts: models.AttendanceCounts{Present: 5, Late: 1, Absent: 2}},
		{SectionID: 10, StudentID: 31, AttendanceCounts: models.AttendanceCounts{Present: 2, Absent: 1}},
		{SectionID: 11, StudentID: 31},
	}

	summary, err := f.svc.StudentSummary(studentCtx(131), 31)
	require.NoError(t, err)

	assert.Equal(t, DefaultShortageThreshold, summary.Threshold)
	require.Len(t, summary.Sections, 3)
	assert.Equal(t, 75.0, summary.Sections[0].Percentage)
	assert.False(t, summary.Sections[0].Shortage)
	assert.Equal(t, 66.67, summary.Sections[1].Percentage)
	assert.True(t, summary.Sections[1].Shortage)
	assert.Equal(t, int64(0), summary.Sections[2].Total)
	assert.False(t, summary.Sections[2].Shortage)
}

func TestStudentSummaryOtherStudentForbidden(t *testing.T) {
	f := newAttendanceFixture()

	_, err := f.svc.StudentSummary(studentCtx(132), 31)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestListAttendanceScopesStudents(t *testing.T) {
	f := newAttendanceFixture()

	_, err := f.svc.List(studentCtx(132), repositories.AttendanceFilter{StudentID: int64Ptr(31), Page: 1, Size: 10})
	require.NoError(t, err)
	require.NotNil(t, f.attendance.listFilter.StudentID)
	assert.Equal(t, int64(32), *f.attendance.listFilter.StudentID)
}

func TestShortageAlertsNotifyAndEmail(t *testing.T) {
	f := newAttendanceFixture()
	f.attendance.summaries = []models.SectionAttendanceSummary{
		{SectionID: 9, StudentID: 31, AttendanceCounts: models.AttendanceCounts{Present: 1, Absent: 3}},
		{SectionID: 9, StudentID: 32, AttendanceCounts: models.AttendanceCounts{Present: 4}},
	}

	res, err := f.svc.ShortageAlerts(adminCtx(), 9)
	require.NoError(t, err)
	f.mailer.Wait()

	assert.Equal(t, 1, res.Notified)
	assert.Equal(t, []int64{131}, f.notifier.notified)
	assert.Contains(t, f.notifier.messages[0], "25.00%")
	assert.Equal(t, []string{"shortage"}, f.mail.kinds())
}

func TestSectionAttendanceShowsStudentsOnlyTheirOwnLine(t *testing.T) {
	f := newAttendanceFixture()
	f.attendance.byDate = []*models.AttendanceRecord{
		{StudentID: 31, Status: models.AttendancePresent},
		{StudentID: 32, Status: models.AttendanceAbsent, Remarks: "medical"},
	}

	resp, err := f.svc.SectionAttendance(studentCtx(132), 9, mustDate("2025-10-14"))
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, int64(32), resp.Records[0].StudentID)
	assert.Equal(t, "medical", resp.Records[0].Remarks)

	_, err = f.svc.SectionAttendance(studentCtx(999), 9, mustDate("2025-10-14"))
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	f.students.students[40] = &models.Student{ID: 40, UserID: 140}
	_, err = f.svc.SectionAttendance(studentCtx(140), 9, mustDate("2025-10-14"))
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
