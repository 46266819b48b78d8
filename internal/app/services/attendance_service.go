package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/email"
	"github.com/yigit/unicampus/internal/pkg/events"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// DefaultShortageThreshold is the minimum attendance percentage
const DefaultShortageThreshold = 75.0

// AttendanceService records and reports attendance
type AttendanceService interface {
	Mark(ctx context.Context, sectionID int64, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error)
	SectionAttendance(ctx context.Context, sectionID int64, date models.Date) (*dto.SectionAttendanceResponse, error)
	List(ctx context.Context, filter repositories.AttendanceFilter) (*dto.PaginatedResponse, error)
	StudentSummary(ctx context.Context, studentID int64) (*dto.StudentAttendanceSummary, error)
	ShortageAlerts(ctx context.Context, sectionID int64) (*dto.ShortageAlertResult, error)
}

type attendanceServiceImpl struct {
	attendanceRepo repositories.IAttendanceRepository
	sectionRepo    repositories.ISectionRepository
	sessionRepo    repositories.ISessionRepository
	studentRepo    repositories.IStudentRepository
	facultyRepo    repositories.IFacultyRepository
	tx             db.Transactor
	notifications  NotificationService
	mailer         *Mailer
	publisher      events.Publisher
	audit          AuditService
	threshold      float64
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAttendanceService creates a new AttendanceService. A non-positive threshold falls back to 75.
func NewAttendanceService(
	attendanceRepo repositories.IAttendanceRepository,
	sectionRepo repositories.ISectionRepository,
	sessionRepo repositories.ISessionRepository,
	studentRepo repositories.IStudentRepository,
	facultyRepo repositories.IFacultyRepository,
	tx db.Transactor,
	notifications NotificationService,
	mailer *Mailer,
	publisher events.Publisher,
	audit AuditService,
	threshold float64,
	logger zerolog.Logger,
) AttendanceService {
	if threshold <= 0 {
		threshold = DefaultShortageThreshold
	}
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		sectionRepo:    sectionRepo,
		sessionRepo:    sessionRepo,
		studentRepo:    studentRepo,
		facultyRepo:    facultyRepo,
		tx:             tx,
		notifications:  notifications,
		mailer:         mailer,
		publisher:      publisher,
		audit:          audit,
		threshold:      threshold,
		logger:         logger,
		now:            time.Now,
	}
}

// authorizeMarking lets admins mark any section and everyone else only sections they teach
func (s *attendanceServiceImpl) authorizeMarking(ctx context.Context, section *models.Section) error {
	if isAdmin(ctx) {
		return nil
	}

	member, err := s.facultyRepo.GetByUserID(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, apperrors.ErrFacultyNotFound) {
			return apperrors.NewForbiddenError("Only the assigned faculty member may mark attendance for this section")
		}
		return err
	}
	if section.FacultyID == nil || *section.FacultyID != member.ID {
		return apperrors.NewForbiddenError("Only the assigned faculty member may mark attendance for this section")
	}
	return nil
}

// Mark upserts a day's attendance for the section. Repeated student IDs keep the last entry.
func (s *attendanceServiceImpl) Mark(ctx context.Context, sectionID int64, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error) {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMarking(ctx, section); err != nil {
		return nil, err
	}

	if req.Date.After(models.NewDate(s.now())) {
		return nil, apperrors.ErrAttendanceDateInFuture
	}
	session, err := s.sessionRepo.GetByID(ctx, section.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Contains(req.Date) {
		return nil, apperrors.NewCustomError(apperrors.ErrAttendanceOutsideSession,
			fmt.Sprintf("Date must be between %s and %s", session.StartDate, session.EndDate))
	}

	latest := make(map[int64]dto.AttendanceEntry, len(req.Records))
	ids := make([]int64, 0, len(req.Records))
	for _, entry := range req.Records {
		if _, seen := latest[entry.StudentID]; !seen {
			ids = append(ids, entry.StudentID)
		}
		latest[entry.StudentID] = entry
	}

	enrolled, err := s.sectionRepo.EnrolledAmong(ctx, sectionID, ids)
	if err != nil {
		return nil, err
	}
	if offenders := missingIDs(ids, enrolled); len(offenders) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrStudentNotEnrolledSection,
			"Some students are not enrolled in this section").
			WithDetails(map[string]interface{}{"studentIds": offenders})
	}

	var markedBy *int64
	if actor := auth.UserIDFromContext(ctx); actor != 0 {
		markedBy = &actor
	}
	records := make([]*models.AttendanceRecord, 0, len(ids))
	for _, id := range ids {
		entry := latest[id]
		records = append(records, &models.AttendanceRecord{
			SectionID: sectionID,
			StudentID: id,
			Date:      req.Date,
			Status:    models.AttendanceStatus(entry.Status),
			Remarks:   entry.Remarks,
			MarkedBy:  markedBy,
		})
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.attendanceRepo.Upsert(ctx, records)
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.MarkAttendanceResponse{SectionID: sectionID, Date: req.Date, Saved: len(records)}
	s.audit.Record(ctx, ActionAttendance, "section", sectionID, map[string]interface{}{"date": req.Date, "saved": resp.Saved})
	events.Emit(ctx, s.publisher, s.logger, events.New(events.AttendanceMarked, sectionID, resp))

	s.logger.Info().Int64("sectionID", sectionID).Str("date", req.Date.String()).Int("saved", resp.Saved).Msg("Attendance marked")
	return resp, nil
}

// SectionAttendance lists the roster with each student's status on date. Unmarked students have a nil status.
// Students see only their own line.
func (s *attendanceServiceImpl) SectionAttendance(ctx context.Context, sectionID int64, date models.Date) (*dto.SectionAttendanceResponse, error) {
	if _, err := s.sectionRepo.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}

	roster, err := s.sectionRepo.ListStudents(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if roster, err = ownRosterLine(ctx, s.studentRepo, roster); err != nil {
		return nil, err
	}
	marked, err := s.attendanceRepo.ListBySectionDate(ctx, sectionID, date)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[int64]*models.AttendanceRecord, len(marked))
	for _, r := range marked {
		byStudent[r.StudentID] = r
	}

	lines := make([]dto.RosterAttendance, 0, len(roster))
	for _, st := range roster {
		line := dto.RosterAttendance{
			StudentID:      st.StudentID,
			RegistrationNo: st.RegistrationNo,
			FirstName:      st.FirstName,
			LastName:       st.LastName,
		}
		if r, ok := byStudent[st.StudentID]; ok {
			status := r.Status
			line.Status = &status
			line.Remarks = r.Remarks
		}
		lines = append(lines, line)
	}

	return &dto.SectionAttendanceResponse{SectionID: sectionID, Date: date, Records: lines}, nil
}

// List returns attendance records. Students only ever see their own.
func (s *attendanceServiceImpl) List(ctx context.Context, filter repositories.AttendanceFilter) (*dto.PaginatedResponse, error) {
	if studentOnly(ctx) {
		student, err := s.studentRepo.GetByUserID(ctx, auth.UserIDFromContext(ctx))
		if err != nil {
			return nil, err
		}
		filter.StudentID = &student.ID
	}

	items, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	resp := helpers.NewPaginatedResponse(items, total, filter.Page, filter.Size)
	return &resp, nil
}

func (s *attendanceServiceImpl) summarize(rows []models.SectionAttendanceSummary) []dto.AttendanceSummaryItem {
	items := make([]dto.AttendanceSummaryItem, 0, len(rows))
	for _, row := range rows {
		total := row.Total()
		pct := helpers.Percentage(row.Present+row.Late, total)
		items = append(items, dto.AttendanceSummaryItem{
			SectionAttendanceSummary: row,
			Total:                    total,
			Percentage:               pct,
			Shortage:                 total > 0 && pct < s.threshold,
		})
	}
	return items
}

// StudentSummary reports per-section attendance percentages for a student
func (s *attendanceServiceImpl) StudentSummary(ctx context.Context, studentID int64) (*dto.StudentAttendanceSummary, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if studentOnly(ctx) && student.UserID != auth.UserIDFromContext(ctx) {
		return nil, apperrors.NewForbiddenError("Students may only access their own attendance")
	}

	rows, err := s.attendanceRepo.SummaryByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &dto.StudentAttendanceSummary{
		StudentID: studentID,
		Threshold: s.threshold,
		Sections:  s.summarize(rows),
	}, nil
}

// ShortageAlerts notifies and emails every student of the section below the threshold
func (s *attendanceServiceImpl) ShortageAlerts(ctx context.Context, sectionID int64) (*dto.ShortageAlertResult, error) {
	section, err := s.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.attendanceRepo.SummaryBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	short := make(map[int64]float64)
	ids := make([]int64, 0)
	for _, item := range s.summarize(rows) {
		if item.Shortage {
			short[item.StudentID] = item.Percentage
			ids = append(ids, item.StudentID)
		}
	}
	result := &dto.ShortageAlertResult{SectionID: sectionID, Threshold: s.threshold}
	if len(ids) == 0 {
		return result, nil
	}

	students, err := s.studentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	course := section.CourseCode + " (" + section.Name + ")"
	for _, st := range students {
		pct := short[st.ID]
		msg := fmt.Sprintf("Your attendance in %s is %.2f%%, below the required %.0f%%.", course, pct, s.threshold)
		if _, err := s.notifications.Notify(ctx, []int64{st.UserID}, "Attendance shortage", msg, models.NotificationWarning); err != nil {
			return nil, err
		}

		to, name := st.Email, st.FirstName+" "+st.LastName
		s.mailer.Go("attendance_shortage", func(ctx context.Context, svc email.EmailService) error {
			return svc.SendAttendanceShortageEmail(ctx, to, name, course, pct)
		})
		result.Notified++
	}

	s.audit.Record(ctx, ActionNotify, "section", sectionID, map[string]interface{}{"shortage": result.Notified, "threshold": s.threshold})
	return result, nil
}

// missingIDs returns the IDs of want that are absent from have
func missingIDs(want, have []int64) []int64 {
	found := make(map[int64]bool, len(have))
	for _, id := range have {
		found[id] = true
	}
	var out []int64
	for _, id := range want {
		if !found[id] {
			out = append(out, id)
		}
	}
	return out
}
