package services

import (
	"context"
	"time"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// Attendance trend window bounds, in days
const (
	DefaultTrendDays = 14
	MaxTrendDays     = 90
)

// DashboardService serves admin dashboard aggregates
type DashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	AttendanceTrend(ctx context.Context, days int) ([]dto.AttendanceTrendPoint, error)
	DepartmentBreakdown(ctx context.Context) ([]models.DepartmentBreakdown, error)
}

type dashboardServiceImpl struct {
	dashboardRepo  repositories.IDashboardRepository
	attendanceRepo repositories.IAttendanceRepository
	now            func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(dashboardRepo repositories.IDashboardRepository, attendanceRepo repositories.IAttendanceRepository) DashboardService {
	return &dashboardServiceImpl{dashboardRepo: dashboardRepo, attendanceRepo: attendanceRepo, now: time.Now}
}

func (s *dashboardServiceImpl) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return s.dashboardRepo.Stats(ctx, models.NewDate(s.now()))
}

// AttendanceTrend returns one point per day ending today, with zero-filled days that have no records
func (s *dashboardServiceImpl) AttendanceTrend(ctx context.Context, days int) ([]dto.AttendanceTrendPoint, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	if days > MaxTrendDays {
		days = MaxTrendDays
	}

	to := models.NewDate(s.now())
	from := models.NewDate(to.AddDate(0, 0, -(days - 1)))

	rates, err := s.attendanceRepo.DailyRates(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]models.DailyAttendanceRate, len(rates))
	for _, r := range rates {
		byDay[r.Date.String()] = r
	}

	points := make([]dto.AttendanceTrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := models.NewDate(from.AddDate(0, 0, i)).String()
		r := byDay[day]
		points = append(points, dto.AttendanceTrendPoint{
			Date:    day,
			Total:   r.Total,
			Present: r.Present,
			Rate:    helpers.Percentage(r.Present, r.Total),
		})
	}
	return points, nil
}

func (s *dashboardServiceImpl) DepartmentBreakdown(ctx context.Context) ([]models.DepartmentBreakdown, error) {
	return s.dashboardRepo.DepartmentBreakdown(ctx)
}
