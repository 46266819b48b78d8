package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
)

type fakeRatesRepo struct {
	fakeAttendanceRepo
	from  models.Date
	to    models.Date
	rates []models.DailyAttendanceRate
}

func (f *fakeRatesRepo) DailyRates(ctx context.Context, from, to models.Date) ([]models.DailyAttendanceRate, error) {
	f.from, f.to = from, to
	return f.rates, nil
}

func TestAttendanceTrendFillsGaps(t *testing.T) {
	repo := &fakeRatesRepo{rates: []models.DailyAttendanceRate{
		{Date: mustDate("2025-10-13"), Total: 40, Present: 30},
		{Date: mustDate("2025-10-15"), Total: 3, Present: 2},
	}}
	svc := NewDashboardService(nil, repo).(*dashboardServiceImpl)
	svc.now = fixedClock

	points, err := svc.AttendanceTrend(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, "2025-10-12", repo.from.String())
	assert.Equal(t, "2025-10-15", repo.to.String())
	require.Len(t, points, 4)
	assert.Equal(t, "2025-10-12", points[0].Date)
	assert.Equal(t, 0.0, points[0].Rate)
	assert.Equal(t, 75.0, points[1].Rate)
	assert.Equal(t, int64(0), points[2].Total)
	assert.Equal(t, 66.67, points[3].Rate)
}

func TestAttendanceTrendWindowBounds(t *testing.T) {
	repo := &fakeRatesRepo{}
	svc := NewDashboardService(nil, repo).(*dashboardServiceImpl)
	svc.now = fixedClock

	points, err := svc.AttendanceTrend(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, points, DefaultTrendDays)

	points, err = svc.AttendanceTrend(context.Background(), 365)
	require.NoError(t, err)
	assert.Len(t, points, MaxTrendDays)
}
