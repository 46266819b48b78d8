package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
)

// DashboardController serves the aggregate figures of the admin dashboard
type DashboardController struct {
	dashboardService services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Stats returns headline counts
// @Summary Dashboard statistics
// @Description Active students, faculty, departments, programs, courses, sections in the active session and today's attendance rate
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.DashboardStats}
// @Router /dashboard/stats [get]
func (c *DashboardController) Stats(ctx *gin.Context) {
	stats, err := c.dashboardService.Stats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, stats, "")
}

// AttendanceTrend returns the daily attendance rate for the last N days
// @Summary Attendance trend
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param days query int false "Number of days, at most 90" default(14)
// @Success 200 {object} dto.APIResponse{data=[]dto.AttendanceTrendPoint}
// @Router /dashboard/attendance-trend [get]
func (c *DashboardController) AttendanceTrend(ctx *gin.Context) {
	days, err := strconv.Atoi(ctx.DefaultQuery("days", strconv.Itoa(services.DefaultTrendDays)))
	if err != nil {
		days = services.DefaultTrendDays
	}

	points, err := c.dashboardService.AttendanceTrend(ctx.Request.Context(), days)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, points, "")
}

// DepartmentBreakdown returns student and faculty counts per department
// @Summary Department breakdown
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.DepartmentBreakdown}
// @Router /dashboard/department-breakdown [get]
func (c *DashboardController) DepartmentBreakdown(ctx *gin.Context) {
	rows, err := c.dashboardService.DepartmentBreakdown(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, rows, "")
}
