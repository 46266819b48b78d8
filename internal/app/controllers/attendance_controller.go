package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// AttendanceController handles attendance marking and reporting
type AttendanceController struct {
	attendanceService services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: attendanceService}
}

// MarkAttendance records a day's attendance for a section
// @Summary Mark attendance
// @Description Upserts one record per student for the date. Faculty may only mark their own sections.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param request body dto.MarkAttendanceRequest true "Date and records"
// @Success 200 {object} dto.APIResponse{data=dto.MarkAttendanceResponse}
// @Failure 400 {object} dto.ErrorResponse "Future date, date outside the session or students not enrolled"
// @Failure 403 {object} dto.ErrorResponse "Section not assigned to the caller"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id}/attendance [post]
func (c *AttendanceController) MarkAttendance(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.MarkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.attendanceService.Mark(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, resp, "Attendance saved")
}

// SectionAttendance returns the roster with each student's status for a date
// @Summary Section attendance for a date
// @Description Unmarked students are listed with a null status
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} dto.APIResponse{data=dto.SectionAttendanceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id}/attendance [get]
func (c *AttendanceController) SectionAttendance(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	date, valid := queryDate(ctx, "date")
	if !valid {
		return
	}
	day := models.Today()
	if date != nil {
		day = *date
	}

	resp, err := c.attendanceService.SectionAttendance(ctx.Request.Context(), id, day)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, resp, "")
}

// ListAttendance lists attendance records
// @Summary List attendance records
// @Description Students only see their own records
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param sectionId query int false "Section ID"
// @Param studentId query int false "Student ID"
// @Param from query string false "From date YYYY-MM-DD"
// @Param to query string false "To date YYYY-MM-DD"
// @Param status query string false "PRESENT, ABSENT, LATE or EXCUSED"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AttendanceRecord}}
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Router /attendance [get]
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	from, valid := queryDate(ctx, "from")
	if !valid {
		return
	}
	to, valid := queryDate(ctx, "to")
	if !valid {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	records, err := c.attendanceService.List(ctx.Request.Context(), repositories.AttendanceFilter{
		SectionID: helpers.QueryInt64(ctx, "sectionId"),
		StudentID: helpers.QueryInt64(ctx, "studentId"),
		From:      from,
		To:        to,
		Status:    helpers.QueryString(ctx, "status"),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, records, "")
}

// StudentSummary returns per-section attendance percentages for a student
// @Summary Student attendance summary
// @Description Percentage is (present + late) / total * 100. Sections below the threshold are flagged as shortage.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentAttendanceSummary}
// @Failure 403 {object} dto.ErrorResponse "Another student's record"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/attendance-summary [get]
func (c *AttendanceController) StudentSummary(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	summary, err := c.attendanceService.StudentSummary(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, summary, "")
}

// ShortageAlerts notifies every student of a section below the attendance threshold
// @Summary Send attendance shortage alerts
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.ShortageAlertResult}
// @Failure 403 {object} dto.ErrorResponse "Section not assigned to the caller"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id}/attendance/shortage-alerts [post]
func (c *AttendanceController) ShortageAlerts(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	result, err := c.attendanceService.ShortageAlerts(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, result, "Shortage alerts sent")
}
