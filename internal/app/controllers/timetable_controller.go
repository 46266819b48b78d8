package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// TimetableController handles weekly timetable slots
type TimetableController struct {
	timetableService services.TimetableService
}

// NewTimetableController creates a new TimetableController
func NewTimetableController(timetableService services.TimetableService) *TimetableController {
	return &TimetableController{timetableService: timetableService}
}

// ListSlots lists timetable slots
// @Summary List timetable slots
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param sessionId query int false "Academic session ID"
// @Param sectionId query int false "Section ID"
// @Param facultyId query int false "Faculty ID"
// @Param room query string false "Room"
// @Param dayOfWeek query int false "1 (Monday) to 7 (Sunday)"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.TimetableSlot}}
// @Router /timetable [get]
func (c *TimetableController) ListSlots(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.TimetableFilter{
		SessionID: helpers.QueryInt64(ctx, "sessionId"),
		SectionID: helpers.QueryInt64(ctx, "sectionId"),
		FacultyID: helpers.QueryInt64(ctx, "facultyId"),
		Room:      helpers.QueryString(ctx, "room"),
		Page:      page,
		Size:      size,
	}
	if raw := ctx.Query("dayOfWeek"); raw != "" {
		if day, err := strconv.Atoi(raw); err == nil && day >= 1 && day <= 7 {
			filter.DayOfWeek = &day
		}
	}

	slots, err := c.timetableService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, slots, "")
}

// GetSlot returns one slot
// @Summary Get timetable slot
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Success 200 {object} dto.APIResponse{data=models.TimetableSlot}
// @Failure 404 {object} dto.ErrorResponse "Slot not found"
// @Router /timetable/{id} [get]
func (c *TimetableController) GetSlot(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	slot, err := c.timetableService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, slot, "")
}

// CreateSlot schedules a section
// @Summary Create timetable slot
// @Description Fails with 409 when the slot overlaps another slot of the same session and day sharing its room, section or faculty member
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TimetableSlotRequest true "Slot"
// @Success 201 {object} dto.APIResponse{data=models.TimetableSlot}
// @Failure 400 {object} dto.ErrorResponse "Invalid time range"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 409 {object} dto.ErrorResponse "Slot conflict"
// @Router /timetable [post]
func (c *TimetableController) CreateSlot(ctx *gin.Context) {
	var req dto.TimetableSlotRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	slot, err := c.timetableService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, slot, "Timetable slot created successfully")
}

// UpdateSlot reschedules a slot
// @Summary Update timetable slot
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Param request body dto.TimetableSlotRequest true "Slot"
// @Success 200 {object} dto.APIResponse{data=models.TimetableSlot}
// @Failure 400 {object} dto.ErrorResponse "Invalid time range"
// @Failure 404 {object} dto.ErrorResponse "Slot or section not found"
// @Failure 409 {object} dto.ErrorResponse "Slot conflict"
// @Router /timetable/{id} [put]
func (c *TimetableController) UpdateSlot(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.TimetableSlotRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	slot, err := c.timetableService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, slot, "Timetable slot updated successfully")
}

// DeleteSlot removes a slot
// @Summary Delete timetable slot
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Slot not found"
// @Router /timetable/{id} [delete]
func (c *TimetableController) DeleteSlot(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.timetableService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Timetable slot deleted successfully")
}
