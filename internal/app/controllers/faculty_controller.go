package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// FacultyController handles faculty members
type FacultyController struct {
	facultyService services.FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService services.FacultyService) *FacultyController {
	return &FacultyController{
		facultyService: facultyService,
	}
}

// ListFaculty lists faculty members
// @Summary List faculty members
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param search query string false "Name, email or employee code contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.FacultyMember}}
// @Router /faculty [get]
func (c *FacultyController) ListFaculty(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	members, err := c.facultyService.List(ctx.Request.Context(), repositories.FacultyFilter{
		DepartmentID: helpers.QueryInt64(ctx, "departmentId"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, members, "")
}

// GetFaculty returns one faculty member
// @Summary Get faculty member
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Success 200 {object} dto.APIResponse{data=models.FacultyMember}
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Router /faculty/{id} [get]
func (c *FacultyController) GetFaculty(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	member, err := c.facultyService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, member, "")
}

// CreateFaculty creates a faculty member and their login
// @Summary Create faculty member
// @Description Creates the user account with the FACULTY role and the faculty record in one transaction
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacultyRequest true "Faculty member"
// @Success 201 {object} dto.APIResponse{data=models.FacultyMember}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Email or employee code already exists"
// @Router /faculty [post]
func (c *FacultyController) CreateFaculty(ctx *gin.Context) {
	var req dto.CreateFacultyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	member, err := c.facultyService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, member, "Faculty member created successfully")
}

// UpdateFaculty updates a faculty member
// @Summary Update faculty member
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Param request body dto.UpdateFacultyRequest true "Faculty member"
// @Success 200 {object} dto.APIResponse{data=models.FacultyMember}
// @Failure 404 {object} dto.ErrorResponse "Faculty member or department not found"
// @Failure 409 {object} dto.ErrorResponse "Employee code already exists"
// @Router /faculty/{id} [put]
func (c *FacultyController) UpdateFaculty(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.UpdateFacultyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	member, err := c.facultyService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, member, "Faculty member updated successfully")
}

// DeleteFaculty removes a faculty member and their login
// @Summary Delete faculty member
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Router /faculty/{id} [delete]
func (c *FacultyController) DeleteFaculty(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.facultyService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Faculty member deleted successfully")
}

// FacultySections returns a faculty member's teaching load
// @Summary Faculty teaching load
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID"
// @Param sessionId query int false "Academic session ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Section}
// @Failure 404 {object} dto.ErrorResponse "Faculty member not found"
// @Router /faculty/{id}/sections [get]
func (c *FacultyController) FacultySections(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	sections, err := c.facultyService.Sections(ctx.Request.Context(), id, helpers.QueryInt64(ctx, "sessionId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, sections, "")
}
