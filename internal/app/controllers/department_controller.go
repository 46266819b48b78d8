package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// DepartmentController handles department-related operations
type DepartmentController struct {
	departmentService services.DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService services.DepartmentService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
	}
}

// ListDepartments lists departments
// @Summary List departments
// @Description Lists departments, optionally filtered by a name or code search
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or code contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Department}}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /departments [get]
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	departments, err := c.departmentService.List(ctx.Request.Context(), repositories.DepartmentFilter{
		Search: ctx.Query("search"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ok(ctx, departments, "")
}

// GetDepartment retrieves a department by ID
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=models.Department}
// @Failure 400 {object} dto.ErrorResponse "Invalid department ID"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{id} [get]
func (c *DepartmentController) GetDepartment(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	department, err := c.departmentService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ok(ctx, department, "")
}

// CreateDepartment handles department creation
// @Summary Create a new department
// @Description Codes are upper-cased and names title-cased before saving
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DepartmentRequest true "Department information"
// @Success 201 {object} dto.APIResponse{data=models.Department} "Department created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Department already exists"
// @Router /departments [post]
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	var req dto.DepartmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	department, err := c.departmentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	created(ctx, department, "Department created successfully")
}

// UpdateDepartment updates an existing department
// @Summary Update a department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.DepartmentRequest true "Updated department information"
// @Success 200 {object} dto.APIResponse{data=models.Department}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department already exists"
// @Router /departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.DepartmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	department, err := c.departmentService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ok(ctx, department, "Department updated successfully")
}

// DeleteDepartment deletes a department
// @Summary Delete a department
// @Description Refused while programs, courses, faculty or students reference the department
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department has associated data"
// @Router /departments/{id} [delete]
func (c *DepartmentController) DeleteDepartment(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.departmentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ok(ctx, nil, "Department deleted successfully")
}

// SetDepartmentHead assigns or clears the department head
// @Summary Set department head
// @Description The faculty member must belong to the department. Omit facultyId to clear the head.
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.SetDepartmentHeadRequest true "Faculty member"
// @Success 200 {object} dto.APIResponse{data=models.Department}
// @Failure 400 {object} dto.ErrorResponse "Faculty member belongs to another department"
// @Failure 404 {object} dto.ErrorResponse "Department or faculty member not found"
// @Router /departments/{id}/head [put]
func (c *DepartmentController) SetDepartmentHead(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.SetDepartmentHeadRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	department, err := c.departmentService.SetHead(ctx.Request.Context(), id, req.FacultyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ok(ctx, department, "Department head updated")
}
