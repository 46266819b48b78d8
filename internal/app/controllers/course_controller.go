package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// CourseController handles courses, their learning outcomes and CLO to PLO mapping
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// ListCourses lists courses
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param search query string false "Title or code contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Course}}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	courses, err := c.courseService.List(ctx.Request.Context(), repositories.CourseFilter{
		DepartmentID: helpers.QueryInt64(ctx, "departmentId"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, courses, "")
}

// GetCourse returns one course
// @Summary Get course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	course, err := c.courseService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, course, "")
}

// CreateCourse creates a course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, course, "Course created successfully")
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseRequest true "Course"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 404 {object} dto.ErrorResponse "Course or department not found"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, course, "Course updated successfully")
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course has sections"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.courseService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Course deleted successfully")
}

// ListCLOs lists a course's learning outcomes
// @Summary List course learning outcomes
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CLO}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/clos [get]
func (c *CourseController) ListCLOs(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	clos, err := c.courseService.ListCLOs(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, clos, "")
}

// CreateCLO adds a learning outcome to a course
// @Summary Create course learning outcome
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CLORequest true "Outcome"
// @Success 201 {object} dto.APIResponse{data=models.CLO}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Outcome code already exists"
// @Router /courses/{id}/clos [post]
func (c *CourseController) CreateCLO(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.CLORequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	clo, err := c.courseService.CreateCLO(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, clo, "Learning outcome created successfully")
}

// UpdateCLO updates a course learning outcome
// @Summary Update course learning outcome
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "CLO ID"
// @Param request body dto.CLORequest true "Outcome"
// @Success 200 {object} dto.APIResponse{data=models.CLO}
// @Failure 404 {object} dto.ErrorResponse "Outcome not found"
// @Router /clos/{id} [put]
func (c *CourseController) UpdateCLO(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.CLORequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	clo, err := c.courseService.UpdateCLO(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, clo, "Learning outcome updated successfully")
}

// DeleteCLO deletes a course learning outcome
// @Summary Delete course learning outcome
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "CLO ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Outcome not found"
// @Router /clos/{id} [delete]
func (c *CourseController) DeleteCLO(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.courseService.DeleteCLO(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Learning outcome deleted successfully")
}

// MapCLOToPLOs replaces the PLOs a course outcome maps to
// @Summary Map course outcome to program outcomes
// @Description Replaces the mapping. Every PLO must belong to a program of the course's department. An empty list clears the mapping.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "CLO ID"
// @Param request body dto.CLOMappingRequest true "Mappings"
// @Success 200 {object} dto.APIResponse{data=[]models.CLOPLOMapping}
// @Failure 400 {object} dto.ErrorResponse "PLO outside the course's department or duplicated"
// @Failure 404 {object} dto.ErrorResponse "Outcome not found"
// @Router /clos/{id}/plos [put]
func (c *CourseController) MapCLOToPLOs(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.CLOMappingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	mappings, err := c.courseService.MapCLOToPLOs(ctx.Request.Context(), id, req.Mappings)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, mappings, "Mapping updated")
}

// OutcomeMatrix returns the CLO x PLO matrix of a course
// @Summary Course outcome matrix
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.OutcomeMatrixResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/outcome-matrix [get]
func (c *CourseController) OutcomeMatrix(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	matrix, err := c.courseService.OutcomeMatrix(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, matrix, "")
}
