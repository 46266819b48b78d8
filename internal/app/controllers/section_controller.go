package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// SectionController handles course sections and enrollment
type SectionController struct {
	sectionService services.SectionService
}

// NewSectionController creates a new SectionController
func NewSectionController(sectionService services.SectionService) *SectionController {
	return &SectionController{sectionService: sectionService}
}

// ListSections lists sections
// @Summary List sections
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param sessionId query int false "Academic session ID"
// @Param courseId query int false "Course ID"
// @Param facultyId query int false "Faculty ID"
// @Param batchId query int false "Batch ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Section}}
// @Router /sections [get]
func (c *SectionController) ListSections(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	sections, err := c.sectionService.List(ctx.Request.Context(), repositories.SectionFilter{
		SessionID: helpers.QueryInt64(ctx, "sessionId"),
		CourseID:  helpers.QueryInt64(ctx, "courseId"),
		FacultyID: helpers.QueryInt64(ctx, "facultyId"),
		BatchID:   helpers.QueryInt64(ctx, "batchId"),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, sections, "")
}

// GetSection returns one section
// @Summary Get section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=models.Section}
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id} [get]
func (c *SectionController) GetSection(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	section, err := c.sectionService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, section, "")
}

// CreateSection creates a section
// @Summary Create section
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SectionRequest true "Section"
// @Success 201 {object} dto.APIResponse{data=models.Section}
// @Failure 404 {object} dto.ErrorResponse "Course, session, batch or faculty member not found"
// @Failure 409 {object} dto.ErrorResponse "Section already exists"
// @Router /sections [post]
func (c *SectionController) CreateSection(ctx *gin.Context) {
	var req dto.SectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.sectionService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, section, "Section created successfully")
}

// UpdateSection updates a section
// @Summary Update section
// @Description Capacity may not drop below the current enrollment
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param request body dto.SectionRequest true "Section"
// @Success 200 {object} dto.APIResponse{data=models.Section}
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 409 {object} dto.ErrorResponse "Capacity below enrollment or duplicate section"
// @Router /sections/{id} [put]
func (c *SectionController) UpdateSection(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.SectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	section, err := c.sectionService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, section, "Section updated successfully")
}

// DeleteSection deletes a section
// @Summary Delete section
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id} [delete]
func (c *SectionController) DeleteSection(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.sectionService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Section deleted successfully")
}

// EnrollStudents enrolls students into a section
// @Summary Enroll students
// @Description Already enrolled students are skipped. Fails with 409 when the new enrollments exceed capacity.
// @Tags sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param request body dto.EnrollStudentsRequest true "Student IDs"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResult}
// @Failure 404 {object} dto.ErrorResponse "Section or student not found"
// @Failure 409 {object} dto.ErrorResponse "Section capacity exceeded"
// @Router /sections/{id}/students [post]
func (c *SectionController) EnrollStudents(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.EnrollStudentsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	result, err := c.sectionService.Enroll(ctx.Request.Context(), id, req.StudentIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, result, "Students enrolled")
}

// EnrollBatch enrolls every active student of the section's batch
// @Summary Enroll section batch
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResult}
// @Failure 400 {object} dto.ErrorResponse "Section has no batch"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 409 {object} dto.ErrorResponse "Section capacity exceeded"
// @Router /sections/{id}/enroll-batch [post]
func (c *SectionController) EnrollBatch(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	result, err := c.sectionService.EnrollBatch(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, result, "Batch enrolled")
}

// UnenrollStudent removes a student from a section
// @Summary Unenroll student
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Student is not enrolled"
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id}/students/{studentId} [delete]
func (c *SectionController) UnenrollStudent(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	studentID, valid := middleware.ParamID(ctx, "studentId")
	if !valid {
		return
	}

	if err := c.sectionService.Unenroll(ctx.Request.Context(), id, studentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Student unenrolled")
}

// Roster lists a section's students
// @Summary Section roster
// @Tags sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} dto.APIResponse{data=[]models.SectionStudent}
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Router /sections/{id}/students [get]
func (c *SectionController) Roster(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	roster, err := c.sectionService.Roster(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, roster, "")
}
