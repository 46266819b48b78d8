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

// StudentController handles students
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// ListStudents lists students
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param programId query int false "Program ID"
// @Param batchId query int false "Batch ID"
// @Param status query string false "ACTIVE, INACTIVE, SUSPENDED or GRADUATED"
// @Param search query string false "Name, email or registration number contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Student}}
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	students, err := c.studentService.List(ctx.Request.Context(), repositories.StudentFilter{
		DepartmentID: helpers.QueryInt64(ctx, "departmentId"),
		ProgramID:    helpers.QueryInt64(ctx, "programId"),
		BatchID:      helpers.QueryInt64(ctx, "batchId"),
		Status:       helpers.QueryString(ctx, "status"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, students, "")
}

// GetStudent returns one student
// @Summary Get student
// @Description Students may only read their own record
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 403 {object} dto.ErrorResponse "Another student's record"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	student, err := c.studentService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, student, "")
}

// CreateStudent creates a student and their login
// @Summary Create student
// @Description Creates the user account with the STUDENT role and the student record in one transaction. The batch must belong to the program and the program to the department.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Batch, program and department do not match"
// @Failure 404 {object} dto.ErrorResponse "Program or batch not found"
// @Failure 409 {object} dto.ErrorResponse "Email or registration number already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, student, "Student created successfully")
}

// UpdateStudent updates a student
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Student"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Batch, program and department do not match"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Registration number already exists"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, student, "Student updated successfully")
}

// UpdateStudentStatus changes a student's status
// @Summary Change student status
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/status [patch]
func (c *StudentController) UpdateStudentStatus(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.StudentStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateStatus(ctx.Request.Context(), id, models.StudentStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, student, "Student status updated")
}

// DeleteStudent removes a student and their login
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Student deleted successfully")
}

// StudentSections lists the sections a student is enrolled in
// @Summary Student sections
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param sessionId query int false "Academic session ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Section}
// @Failure 403 {object} dto.ErrorResponse "Another student's record"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/sections [get]
func (c *StudentController) StudentSections(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	sections, err := c.studentService.Sections(ctx.Request.Context(), id, helpers.QueryInt64(ctx, "sessionId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, sections, "")
}
