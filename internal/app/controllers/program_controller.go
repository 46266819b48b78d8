package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// ProgramController handles degree programs and their learning outcomes
type ProgramController struct {
	programService services.ProgramService
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService services.ProgramService) *ProgramController {
	return &ProgramController{programService: programService}
}

// ListPrograms lists programs
// @Summary List programs
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param search query string false "Name or code contains"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Program}}
// @Router /programs [get]
func (c *ProgramController) ListPrograms(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	programs, err := c.programService.List(ctx.Request.Context(), repositories.ProgramFilter{
		DepartmentID: helpers.QueryInt64(ctx, "departmentId"),
		Search:       ctx.Query("search"),
		Page:         page,
		Size:         size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, programs, "")
}

// GetProgram returns one program
// @Summary Get program
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=models.Program}
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id} [get]
func (c *ProgramController) GetProgram(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	program, err := c.programService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, program, "")
}

// CreateProgram creates a program
// @Summary Create program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProgramRequest true "Program"
// @Success 201 {object} dto.APIResponse{data=models.Program}
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Program code already exists"
// @Router /programs [post]
func (c *ProgramController) CreateProgram(ctx *gin.Context) {
	var req dto.ProgramRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	program, err := c.programService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, program, "Program created successfully")
}

// UpdateProgram updates a program
// @Summary Update program
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param request body dto.ProgramRequest true "Program"
// @Success 200 {object} dto.APIResponse{data=models.Program}
// @Failure 404 {object} dto.ErrorResponse "Program or department not found"
// @Failure 409 {object} dto.ErrorResponse "Program code already exists"
// @Router /programs/{id} [put]
func (c *ProgramController) UpdateProgram(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.ProgramRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	program, err := c.programService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, program, "Program updated successfully")
}

// DeleteProgram deletes a program
// @Summary Delete program
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Program has batches or students"
// @Router /programs/{id} [delete]
func (c *ProgramController) DeleteProgram(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.programService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Program deleted successfully")
}

// ListPLOs lists a program's learning outcomes
// @Summary List program learning outcomes
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]models.PLO}
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /programs/{id}/plos [get]
func (c *ProgramController) ListPLOs(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	plos, err := c.programService.ListPLOs(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, plos, "")
}

// CreatePLO adds a learning outcome to a program
// @Summary Create program learning outcome
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Param request body dto.PLORequest true "Outcome"
// @Success 201 {object} dto.APIResponse{data=models.PLO}
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Outcome code already exists"
// @Router /programs/{id}/plos [post]
func (c *ProgramController) CreatePLO(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.PLORequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	plo, err := c.programService.CreatePLO(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, plo, "Learning outcome created successfully")
}

// UpdatePLO updates a program learning outcome
// @Summary Update program learning outcome
// @Tags programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "PLO ID"
// @Param request body dto.PLORequest true "Outcome"
// @Success 200 {object} dto.APIResponse{data=models.PLO}
// @Failure 404 {object} dto.ErrorResponse "Outcome not found"
// @Router /plos/{id} [put]
func (c *ProgramController) UpdatePLO(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.PLORequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	plo, err := c.programService.UpdatePLO(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, plo, "Learning outcome updated successfully")
}

// DeletePLO deletes a program learning outcome
// @Summary Delete program learning outcome
// @Tags programs
// @Produce json
// @Security BearerAuth
// @Param id path int true "PLO ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Outcome not found"
// @Router /plos/{id} [delete]
func (c *ProgramController) DeletePLO(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.programService.DeletePLO(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Learning outcome deleted successfully")
}
