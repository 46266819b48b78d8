package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// SessionController handles academic sessions
type SessionController struct {
	sessionService services.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// ListSessions lists academic sessions
// @Summary List academic sessions
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param year query int false "Academic year"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AcademicSession}}
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	sessions, err := c.sessionService.List(ctx.Request.Context(), repositories.SessionFilter{
		Year: helpers.QueryInt64(ctx, "year"),
		Page: page,
		Size: size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, sessions, "")
}

// GetActiveSession returns the active session
// @Summary Get the active academic session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.AcademicSession}
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Router /sessions/active [get]
func (c *SessionController) GetActiveSession(ctx *gin.Context) {
	session, err := c.sessionService.GetActive(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, session, "")
}

// GetSession returns one session
// @Summary Get academic session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.AcademicSession}
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	session, err := c.sessionService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, session, "")
}

// CreateSession creates an academic session
// @Summary Create academic session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SessionRequest true "Session"
// @Success 201 {object} dto.APIResponse{data=models.AcademicSession}
// @Failure 400 {object} dto.ErrorResponse "Start date must be before end date"
// @Failure 409 {object} dto.ErrorResponse "Session already exists"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.SessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, session, "Session created successfully")
}

// UpdateSession updates an academic session
// @Summary Update academic session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body dto.SessionRequest true "Session"
// @Success 200 {object} dto.APIResponse{data=models.AcademicSession}
// @Failure 400 {object} dto.ErrorResponse "Start date must be before end date"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [put]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.SessionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, session, "Session updated successfully")
}

// ActivateSession makes a session the only active one
// @Summary Activate academic session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=models.AcademicSession}
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/activate [put]
func (c *SessionController) ActivateSession(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	session, err := c.sessionService.Activate(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, session, "Session activated")
}

// DeleteSession deletes an academic session
// @Summary Delete academic session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "The active session cannot be deleted"
// @Router /sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.sessionService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Session deleted successfully")
}
