package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/helpers"
)

// AuditController exposes the audit trail
type AuditController struct {
	auditService services.AuditService
}

// NewAuditController creates a new AuditController
func NewAuditController(auditService services.AuditService) *AuditController {
	return &AuditController{auditService: auditService}
}

// ListAuditLogs lists audit entries, newest first
// @Summary List audit logs
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Param actorId query int false "Acting user ID"
// @Param entity query string false "Entity name, e.g. student"
// @Param action query string false "Action, e.g. CREATE"
// @Param from query string false "From date YYYY-MM-DD"
// @Param to query string false "To date YYYY-MM-DD, inclusive"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AuditLog}}
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /audit-logs [get]
func (c *AuditController) ListAuditLogs(ctx *gin.Context) {
	from, valid := queryDate(ctx, "from")
	if !valid {
		return
	}
	to, valid := queryDate(ctx, "to")
	if !valid {
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	filter := repositories.AuditLogFilter{
		ActorID: helpers.QueryInt64(ctx, "actorId"),
		Entity:  helpers.QueryString(ctx, "entity"),
		Action:  helpers.QueryString(ctx, "action"),
		Page:    page,
		Size:    size,
	}
	if from != nil {
		start := from.Time
		filter.From = &start
	}
	if to != nil {
		end := to.Time.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	logs, err := c.auditService.List(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, logs, "")
}
