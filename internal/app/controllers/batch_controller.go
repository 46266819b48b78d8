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

// BatchController handles intake batches
type BatchController struct {
	batchService services.BatchService
}

// NewBatchController creates a new BatchController
func NewBatchController(batchService services.BatchService) *BatchController {
	return &BatchController{batchService: batchService}
}

// ListBatches lists batches
// @Summary List batches
// @Tags batches
// @Produce json
// @Security BearerAuth
// @Param programId query int false "Program ID"
// @Param status query string false "ACTIVE or GRADUATED"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Batch}}
// @Router /batches [get]
func (c *BatchController) ListBatches(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	batches, err := c.batchService.List(ctx.Request.Context(), repositories.BatchFilter{
		ProgramID: helpers.QueryInt64(ctx, "programId"),
		Status:    helpers.QueryString(ctx, "status"),
		Page:      page,
		Size:      size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, batches, "")
}

// GetBatch returns one batch
// @Summary Get batch
// @Tags batches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Success 200 {object} dto.APIResponse{data=models.Batch}
// @Failure 404 {object} dto.ErrorResponse "Batch not found"
// @Router /batches/{id} [get]
func (c *BatchController) GetBatch(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	batch, err := c.batchService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, batch, "")
}

// CreateBatch creates a batch
// @Summary Create batch
// @Description The intake year must fall between 1950 and next year
// @Tags batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BatchRequest true "Batch"
// @Success 201 {object} dto.APIResponse{data=models.Batch}
// @Failure 400 {object} dto.ErrorResponse "Invalid intake year"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 409 {object} dto.ErrorResponse "Batch already exists"
// @Router /batches [post]
func (c *BatchController) CreateBatch(ctx *gin.Context) {
	var req dto.BatchRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	batch, err := c.batchService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, batch, "Batch created successfully")
}

// UpdateBatch updates a batch
// @Summary Update batch
// @Tags batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Param request body dto.BatchRequest true "Batch"
// @Success 200 {object} dto.APIResponse{data=models.Batch}
// @Failure 400 {object} dto.ErrorResponse "Invalid intake year"
// @Failure 404 {object} dto.ErrorResponse "Batch or program not found"
// @Failure 409 {object} dto.ErrorResponse "Batch already exists"
// @Router /batches/{id} [put]
func (c *BatchController) UpdateBatch(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.BatchRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	batch, err := c.batchService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, batch, "Batch updated successfully")
}

// UpdateBatchStatus changes batch status
// @Summary Change batch status
// @Tags batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Param request body dto.BatchStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Batch}
// @Failure 404 {object} dto.ErrorResponse "Batch not found"
// @Router /batches/{id}/status [patch]
func (c *BatchController) UpdateBatchStatus(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.BatchStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	batch, err := c.batchService.UpdateStatus(ctx.Request.Context(), id, models.BatchStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, batch, "Batch status updated")
}

// DeleteBatch deletes a batch
// @Summary Delete batch
// @Tags batches
// @Produce json
// @Security BearerAuth
// @Param id path int true "Batch ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Batch not found"
// @Failure 409 {object} dto.ErrorResponse "Batch has students"
// @Router /batches/{id} [delete]
func (c *BatchController) DeleteBatch(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.batchService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Batch deleted successfully")
}
