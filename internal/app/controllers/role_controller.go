package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/middleware"
)

// RoleController manages roles and their permissions
type RoleController struct {
	roleService services.RoleService
}

// NewRoleController creates a new RoleController
func NewRoleController(roleService services.RoleService) *RoleController {
	return &RoleController{roleService: roleService}
}

// ListRoles lists roles with their permissions
// @Summary List roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Role}
// @Router /roles [get]
func (c *RoleController) ListRoles(ctx *gin.Context) {
	roles, err := c.roleService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, roles, "")
}

// CreateRole creates a custom role
// @Summary Create role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRoleRequest true "Role"
// @Success 201 {object} dto.APIResponse{data=models.Role}
// @Failure 404 {object} dto.ErrorResponse "Permission not found"
// @Failure 409 {object} dto.ErrorResponse "Role already exists"
// @Router /roles [post]
func (c *RoleController) CreateRole(ctx *gin.Context) {
	var req dto.CreateRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	role, err := c.roleService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, role, "Role created successfully")
}

// SetPermissions replaces a role's permissions
// @Summary Set role permissions
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param request body dto.SetPermissionsRequest true "Permission IDs"
// @Success 200 {object} dto.APIResponse{data=models.Role}
// @Failure 404 {object} dto.ErrorResponse "Role or permission not found"
// @Failure 409 {object} dto.ErrorResponse "System role"
// @Router /roles/{id}/permissions [put]
func (c *RoleController) SetPermissions(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}
	var req dto.SetPermissionsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	role, err := c.roleService.SetPermissions(ctx.Request.Context(), id, req.PermissionIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, role, "Permissions updated")
}

// DeleteRole deletes a custom role
// @Summary Delete role
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Role not found"
// @Failure 409 {object} dto.ErrorResponse "System roles cannot be deleted"
// @Router /roles/{id} [delete]
func (c *RoleController) DeleteRole(ctx *gin.Context) {
	id, valid := middleware.ParamID(ctx, "id")
	if !valid {
		return
	}

	if err := c.roleService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, nil, "Role deleted successfully")
}

// ListPermissions lists every permission code
// @Summary List permissions
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Permission}
// @Router /permissions [get]
func (c *RoleController) ListPermissions(ctx *gin.Context) {
	perms, err := c.roleService.ListPermissions(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, perms, "")
}
