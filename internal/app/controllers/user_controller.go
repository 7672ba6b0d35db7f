package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// UserController handles super admin user and role management
type UserController struct {
	userAdminService services.UserAdminService
}

// NewUserController creates a new UserController
func NewUserController(userAdminService services.UserAdminService) *UserController {
	return &UserController{userAdminService: userAdminService}
}

// GetUsersByFilter godoc
// @Summary List users with their roles
// @Tags super-admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or e-mail (partial match)"
// @Param role query string false "Filter by role"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param size query int false "Page size (max 100)" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse} "Users retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Unknown role"
// @Failure 403 {object} dto.ErrorResponse "Super admin access required"
// @Router /super-admin/users [get]
func (c *UserController) GetUsersByFilter(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	var filter dto.UserFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}
	page := helpers.ParsePaginationParams(ctx)

	users, err := c.userAdminService.ListUsers(ctx.Request.Context(), actor, filter, page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, users, "")
}

// AddRole godoc
// @Summary Grant a role
// @Description Adding a role the user already holds changes nothing
// @Tags super-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.RoleChangeRequest true "Role"
// @Success 200 {object} dto.APIResponse{data=[]models.Role} "Roles after the change"
// @Router /super-admin/users/{id}/roles [post]
func (c *UserController) AddRole(ctx *gin.Context) {
	c.changeRole(ctx, false)
}

// RemoveRole godoc
// @Summary Revoke a role
// @Description Removing a role the user does not hold changes nothing
// @Tags super-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param role path string true "Role"
// @Success 200 {object} dto.APIResponse{data=[]models.Role} "Roles after the change"
// @Router /super-admin/users/{id}/roles/{role} [delete]
func (c *UserController) RemoveRole(ctx *gin.Context) {
	c.changeRole(ctx, true)
}

func (c *UserController) changeRole(ctx *gin.Context, remove bool) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var (
		roles []models.Role
		err   error
	)
	if remove {
		roles, err = c.userAdminService.RemoveRole(ctx.Request.Context(), actor, userID, models.Role(ctx.Param("role")))
	} else {
		var req dto.RoleChangeRequest
		if !middleware.BindAndValidate(ctx, &req) {
			return
		}
		roles, err = c.userAdminService.AddRole(ctx.Request.Context(), actor, userID, req.Role)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, roles, "Roles updated")
}

// GetStats godoc
// @Summary System statistics
// @Tags super-admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SystemStats}
// @Router /super-admin/stats [get]
func (c *UserController) GetStats(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	stats, err := c.userAdminService.Stats(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats, "")
}
