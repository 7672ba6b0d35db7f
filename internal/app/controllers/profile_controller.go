package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// ProfileController handles the caller's own profile
type ProfileController struct {
	profileService services.ProfileService
	logger         zerolog.Logger
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService, logger zerolog.Logger) *ProfileController {
	return &ProfileController{profileService: profileService, logger: logger}
}

// GetProfile godoc
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Profile}
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.GetProfile(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "")
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Profile}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /profile [put]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	profile, err := c.profileService.UpdateProfile(ctx.Request.Context(), actor.UserID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.refreshSession(ctx)
	respond(ctx, http.StatusOK, profile, "Profile updated")
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Description Replaces the caller's avatar. JPEG, PNG, GIF or WebP up to 5 MB.
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image"
// @Success 200 {object} dto.APIResponse{data=models.Profile}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or non-image file"
// @Router /profile/avatar [post]
func (c *ProfileController) UploadAvatar(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "avatar", filestorage.MaxImageSize)
	if !ok {
		return
	}

	profile, err := c.profileService.UploadAvatar(ctx.Request.Context(), actor.UserID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.refreshSession(ctx)
	respond(ctx, http.StatusOK, profile, "Avatar updated")
}

// refreshSession reloads the request session so later middleware sees the new profile.
func (c *ProfileController) refreshSession(ctx *gin.Context) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		return
	}
	if err := session.Refresh(ctx.Request.Context()); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to refresh session after profile change")
	}
}
