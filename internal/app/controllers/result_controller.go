package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// ResultController handles event results and the gallery
type ResultController struct {
	resultService services.ResultService
}

// NewResultController creates a new ResultController
func NewResultController(resultService services.ResultService) *ResultController {
	return &ResultController{resultService: resultService}
}

// ListResults godoc
// @Summary Results of a managed event
// @Tags event-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ResultDetail}
// @Router /admin/events/{id}/results [get]
func (c *ResultController) ListResults(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	results, err := c.resultService.ListResults(ctx.Request.Context(), actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, results, "")
}

// CreateResult godoc
// @Summary Record a result
// @Tags event-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-event ID"
// @Param request body dto.CreateResultRequest true "Result"
// @Success 201 {object} dto.APIResponse{data=models.EventResult}
// @Router /admin/sub-events/{id}/results [post]
func (c *ResultController) CreateResult(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	subEventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateResultRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.resultService.CreateResult(ctx.Request.Context(), actor, subEventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, result, "Result recorded")
}

// DeleteResult godoc
// @Summary Delete a result
// @Tags event-admin
// @Security BearerAuth
// @Param id path int true "Result ID"
// @Success 200 {object} dto.APIResponse
// @Router /admin/results/{id} [delete]
func (c *ResultController) DeleteResult(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	resultID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.resultService.DeleteResult(ctx.Request.Context(), actor, resultID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Result deleted")
}

// ListGallery godoc
// @Summary Gallery of a managed event
// @Tags event-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.GalleryItem}
// @Router /admin/events/{id}/gallery [get]
func (c *ResultController) ListGallery(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	items, err := c.resultService.ListGallery(ctx.Request.Context(), actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, items, "")
}

// UploadGalleryImage godoc
// @Summary Upload a gallery image
// @Tags event-admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param image formData file true "Image"
// @Param subEventId formData int false "Sub-event the photo belongs to"
// @Param caption formData string false "Caption"
// @Success 201 {object} dto.APIResponse{data=models.GalleryItem}
// @Router /admin/events/{id}/gallery [post]
func (c *ResultController) UploadGalleryImage(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var subEventID *int64
	if raw := ctx.PostForm("subEventId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid subEventId").WithField("subEventId")
			ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		subEventID = &id
	}
	var caption *string
	if raw := strings.TrimSpace(ctx.PostForm("caption")); raw != "" {
		caption = &raw
	}

	upload, ok := readUpload(ctx, "image", filestorage.MaxImageSize)
	if !ok {
		return
	}

	item, err := c.resultService.UploadGalleryImage(ctx.Request.Context(), actor, eventID, subEventID, caption, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, item, "Image uploaded")
}

// DeleteGalleryImage godoc
// @Summary Delete a gallery image
// @Tags event-admin
// @Security BearerAuth
// @Param id path int true "Gallery item ID"
// @Success 200 {object} dto.APIResponse
// @Router /admin/gallery/{id} [delete]
func (c *ResultController) DeleteGalleryImage(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.resultService.DeleteGalleryImage(ctx.Request.Context(), actor, itemID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Image deleted")
}
