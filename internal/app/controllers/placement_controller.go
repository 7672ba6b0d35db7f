package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// PlacementController handles the student side of placements
type PlacementController struct {
	placementService services.PlacementService
}

// NewPlacementController creates a new PlacementController
func NewPlacementController(placementService services.PlacementService) *PlacementController {
	return &PlacementController{placementService: placementService}
}

// ListOpenJobs godoc
// @Summary List open jobs
// @Description Open postings with their company, ordered by deadline
// @Tags placements
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.JobListing}
// @Router /placements [get]
func (c *PlacementController) ListOpenJobs(ctx *gin.Context) {
	jobs, err := c.placementService.ListOpenJobs(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, jobs, "")
}

// GetJobDetail godoc
// @Summary Job detail
// @Description Signed-in callers also get their application, eligibility and whether they can apply
// @Tags placements
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=dto.JobDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Job not found"
// @Router /placements/{id} [get]
func (c *PlacementController) GetJobDetail(ctx *gin.Context) {
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.placementService.GetJobDetail(ctx.Request.Context(), jobID, middleware.OptionalActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, detail, "")
}

// Apply godoc
// @Summary Apply to a job
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.ApplyRequest false "Resume URL and cover letter"
// @Success 201 {object} dto.APIResponse{data=models.PlacementApplication}
// @Failure 409 {object} dto.ErrorResponse "Already applied, job closed or deadline passed"
// @Router /placements/{id}/apply [post]
func (c *PlacementController) Apply(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ApplyRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindAndValidate(ctx, &req) {
		return
	}

	app, err := c.placementService.Apply(ctx.Request.Context(), actor, jobID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, app, "Application submitted")
}

// Withdraw godoc
// @Summary Withdraw an application
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.PlacementApplication}
// @Failure 409 {object} dto.ErrorResponse "Application can no longer be withdrawn"
// @Router /me/applications/{id}/withdraw [post]
func (c *PlacementController) Withdraw(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	app, err := c.placementService.Withdraw(ctx.Request.Context(), actor, applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app, "Application withdrawn")
}

// MyApplications godoc
// @Summary My applications
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ApplicationDetail}
// @Router /me/applications [get]
func (c *PlacementController) MyApplications(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	apps, err := c.placementService.MyApplications(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, apps, "")
}

// UploadResume godoc
// @Summary Upload a resume
// @Description Stores a PDF and returns the URL to send with an application
// @Tags student
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "PDF"
// @Success 201 {object} dto.APIResponse
// @Router /me/resume [post]
func (c *PlacementController) UploadResume(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "resume", filestorage.MaxDocumentSize)
	if !ok {
		return
	}

	url, err := c.placementService.UploadResume(ctx.Request.Context(), actor, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, gin.H{"resumeUrl": url}, "Resume uploaded")
}
