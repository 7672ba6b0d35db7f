package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// PlacementAdminController handles companies, jobs, applicants and results for the placement cell
type PlacementAdminController struct {
	adminService services.PlacementAdminService
}

// NewPlacementAdminController creates a new PlacementAdminController
func NewPlacementAdminController(adminService services.PlacementAdminService) *PlacementAdminController {
	return &PlacementAdminController{adminService: adminService}
}

// ListCompanies godoc
// @Summary List companies
// @Tags placement-admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name"
// @Success 200 {object} dto.APIResponse{data=[]models.Company}
// @Router /placement-admin/companies [get]
func (c *PlacementAdminController) ListCompanies(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	companies, err := c.adminService.ListCompanies(ctx.Request.Context(), actor, ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, companies, "")
}

// GetCompany godoc
// @Summary Get a company
// @Tags placement-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Router /placement-admin/companies/{id} [get]
func (c *PlacementAdminController) GetCompany(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	company, err := c.adminService.GetCompany(ctx.Request.Context(), actor, companyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company, "")
}

// CreateCompany godoc
// @Summary Create a company
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompanyRequest true "Company"
// @Success 201 {object} dto.APIResponse{data=models.Company}
// @Router /placement-admin/companies [post]
func (c *PlacementAdminController) CreateCompany(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	company, err := c.adminService.CreateCompany(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, company, "Company created")
}

// UpdateCompany godoc
// @Summary Update a company
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param request body dto.CompanyRequest true "Company"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Router /placement-admin/companies/{id} [put]
func (c *PlacementAdminController) UpdateCompany(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	company, err := c.adminService.UpdateCompany(ctx.Request.Context(), actor, companyID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company, "Company updated")
}

// DeleteCompany godoc
// @Summary Delete a company
// @Tags placement-admin
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Success 200 {object} dto.APIResponse
// @Router /placement-admin/companies/{id} [delete]
func (c *PlacementAdminController) DeleteCompany(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteCompany(ctx.Request.Context(), actor, companyID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Company deleted")
}

// UploadLogo godoc
// @Summary Upload a company logo
// @Tags placement-admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company ID"
// @Param logo formData file true "Image"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Router /placement-admin/companies/{id}/logo [post]
func (c *PlacementAdminController) UploadLogo(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	companyID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "logo", filestorage.MaxImageSize)
	if !ok {
		return
	}

	company, err := c.adminService.UploadLogo(ctx.Request.Context(), actor, companyID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company, "Logo uploaded")
}

// ListJobs godoc
// @Summary List jobs
// @Tags placement-admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param companyId query int false "Filter by company"
// @Success 200 {object} dto.APIResponse{data=[]models.JobListing}
// @Router /placement-admin/jobs [get]
func (c *PlacementAdminController) ListJobs(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	companyID, ok := optionalIDQuery(ctx, "companyId")
	if !ok {
		return
	}

	jobs, err := c.adminService.ListJobs(ctx.Request.Context(), actor, ctx.Query("status"), companyID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, jobs, "")
}

// CreateJob godoc
// @Summary Create a job posting
// @Description New postings start as draft unless a status is given
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.JobRequest true "Job"
// @Success 201 {object} dto.APIResponse{data=models.JobPosting}
// @Router /placement-admin/jobs [post]
func (c *PlacementAdminController) CreateJob(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.JobRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	job, err := c.adminService.CreateJob(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, job, "Job created")
}

// UpdateJob godoc
// @Summary Update a job posting
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.JobRequest true "Job"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting}
// @Failure 409 {object} dto.ErrorResponse "Modified concurrently or illegal status change"
// @Router /placement-admin/jobs/{id} [put]
func (c *PlacementAdminController) UpdateJob(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.JobRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	job, err := c.adminService.UpdateJob(ctx.Request.Context(), actor, jobID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, job, "Job updated")
}

// DeleteJob godoc
// @Summary Delete a job posting
// @Tags placement-admin
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse
// @Router /placement-admin/jobs/{id} [delete]
func (c *PlacementAdminController) DeleteJob(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteJob(ctx.Request.Context(), actor, jobID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Job deleted")
}

// UploadJobDescription godoc
// @Summary Upload a job description
// @Tags placement-admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param document formData file true "PDF"
// @Success 200 {object} dto.APIResponse{data=models.JobPosting}
// @Router /placement-admin/jobs/{id}/description [post]
func (c *PlacementAdminController) UploadJobDescription(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "document", filestorage.MaxDocumentSize)
	if !ok {
		return
	}

	job, err := c.adminService.UploadJobDescription(ctx.Request.Context(), actor, jobID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, job, "Description uploaded")
}

// ListApplicants godoc
// @Summary List applicants
// @Description Applications of one job or of all jobs, each with the statuses it may move to
// @Tags placement-admin
// @Produce json
// @Security BearerAuth
// @Param jobId query int false "Filter by job"
// @Param status query string false "Filter by status"
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicantStatusOptions}
// @Router /placement-admin/applications [get]
func (c *PlacementAdminController) ListApplicants(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := optionalIDQuery(ctx, "jobId")
	if !ok {
		return
	}

	applicants, err := c.adminService.ListApplicants(ctx.Request.Context(), actor, jobID, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, applicants, "")
}

// UpdateApplicationStatus godoc
// @Summary Change an application's status
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.PlacementApplication}
// @Failure 409 {object} dto.ErrorResponse "Illegal status change"
// @Router /placement-admin/applications/{id}/status [patch]
func (c *PlacementAdminController) UpdateApplicationStatus(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	applicationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	app, err := c.adminService.UpdateApplicationStatus(ctx.Request.Context(), actor, applicationID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app, "Application updated")
}

// SelectedCandidates godoc
// @Summary Selected candidates of a job
// @Tags placement-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Applicant}
// @Router /placement-admin/jobs/{id}/selected [get]
func (c *PlacementAdminController) SelectedCandidates(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	candidates, err := c.adminService.SelectedCandidates(ctx.Request.Context(), actor, jobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, candidates, "")
}

// ListResults godoc
// @Summary List placement results
// @Tags placement-admin
// @Produce json
// @Security BearerAuth
// @Param jobId query int false "Filter by job"
// @Success 200 {object} dto.APIResponse{data=[]models.PlacementResultDetail}
// @Router /placement-admin/results [get]
func (c *PlacementAdminController) ListResults(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := optionalIDQuery(ctx, "jobId")
	if !ok {
		return
	}

	results, err := c.adminService.ListResults(ctx.Request.Context(), actor, jobID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, results, "")
}

// CreateResult godoc
// @Summary Record a placement result
// @Description The candidate's application to the job must be selected
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job ID"
// @Param request body dto.CreatePlacementResultRequest true "Result"
// @Success 201 {object} dto.APIResponse{data=models.PlacementResult}
// @Failure 409 {object} dto.ErrorResponse "Candidate not selected or result exists"
// @Router /placement-admin/jobs/{id}/results [post]
func (c *PlacementAdminController) CreateResult(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreatePlacementResultRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.adminService.CreateResult(ctx.Request.Context(), actor, jobID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, result, "Result recorded")
}

// UpdateResult godoc
// @Summary Update a placement result
// @Tags placement-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Result ID"
// @Param request body dto.UpdatePlacementResultRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.PlacementResult}
// @Router /placement-admin/results/{id} [patch]
func (c *PlacementAdminController) UpdateResult(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	resultID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdatePlacementResultRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	result, err := c.adminService.UpdateResult(ctx.Request.Context(), actor, resultID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result, "Result updated")
}

// DeleteResult godoc
// @Summary Delete a placement result
// @Tags placement-admin
// @Security BearerAuth
// @Param id path int true "Result ID"
// @Success 200 {object} dto.APIResponse
// @Router /placement-admin/results/{id} [delete]
func (c *PlacementAdminController) DeleteResult(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	resultID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.adminService.DeleteResult(ctx.Request.Context(), actor, resultID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Result deleted")
}

// UploadOfferLetter godoc
// @Summary Upload an offer letter
// @Tags placement-admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Result ID"
// @Param document formData file true "PDF"
// @Success 200 {object} dto.APIResponse{data=models.PlacementResult}
// @Router /placement-admin/results/{id}/offer-letter [post]
func (c *PlacementAdminController) UploadOfferLetter(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	resultID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "document", filestorage.MaxDocumentSize)
	if !ok {
		return
	}

	result, err := c.adminService.UploadOfferLetter(ctx.Request.Context(), actor, resultID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result, "Offer letter uploaded")
}
