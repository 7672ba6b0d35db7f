package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// PlacementAdminService is the placement cell's toolset
type PlacementAdminService interface {
	ListCompanies(ctx context.Context, actor auth.Actor, search string) ([]models.Company, error)
	GetCompany(ctx context.Context, actor auth.Actor, companyID int64) (*models.Company, error)
	CreateCompany(ctx context.Context, actor auth.Actor, req *dto.CompanyRequest) (*models.Company, error)
	UpdateCompany(ctx context.Context, actor auth.Actor, companyID int64, req *dto.CompanyRequest) (*models.Company, error)
	DeleteCompany(ctx context.Context, actor auth.Actor, companyID int64) error
	UploadLogo(ctx context.Context, actor auth.Actor, companyID int64, upload *filestorage.Upload) (*models.Company, error)

	ListJobs(ctx context.Context, actor auth.Actor, status string, companyID *int64) ([]models.JobListing, error)
	CreateJob(ctx context.Context, actor auth.Actor, req *dto.JobRequest) (*models.JobPosting, error)
	UpdateJob(ctx context.Context, actor auth.Actor, jobID int64, req *dto.JobRequest) (*models.JobPosting, error)
	DeleteJob(ctx context.Context, actor auth.Actor, jobID int64) error
	UploadJobDescription(ctx context.Context, actor auth.Actor, jobID int64, upload *filestorage.Upload) (*models.JobPosting, error)

	ListApplicants(ctx context.Context, actor auth.Actor, jobID *int64, status string) ([]dto.ApplicantStatusOptions, error)
	UpdateApplicationStatus(ctx context.Context, actor auth.Actor, applicationID int64, to models.ApplicationStatus) (*models.PlacementApplication, error)
	SelectedCandidates(ctx context.Context, actor auth.Actor, jobID int64) ([]models.Applicant, error)

	ListResults(ctx context.Context, actor auth.Actor, jobID *int64) ([]models.PlacementResultDetail, error)
	CreateResult(ctx context.Context, actor auth.Actor, jobID int64, req *dto.CreatePlacementResultRequest) (*models.PlacementResult, error)
	UpdateResult(ctx context.Context, actor auth.Actor, resultID int64, req *dto.UpdatePlacementResultRequest) (*models.PlacementResult, error)
	DeleteResult(ctx context.Context, actor auth.Actor, resultID int64) error
	UploadOfferLetter(ctx context.Context, actor auth.Actor, resultID int64, upload *filestorage.Upload) (*models.PlacementResult, error)
}

type placementAdminServiceImpl struct {
	companies    CompanyStore
	jobs         JobStore
	applications ApplicationStore
	results      PlacementResultStore
	blobs        filestorage.BlobStore
	notifier     Notifier
	recorder     TransitionRecorder
	clock        helpers.Clock
	logger       zerolog.Logger
}

// NewPlacementAdminService creates a new PlacementAdminService
func NewPlacementAdminService(
	companies CompanyStore,
	jobs JobStore,
	applications ApplicationStore,
	results PlacementResultStore,
	blobs filestorage.BlobStore,
	notifier Notifier,
	recorder TransitionRecorder,
	clock helpers.Clock,
	logger zerolog.Logger,
) PlacementAdminService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &placementAdminServiceImpl{
		companies:    companies,
		jobs:         jobs,
		applications: applications,
		results:      results,
		blobs:        blobs,
		notifier:     notifier,
		recorder:     recorder,
		clock:        clock,
		logger:       logger,
	}
}

// Companies

func (s *placementAdminServiceImpl) ListCompanies(ctx context.Context, actor auth.Actor, search string) ([]models.Company, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	return s.companies.List(ctx, strings.TrimSpace(search))
}

func (s *placementAdminServiceImpl) GetCompany(ctx context.Context, actor auth.Actor, companyID int64) (*models.Company, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	return s.companies.GetByID(ctx, companyID)
}

func companyFields(req *dto.CompanyRequest) (map[string]interface{}, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("company name is required")
	}
	fields := map[string]interface{}{"name": name}
	if req.Description != nil {
		fields["description"] = nullIfBlank(*req.Description)
	}
	if req.Website != nil {
		fields["website"] = nullIfBlank(*req.Website)
	}
	return fields, nil
}

func (s *placementAdminServiceImpl) CreateCompany(ctx context.Context, actor auth.Actor, req *dto.CompanyRequest) (*models.Company, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	fields, err := companyFields(req)
	if err != nil {
		return nil, err
	}
	return s.companies.Create(ctx, fields)
}

func (s *placementAdminServiceImpl) UpdateCompany(ctx context.Context, actor auth.Actor, companyID int64, req *dto.CompanyRequest) (*models.Company, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	fields, err := companyFields(req)
	if err != nil {
		return nil, err
	}
	return s.companies.Update(ctx, companyID, fields)
}

// DeleteCompany removes a company with its jobs, then its logo
func (s *placementAdminServiceImpl) DeleteCompany(ctx context.Context, actor auth.Actor, companyID int64) error {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return err
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return err
	}
	if err := s.companies.Delete(ctx, companyID); err != nil {
		return err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketCompanyLogos, company.LogoURL, s.logger)
	s.logger.Info().Int64("companyID", companyID).Msg("Company deleted")
	return nil
}

func (s *placementAdminServiceImpl) UploadLogo(ctx context.Context, actor auth.Actor, companyID int64, upload *filestorage.Upload) (*models.Company, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	if err := upload.RequireImage(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, filestorage.BucketCompanyLogos, filestorage.LogoPath(companyID, upload.Ext, s.clock()), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}
	updated, err := s.companies.Update(ctx, companyID, map[string]interface{}{"logo_url": url})
	if err != nil {
		removeBlob(ctx, s.blobs, filestorage.BucketCompanyLogos, &url, s.logger)
		return nil, err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketCompanyLogos, company.LogoURL, s.logger)
	return updated, nil
}

// Jobs

func (s *placementAdminServiceImpl) ListJobs(ctx context.Context, actor auth.Actor, status string, companyID *int64) ([]models.JobListing, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	f := repositories.JobFilter{CompanyID: companyID}
	if status != "" {
		st, err := models.ParseJobStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}
	return s.jobs.List(ctx, f)
}

var (
	cgpaRange    = validation.FloatRange{Min: 0, Max: 10}
	packageRange = validation.FloatRange{Min: 0, Max: 1e6}
)

// jobFields validates req and maps it to columns. Status is handled by the callers.
func (s *placementAdminServiceImpl) jobFields(ctx context.Context, req *dto.JobRequest) (map[string]interface{}, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("job title is required")
	}
	if !cgpaRange.Contains(req.MinCGPA) {
		return nil, apperrors.NewValidationError("minimum cgpa must be between 0 and 10")
	}
	if !packageRange.Contains(req.PackageLPA) {
		return nil, apperrors.NewValidationError("package cannot be negative")
	}
	for _, y := range req.EligibleYears {
		if y < 1 {
			return nil, apperrors.NewValidationError("eligible years must be positive")
		}
	}
	if _, err := s.companies.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewValidationError("company does not exist")
		}
		return nil, err
	}

	departments := make([]string, 0, len(req.EligibleDepartments))
	for _, d := range req.EligibleDepartments {
		if d = strings.TrimSpace(d); d != "" {
			departments = append(departments, d)
		}
	}
	years := req.EligibleYears
	if years == nil {
		years = []int32{}
	}

	return map[string]interface{}{
		"company_id":           req.CompanyID,
		"title":                title,
		"description":          req.Description,
		"min_cgpa":             req.MinCGPA,
		"eligible_departments": departments,
		"eligible_years":       years,
		"package_lpa":          req.PackageLPA,
		"deadline":             req.Deadline,
	}, nil
}

// CreateJob posts a job. Without a status it starts as a draft.
func (s *placementAdminServiceImpl) CreateJob(ctx context.Context, actor auth.Actor, req *dto.JobRequest) (*models.JobPosting, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	fields, err := s.jobFields(ctx, req)
	if err != nil {
		return nil, err
	}

	status := models.JobStatusDraft
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.NewCustomError(apperrors.ErrUnknownStatus, "unknown job status: "+string(*req.Status))
		}
		if err := models.ValidateNewJobStatus(*req.Status); err != nil {
			return nil, err
		}
		status = *req.Status
	}
	fields["status"] = string(status)
	fields["created_by"] = actor.UserID

	job, err := s.jobs.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("jobID", job.ID).Int64("companyID", job.CompanyID).Msg("Job posted")
	return job, nil
}

// UpdateJob replaces a job's fields. ExpectedUpdatedAt guards against
// overwriting a concurrent edit; a status change must follow the job graph.
func (s *placementAdminServiceImpl) UpdateJob(ctx context.Context, actor auth.Actor, jobID int64, req *dto.JobRequest) (*models.JobPosting, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	current, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	fields, err := s.jobFields(ctx, req)
	if err != nil {
		return nil, err
	}

	var next *models.JobStatus
	if req.Status != nil && *req.Status != current.Status {
		if err := models.ValidateJobTransition(current.Status, *req.Status); err != nil {
			return nil, err
		}
		next = req.Status
	}

	if next == nil {
		return s.jobs.Update(ctx, jobID, fields, req.ExpectedUpdatedAt)
	}

	fields["status"] = string(*next)
	updated, err := s.jobs.UpdateFromStatus(ctx, jobID, fields, current.Status, req.ExpectedUpdatedAt)
	if err != nil {
		return nil, err
	}
	s.recorder.ObserveTransition("job", string(*next))
	s.logger.Info().
		Int64("jobID", jobID).
		Str("from", string(current.Status)).
		Str("to", string(*next)).
		Msg("Job status changed")
	return updated, nil
}

func (s *placementAdminServiceImpl) DeleteJob(ctx context.Context, actor auth.Actor, jobID int64) error {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketJobDescriptions, job.JDFileURL, s.logger)
	return nil
}

// UploadJobDescription attaches a PDF job description
func (s *placementAdminServiceImpl) UploadJobDescription(ctx context.Context, actor auth.Actor, jobID int64, upload *filestorage.Upload) (*models.JobPosting, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	if err := upload.RequirePDF(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, filestorage.BucketJobDescriptions, filestorage.DocumentPath(jobID, upload.Name, s.clock()), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store job description: %w", err)
	}
	updated, err := s.jobs.Update(ctx, jobID, map[string]interface{}{"jd_file_url": url}, nil)
	if err != nil {
		removeBlob(ctx, s.blobs, filestorage.BucketJobDescriptions, &url, s.logger)
		return nil, err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketJobDescriptions, job.JDFileURL, s.logger)
	return updated, nil
}

// Applications

// ListApplicants lists applications, for one job or all, with their next statuses
func (s *placementAdminServiceImpl) ListApplicants(ctx context.Context, actor auth.Actor, jobID *int64, status string) ([]dto.ApplicantStatusOptions, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	f := repositories.ApplicantFilter{JobID: jobID}
	if status != "" {
		st, err := models.ParseApplicationStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}

	rows, err := s.applications.ListApplicants(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ApplicantStatusOptions, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ApplicantStatusOptions{
			Applicant:    r,
			NextStatuses: models.NextApplicationStatuses(r.Status),
		})
	}
	return out, nil
}

// UpdateApplicationStatus moves an application along the application graph
// and notifies the applicant. Writing the current status is a no-op.
func (s *placementAdminServiceImpl) UpdateApplicationStatus(ctx context.Context, actor auth.Actor, applicationID int64, to models.ApplicationStatus) (*models.PlacementApplication, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, apperrors.NewCustomError(apperrors.ErrUnknownStatus, "unknown application status: "+string(to))
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == to {
		return app, nil
	}
	if err := models.ValidateApplicationTransition(app.Status, to); err != nil {
		return nil, err
	}

	updated, err := s.applications.UpdateStatus(ctx, applicationID, app.Status, to)
	if err != nil {
		return nil, err
	}
	s.recorder.ObserveTransition("application", string(to))

	s.logger.Info().
		Int64("applicationID", applicationID).
		Int64("actorID", actor.UserID).
		Str("from", string(app.Status)).
		Str("to", string(to)).
		Msg("Application status changed")

	if s.notifier != nil {
		title := "Your application was updated"
		if job, err := s.jobs.GetByID(ctx, app.JobID); err == nil {
			title = fmt.Sprintf("Application %s: %s", to, job.Title)
		}
		s.notifier.Notify(ctx, Notification{
			UserID: updated.UserID,
			Kind:   NotifyApplicationStatus,
			Title:  title,
			Body:   fmt.Sprintf("Your application status is now %s.", to),
			Link:   "/my-applications",
			Data:   map[string]interface{}{"applicationId": updated.ID, "jobId": updated.JobID, "status": to},
		})
	}
	return updated, nil
}

// SelectedCandidates lists the applicants of a job in the selected state
func (s *placementAdminServiceImpl) SelectedCandidates(ctx context.Context, actor auth.Actor, jobID int64) ([]models.Applicant, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	selected := models.ApplicationStatusSelected
	return s.applications.ListApplicants(ctx, repositories.ApplicantFilter{JobID: &jobID, Status: &selected})
}

// Placement results

func (s *placementAdminServiceImpl) ListResults(ctx context.Context, actor auth.Actor, jobID *int64) ([]models.PlacementResultDetail, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	return s.results.List(ctx, jobID)
}

// CreateResult records an offer. The candidate's application to the job must be selected.
func (s *placementAdminServiceImpl) CreateResult(ctx context.Context, actor auth.Actor, jobID int64, req *dto.CreatePlacementResultRequest) (*models.PlacementResult, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	if !packageRange.Contains(req.PackageOffered) {
		return nil, apperrors.NewValidationError("package cannot be negative")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	app, err := s.applications.FindForUser(ctx, jobID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check application: %w", err)
	}
	if app == nil || app.Status != models.ApplicationStatusSelected {
		return nil, apperrors.NewConflictError("a placement result needs a selected application for this job")
	}

	result, err := s.results.Create(ctx, map[string]interface{}{
		"job_id":          jobID,
		"user_id":         req.UserID,
		"package_offered": req.PackageOffered,
		"joined":          req.Joined,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("jobID", jobID).Int64("userID", req.UserID).Msg("Placement result recorded")
	if s.notifier != nil {
		s.notifier.Notify(ctx, Notification{
			UserID: req.UserID,
			Kind:   NotifyPlacementResult,
			Title:  "Congratulations! You have an offer: " + job.Title,
			Body:   fmt.Sprintf("An offer for %s has been recorded on your account.", job.Title),
			Link:   "/my-applications",
			Data:   map[string]interface{}{"resultId": result.ID, "jobId": jobID},
		})
	}
	return result, nil
}

func (s *placementAdminServiceImpl) UpdateResult(ctx context.Context, actor auth.Actor, resultID int64, req *dto.UpdatePlacementResultRequest) (*models.PlacementResult, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	if !packageRange.Contains(req.PackageOffered) {
		return nil, apperrors.NewValidationError("package cannot be negative")
	}

	fields := make(map[string]interface{})
	if req.Joined != nil {
		fields["joined"] = *req.Joined
	}
	if req.PackageOffered != nil {
		fields["package_offered"] = *req.PackageOffered
	}
	if len(fields) == 0 {
		return s.results.GetByID(ctx, resultID)
	}
	return s.results.Update(ctx, resultID, fields)
}

func (s *placementAdminServiceImpl) DeleteResult(ctx context.Context, actor auth.Actor, resultID int64) error {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return err
	}
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return err
	}
	if err := s.results.Delete(ctx, resultID); err != nil {
		return err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketOfferLetters, result.OfferLetterURL, s.logger)
	return nil
}

// UploadOfferLetter attaches a PDF offer letter to a result
func (s *placementAdminServiceImpl) UploadOfferLetter(ctx context.Context, actor auth.Actor, resultID int64, upload *filestorage.Upload) (*models.PlacementResult, error) {
	if err := auth.RequirePlacementManager(actor); err != nil {
		return nil, err
	}
	if err := upload.RequirePDF(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, filestorage.BucketOfferLetters, filestorage.DocumentPath(result.UserID, upload.Name, s.clock()), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store offer letter: %w", err)
	}
	updated, err := s.results.Update(ctx, resultID, map[string]interface{}{"offer_letter_url": url})
	if err != nil {
		removeBlob(ctx, s.blobs, filestorage.BucketOfferLetters, &url, s.logger)
		return nil, err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketOfferLetters, result.OfferLetterURL, s.logger)
	return updated, nil
}
