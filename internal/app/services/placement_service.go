package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// PlacementService is the student side of placements
type PlacementService interface {
	ListOpenJobs(ctx context.Context) ([]models.JobListing, error)
	GetJobDetail(ctx context.Context, jobID int64, viewer *auth.Actor) (*dto.JobDetailResponse, error)
	Apply(ctx context.Context, actor auth.Actor, jobID int64, req *dto.ApplyRequest) (*models.PlacementApplication, error)
	Withdraw(ctx context.Context, actor auth.Actor, applicationID int64) (*models.PlacementApplication, error)
	MyApplications(ctx context.Context, actor auth.Actor) ([]models.ApplicationDetail, error)
	UploadResume(ctx context.Context, actor auth.Actor, upload *filestorage.Upload) (string, error)
}

type placementServiceImpl struct {
	companies    CompanyStore
	jobs         JobStore
	applications ApplicationStore
	users        UserStore
	blobs        filestorage.BlobStore
	recorder     TransitionRecorder
	clock        helpers.Clock
	logger       zerolog.Logger
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(
	companies CompanyStore,
	jobs JobStore,
	applications ApplicationStore,
	users UserStore,
	blobs filestorage.BlobStore,
	recorder TransitionRecorder,
	clock helpers.Clock,
	logger zerolog.Logger,
) PlacementService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &placementServiceImpl{
		companies:    companies,
		jobs:         jobs,
		applications: applications,
		users:        users,
		blobs:        blobs,
		recorder:     recorder,
		clock:        clock,
		logger:       logger,
	}
}

// ListOpenJobs returns open postings, earliest deadline first
func (s *placementServiceImpl) ListOpenJobs(ctx context.Context) ([]models.JobListing, error) {
	return s.jobs.ListOpen(ctx)
}

// GetJobDetail returns a posting with the viewer's application state. Drafts
// are hidden from everyone but the placement cell.
func (s *placementServiceImpl) GetJobDetail(ctx context.Context, jobID int64, viewer *auth.Actor) (*dto.JobDetailResponse, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusDraft && (viewer == nil || !viewer.IsPlacementManager()) {
		return nil, apperrors.NewResourceNotFoundError("job not found")
	}

	company, err := s.companies.GetByID(ctx, job.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	now := s.clock()
	resp := &dto.JobDetailResponse{
		Job:          *job,
		Company:      *company,
		DeadlinePast: job.Deadline != nil && !now.Before(*job.Deadline),
	}

	if viewer == nil || viewer.UserID <= 0 {
		return resp, nil
	}

	if resp.MyApplication, err = s.applications.FindForUser(ctx, jobID, viewer.UserID); err != nil {
		return nil, fmt.Errorf("failed to check application: %w", err)
	}
	resp.CanApply = models.CanApply(job, resp.MyApplication != nil, now)

	profile, err := s.users.GetProfileByUserID(ctx, viewer.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	eligibility := models.CheckEligibility(job, profile)
	resp.Eligibility = &eligibility
	return resp, nil
}

// Apply creates an application. Eligibility is shown to the student but not enforced.
func (s *placementServiceImpl) Apply(ctx context.Context, actor auth.Actor, jobID int64, req *dto.ApplyRequest) (*models.PlacementApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status == models.JobStatusDraft {
		return nil, apperrors.NewResourceNotFoundError("job not found")
	}

	existing, err := s.applications.FindForUser(ctx, jobID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check application: %w", err)
	}
	if existing != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "already applied to this job")
	}
	if !models.CanApply(job, false, s.clock()) {
		if job.Status != models.JobStatusOpen {
			return nil, apperrors.NewConflictError("job is not accepting applications")
		}
		return nil, apperrors.NewConflictError("application deadline has passed")
	}

	app, err := s.applications.Create(ctx, map[string]interface{}{
		"job_id":       jobID,
		"user_id":      actor.UserID,
		"resume_url":   req.ResumeURL,
		"cover_letter": req.CoverLetter,
		"status":       string(models.ApplicationStatusPending),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("jobID", jobID).Int64("userID", actor.UserID).Msg("Application submitted")
	return app, nil
}

// Withdraw moves the actor's own application to withdrawn
func (s *placementServiceImpl) Withdraw(ctx context.Context, actor auth.Actor, applicationID int64) (*models.PlacementApplication, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != actor.UserID {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	if app.Status == models.ApplicationStatusWithdrawn {
		return app, nil
	}
	if err := models.ValidateApplicationTransition(app.Status, models.ApplicationStatusWithdrawn); err != nil {
		return nil, err
	}

	updated, err := s.applications.UpdateStatus(ctx, applicationID, app.Status, models.ApplicationStatusWithdrawn)
	if err != nil {
		return nil, err
	}
	s.recorder.ObserveTransition("application", string(models.ApplicationStatusWithdrawn))
	return updated, nil
}

// MyApplications lists the actor's applications with job and company
func (s *placementServiceImpl) MyApplications(ctx context.Context, actor auth.Actor) ([]models.ApplicationDetail, error) {
	return s.applications.ListByUser(ctx, actor.UserID)
}

// UploadResume stores a PDF resume and returns its URL for use in an application.
func (s *placementServiceImpl) UploadResume(ctx context.Context, actor auth.Actor, upload *filestorage.Upload) (string, error) {
	if err := upload.RequirePDF(); err != nil {
		return "", apperrors.NewValidationError(err.Error())
	}
	url, err := s.blobs.Upload(ctx, filestorage.BucketResumes, filestorage.DocumentPath(actor.UserID, upload.Name, s.clock()), upload.Data)
	if err != nil {
		return "", fmt.Errorf("failed to store resume: %w", err)
	}
	return url, nil
}
