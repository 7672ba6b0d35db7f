// Package services holds the use cases behind the API. Each service depends on
// the narrow store interfaces below rather than on concrete repositories.
package services

import (
	"context"
	"time"

	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/repositories"
)

// UserStore is the part of the user repository the services use.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateAccount(ctx context.Context, acc repositories.NewAccount) (*models.User, *models.Profile, error)
	UpdateLastLogin(ctx context.Context, userID int64) error
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, fields map[string]interface{}) (*models.Profile, error)
	ListUsers(ctx context.Context, f repositories.UserListFilter) ([]models.UserSummary, int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// RoleStore manages role assignments.
type RoleStore interface {
	ListUserRoles(ctx context.Context, userID int64) ([]models.UserRole, error)
	AddRole(ctx context.Context, userID int64, role models.Role) error
	RemoveRole(ctx context.Context, userID int64, role models.Role) error
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
}

// TokenStore keeps refresh tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// EventStore holds events and their sub-events.
type EventStore interface {
	ListPublic(ctx context.Context) ([]models.Event, error)
	List(ctx context.Context, f repositories.EventFilter) ([]models.Event, int64, error)
	ListCoordinatedBy(ctx context.Context, userID int64) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	Create(ctx context.Context, fields map[string]interface{}) (*models.Event, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.Event, error)
	UpdateFromStatus(ctx context.Context, id int64, fields map[string]interface{}, from models.EventStatus, expected *time.Time) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
	CountEvents(ctx context.Context) (int64, error)

	ListSubEvents(ctx context.Context, eventID int64) ([]models.SubEvent, error)
	GetSubEvent(ctx context.Context, id int64) (*models.SubEvent, error)
	CreateSubEvent(ctx context.Context, fields map[string]interface{}) (*models.SubEvent, error)
	UpdateSubEvent(ctx context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.SubEvent, error)
	DeleteSubEvent(ctx context.Context, id int64) error
	CountSubEvents(ctx context.Context) (int64, error)
}

// CoordinatorStore holds coordinator and participant rows.
type CoordinatorStore interface {
	ListCoordinators(ctx context.Context, eventID int64) ([]models.CoordinatorDetail, error)
	IsCoordinator(ctx context.Context, eventID, userID int64) (bool, error)
	AddCoordinator(ctx context.Context, eventID, userID int64) (*models.EventCoordinator, error)
	RemoveCoordinator(ctx context.Context, eventID, userID int64) error
	IsParticipant(ctx context.Context, eventID, userID int64) (bool, error)
	JoinEvent(ctx context.Context, eventID, userID int64) (*models.EventParticipant, error)
	LeaveEvent(ctx context.Context, eventID, userID int64) error
	ListParticipatingEventIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RegistrationStore holds sub-event registrations.
type RegistrationStore interface {
	GetByID(ctx context.Context, id int64) (*models.EventRegistration, error)
	FindForUser(ctx context.Context, subEventID, userID int64) (*models.EventRegistration, error)
	ListForUserInEvent(ctx context.Context, eventID, userID int64) ([]models.EventRegistration, error)
	CountActive(ctx context.Context, subEventID int64) (int64, error)
	CountActiveByEvent(ctx context.Context, eventID int64) (map[int64]int64, error)
	Register(ctx context.Context, reg repositories.NewRegistration) (*models.EventRegistration, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.RegistrationStatus) (*models.EventRegistration, error)
	ListBySubEvent(ctx context.Context, subEventID int64, status *models.RegistrationStatus) ([]models.Registrant, error)
	ListByUser(ctx context.Context, userID int64) ([]models.RegistrationDetail, error)
	CountRegistrations(ctx context.Context) (int64, error)
}

// ResultStore holds event results and gallery items.
type ResultStore interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.ResultDetail, error)
	ListBySubEvent(ctx context.Context, subEventID int64) ([]models.ResultDetail, error)
	GetResult(ctx context.Context, id int64) (*models.EventResult, error)
	CreateResult(ctx context.Context, fields map[string]interface{}) (*models.EventResult, error)
	DeleteResult(ctx context.Context, id int64) error
	ListGallery(ctx context.Context, eventID int64) ([]models.GalleryItem, error)
	GetGalleryItem(ctx context.Context, id int64) (*models.GalleryItem, error)
	CreateGalleryItem(ctx context.Context, fields map[string]interface{}) (*models.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id int64) error
}

// CompanyStore holds companies.
type CompanyStore interface {
	List(ctx context.Context, search string) ([]models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	Create(ctx context.Context, fields map[string]interface{}) (*models.Company, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
	CountCompanies(ctx context.Context) (int64, error)
}

// JobStore holds job postings.
type JobStore interface {
	ListOpen(ctx context.Context) ([]models.JobListing, error)
	List(ctx context.Context, f repositories.JobFilter) ([]models.JobListing, error)
	GetByID(ctx context.Context, id int64) (*models.JobPosting, error)
	Create(ctx context.Context, fields map[string]interface{}) (*models.JobPosting, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.JobPosting, error)
	UpdateFromStatus(ctx context.Context, id int64, fields map[string]interface{}, from models.JobStatus, expected *time.Time) (*models.JobPosting, error)
	Delete(ctx context.Context, id int64) error
	CountJobs(ctx context.Context) (int64, error)
}

// ApplicationStore holds placement applications.
type ApplicationStore interface {
	GetByID(ctx context.Context, id int64) (*models.PlacementApplication, error)
	FindForUser(ctx context.Context, jobID, userID int64) (*models.PlacementApplication, error)
	Create(ctx context.Context, fields map[string]interface{}) (*models.PlacementApplication, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) (*models.PlacementApplication, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ApplicationDetail, error)
	ListApplicants(ctx context.Context, f repositories.ApplicantFilter) ([]models.Applicant, error)
	CountApplications(ctx context.Context) (int64, error)
}

// PlacementResultStore holds offers.
type PlacementResultStore interface {
	List(ctx context.Context, jobID *int64) ([]models.PlacementResultDetail, error)
	GetByID(ctx context.Context, id int64) (*models.PlacementResult, error)
	Create(ctx context.Context, fields map[string]interface{}) (*models.PlacementResult, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*models.PlacementResult, error)
	Delete(ctx context.Context, id int64) error
	CountPlacements(ctx context.Context) (int64, error)
}

// TransitionRecorder counts accepted status writes.
type TransitionRecorder interface {
	ObserveTransition(entity, to string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveTransition(string, string) {}
