package dto

import (
	"time"

	"github.com/yigit/campushub/internal/app/models"
)

// CreateEventRequest represents a new top-level event
type CreateEventRequest struct {
	Name        string              `json:"name" binding:"required,max=200"`
	Slug        string              `json:"slug" binding:"required,slug,max=120"`
	Description *string             `json:"description,omitempty"`
	StartDate   *time.Time          `json:"startDate,omitempty"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	Status      *models.EventStatus `json:"status,omitempty"`
}

// UpdateEventRequest changes an event. ExpectedUpdatedAt, when given, must match the
// stored value or the write is rejected as a conflict.
type UpdateEventRequest struct {
	Name              *string             `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Slug              *string             `json:"slug,omitempty" binding:"omitempty,slug,max=120"`
	Description       *string             `json:"description,omitempty"`
	StartDate         *time.Time          `json:"startDate,omitempty"`
	EndDate           *time.Time          `json:"endDate,omitempty"`
	Status            *models.EventStatus `json:"status,omitempty"`
	ExpectedUpdatedAt *time.Time          `json:"expectedUpdatedAt,omitempty"`
}

// SubEventRequest creates or replaces an activity under an event
type SubEventRequest struct {
	Name                 string     `json:"name" binding:"required,max=200"`
	Description          *string    `json:"description,omitempty"`
	Venue                *string    `json:"venue,omitempty" binding:"omitempty,max=200"`
	Schedule             *time.Time `json:"schedule,omitempty"`
	Rules                *string    `json:"rules,omitempty"`
	MaxParticipants      *int32     `json:"maxParticipants,omitempty" binding:"omitempty,min=1"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	IsTeamEvent          bool       `json:"isTeamEvent"`
	TeamSizeMin          *int32     `json:"teamSizeMin,omitempty" binding:"omitempty,min=1"`
	TeamSizeMax          *int32     `json:"teamSizeMax,omitempty" binding:"omitempty,min=1"`
	ExpectedUpdatedAt    *time.Time `json:"expectedUpdatedAt,omitempty"`
}

// RegisterSubEventRequest is a student's sign-up for an activity
type RegisterSubEventRequest struct {
	TeamName    *string  `json:"teamName,omitempty" binding:"omitempty,max=120"`
	TeamMembers []string `json:"teamMembers,omitempty" binding:"omitempty,dive,required,max=120"`
}

// UpdateRegistrationStatusRequest moves a registration to a new status
type UpdateRegistrationStatusRequest struct {
	Status models.RegistrationStatus `json:"status" binding:"required"`
}

// CreateResultRequest records a placing
type CreateResultRequest struct {
	UserID   *int64  `json:"userId,omitempty" binding:"omitempty,min=1"`
	Position int32   `json:"position" binding:"required,min=1"`
	TeamName *string `json:"teamName,omitempty" binding:"omitempty,max=120"`
	Remarks  *string `json:"remarks,omitempty"`
}

// AddCoordinatorRequest assigns a coordinator to an event by user id or e-mail
type AddCoordinatorRequest struct {
	UserID *int64  `json:"userId,omitempty" binding:"omitempty,min=1"`
	Email  *string `json:"email,omitempty" binding:"omitempty,email"`
}

// SubEventView is a sub-event with the caller's registration affordance.
type SubEventView struct {
	models.SubEvent
	ActiveRegistrations int64                     `json:"activeRegistrations"`
	RegistrationOpen    bool                      `json:"registrationOpen"`
	Full                bool                      `json:"full"`
	Action              models.RegistrationAction `json:"action,omitempty"`
	MyRegistration      *models.EventRegistration `json:"myRegistration,omitempty"`
}

// EventDetailResponse is the public page of one event.
type EventDetailResponse struct {
	Event         models.Event          `json:"event"`
	SubEvents     []SubEventView        `json:"subEvents"`
	Results       []models.ResultDetail `json:"results"`
	Gallery       []models.GalleryItem  `json:"gallery"`
	IsParticipant bool                  `json:"isParticipant"`
	CanManage     bool                  `json:"canManage"`
}

// RegistrationStatusOptions lists a registration with the statuses it may move to.
type RegistrationStatusOptions struct {
	models.Registrant
	NextStatuses []models.RegistrationStatus `json:"nextStatuses"`
}

// MyEventsResponse is the student's "my events" page.
type MyEventsResponse struct {
	JoinedEventIDs []int64                     `json:"joinedEventIds"`
	Registrations  []models.RegistrationDetail `json:"registrations"`
}
