package models

import "time"

// Event is a top-level campus event such as a fest.
type Event struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name" example:"TechFest 2025"`
	Slug        string      `json:"slug" db:"slug" example:"techfest-2025"`
	Description *string     `json:"description,omitempty" db:"description"`
	BannerURL   *string     `json:"bannerUrl,omitempty" db:"banner_url"`
	StartDate   *time.Time  `json:"startDate,omitempty" db:"start_date"`
	EndDate     *time.Time  `json:"endDate,omitempty" db:"end_date"`
	Status      EventStatus `json:"status" db:"status" example:"upcoming"`
	CreatedBy   *int64      `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// SubEvent is an activity (competition, workshop) nested under an Event.
type SubEvent struct {
	ID                   int64      `json:"id" db:"id"`
	EventID              int64      `json:"eventId" db:"event_id"`
	Name                 string     `json:"name" db:"name"`
	Description          *string    `json:"description,omitempty" db:"description"`
	Venue                *string    `json:"venue,omitempty" db:"venue"`
	Schedule             *time.Time `json:"schedule,omitempty" db:"schedule"`
	Rules                *string    `json:"rules,omitempty" db:"rules"`
	MaxParticipants      *int32     `json:"maxParticipants,omitempty" db:"max_participants"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	IsTeamEvent          bool       `json:"isTeamEvent" db:"is_team_event"`
	TeamSizeMin          *int32     `json:"teamSizeMin,omitempty" db:"team_size_min"`
	TeamSizeMax          *int32     `json:"teamSizeMax,omitempty" db:"team_size_max"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}

// EventCoordinator grants an identity management rights over one event.
type EventCoordinator struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"eventId" db:"event_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// EventParticipant records that an identity opted into an event.
type EventParticipant struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"eventId" db:"event_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// EventRegistration is a student's registration for a sub-event.
type EventRegistration struct {
	ID          int64              `json:"id" db:"id"`
	SubEventID  int64              `json:"subEventId" db:"sub_event_id"`
	UserID      int64              `json:"userId" db:"user_id"`
	TeamName    *string            `json:"teamName,omitempty" db:"team_name"`
	TeamMembers []string           `json:"teamMembers,omitempty" db:"team_members"`
	Status      RegistrationStatus `json:"status" db:"status"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`
}

// EventResult records a placing in a sub-event. Positions are not unique.
type EventResult struct {
	ID         int64     `json:"id" db:"id"`
	SubEventID int64     `json:"subEventId" db:"sub_event_id"`
	UserID     *int64    `json:"userId,omitempty" db:"user_id"`
	Position   int32     `json:"position" db:"position"`
	TeamName   *string   `json:"teamName,omitempty" db:"team_name"`
	Remarks    *string   `json:"remarks,omitempty" db:"remarks"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// GalleryItem is an image attached to an event, optionally to one of its sub-events.
type GalleryItem struct {
	ID         int64     `json:"id" db:"id"`
	EventID    int64     `json:"eventId" db:"event_id"`
	SubEventID *int64    `json:"subEventId,omitempty" db:"sub_event_id"`
	ImageURL   string    `json:"imageUrl" db:"image_url"`
	Caption    *string   `json:"caption,omitempty" db:"caption"`
	UploadedBy *int64    `json:"uploadedBy,omitempty" db:"uploaded_by"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// RegistrationDetail is a registration joined with its sub-event and event, for "my events".
type RegistrationDetail struct {
	EventRegistration
	SubEventName string      `json:"subEventName" db:"sub_event_name"`
	EventID      int64       `json:"eventId" db:"event_id"`
	EventName    string      `json:"eventName" db:"event_name"`
	EventSlug    string      `json:"eventSlug" db:"event_slug"`
	EventStatus  EventStatus `json:"eventStatus" db:"event_status"`
}

// Registrant is a registration joined with the registrant's profile, for admin screens.
type Registrant struct {
	EventRegistration
	Name       string  `json:"name" db:"name"`
	Email      string  `json:"email" db:"email"`
	StudentID  *string `json:"studentId,omitempty" db:"student_id"`
	Department *string `json:"department,omitempty" db:"department"`
}

// ResultDetail is a result with its sub-event name and winner name.
type ResultDetail struct {
	EventResult
	SubEventName string  `json:"subEventName" db:"sub_event_name"`
	WinnerName   *string `json:"winnerName,omitempty" db:"winner_name"`
}

// CoordinatorDetail is a coordinator row with the coordinator's profile.
type CoordinatorDetail struct {
	EventCoordinator
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}
