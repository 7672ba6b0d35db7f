package models

import (
	"fmt"
	"strings"

	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// EventStatus is the lifecycle state of an Event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// RegistrationStatus is the state of an EventRegistration.
type RegistrationStatus string

const (
	RegistrationStatusPending    RegistrationStatus = "pending"
	RegistrationStatusConfirmed  RegistrationStatus = "confirmed"
	RegistrationStatusCancelled  RegistrationStatus = "cancelled"
	RegistrationStatusWaitlisted RegistrationStatus = "waitlisted"
)

// ApplicationStatus is the state of a PlacementApplication.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusSelected    ApplicationStatus = "selected"
	ApplicationStatusWithdrawn   ApplicationStatus = "withdrawn"
)

// JobStatus is the state of a JobPosting.
type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
	JobStatusFilled JobStatus = "filled"
)

var (
	eventStatuses        = []EventStatus{EventStatusDraft, EventStatusUpcoming, EventStatusActive, EventStatusCompleted, EventStatusCancelled}
	registrationStatuses = []RegistrationStatus{RegistrationStatusPending, RegistrationStatusConfirmed, RegistrationStatusCancelled, RegistrationStatusWaitlisted}
	applicationStatuses  = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusShortlisted, ApplicationStatusRejected, ApplicationStatusSelected, ApplicationStatusWithdrawn}
	jobStatuses          = []JobStatus{JobStatusDraft, JobStatusOpen, JobStatusClosed, JobStatusFilled}
)

func parseStatus[S ~string](kind, raw string, known []S) (S, error) {
	value := S(strings.TrimSpace(raw))
	for _, s := range known {
		if s == value {
			return s, nil
		}
	}
	var zero S
	return zero, apperrors.NewCustomError(apperrors.ErrUnknownStatus, fmt.Sprintf("unknown %s status: %q", kind, raw))
}

func isKnown[S ~string](value S, known []S) bool {
	for _, s := range known {
		if s == value {
			return true
		}
	}
	return false
}

// ParseEventStatus converts raw into an EventStatus or fails with ErrUnknownStatus.
func ParseEventStatus(raw string) (EventStatus, error) {
	return parseStatus("event", raw, eventStatuses)
}

// ParseRegistrationStatus converts raw into a RegistrationStatus or fails with ErrUnknownStatus.
func ParseRegistrationStatus(raw string) (RegistrationStatus, error) {
	return parseStatus("registration", raw, registrationStatuses)
}

// ParseApplicationStatus converts raw into an ApplicationStatus or fails with ErrUnknownStatus.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	return parseStatus("application", raw, applicationStatuses)
}

// ParseJobStatus converts raw into a JobStatus or fails with ErrUnknownStatus.
func ParseJobStatus(raw string) (JobStatus, error) {
	return parseStatus("job", raw, jobStatuses)
}

func (s EventStatus) Valid() bool        { return isKnown(s, eventStatuses) }
func (s RegistrationStatus) Valid() bool { return isKnown(s, registrationStatuses) }
func (s ApplicationStatus) Valid() bool  { return isKnown(s, applicationStatuses) }
func (s JobStatus) Valid() bool          { return isKnown(s, jobStatuses) }

func (s *EventStatus) UnmarshalJSON(data []byte) error {
	v, err := ParseEventStatus(unquote(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *RegistrationStatus) UnmarshalJSON(data []byte) error {
	v, err := ParseRegistrationStatus(unquote(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *ApplicationStatus) UnmarshalJSON(data []byte) error {
	v, err := ParseApplicationStatus(unquote(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	v, err := ParseJobStatus(unquote(data))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// PublicEventStatuses are the event states shown on the public listing.
var PublicEventStatuses = []EventStatus{EventStatusUpcoming, EventStatusActive, EventStatusCompleted}

// AcceptsRegistrations reports whether students may still sign up for the event's activities.
func (s EventStatus) AcceptsRegistrations() bool {
	return s == EventStatusUpcoming || s == EventStatusActive
}

// IsPublic reports whether the event is visible without admin rights.
func (s EventStatus) IsPublic() bool {
	return isKnown(s, PublicEventStatuses)
}

// Active reports whether the registration counts toward capacity.
func (s RegistrationStatus) Active() bool {
	return s == RegistrationStatusPending || s == RegistrationStatusConfirmed
}
