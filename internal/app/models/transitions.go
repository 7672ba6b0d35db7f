package models

import (
	"fmt"

	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// statusGraph is a directed graph of legal status changes. States with no
// outgoing edges are terminal; initial lists the states a new row may start in.
type statusGraph[S ~string] struct {
	entity  string
	initial []S
	edges   map[S][]S
}

func (g statusGraph[S]) allows(from, to S) bool {
	for _, next := range g.edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// validate accepts legal moves and same-state writes.
func (g statusGraph[S]) validate(from, to S) error {
	if from == to {
		return nil
	}
	if !g.allows(from, to) {
		return &apperrors.TransitionError{Entity: g.entity, From: string(from), To: string(to)}
	}
	return nil
}

func (g statusGraph[S]) validateInitial(s S) error {
	for _, start := range g.initial {
		if start == s {
			return nil
		}
	}
	return apperrors.NewCustomError(apperrors.ErrInvalidTransition, fmt.Sprintf("a new %s cannot start as %q", g.entity, s))
}

func (g statusGraph[S]) terminal(s S) bool {
	return len(g.edges[s]) == 0
}

var registrationGraph = statusGraph[RegistrationStatus]{
	entity: "registration",
	edges: map[RegistrationStatus][]RegistrationStatus{
		RegistrationStatusPending:    {RegistrationStatusConfirmed, RegistrationStatusCancelled, RegistrationStatusWaitlisted},
		RegistrationStatusConfirmed:  {RegistrationStatusCancelled},
		RegistrationStatusWaitlisted: {RegistrationStatusConfirmed, RegistrationStatusCancelled},
	},
}

var applicationGraph = statusGraph[ApplicationStatus]{
	entity: "application",
	edges: map[ApplicationStatus][]ApplicationStatus{
		ApplicationStatusPending:     {ApplicationStatusShortlisted, ApplicationStatusRejected, ApplicationStatusWithdrawn},
		ApplicationStatusShortlisted: {ApplicationStatusSelected, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	},
}

var eventGraph = statusGraph[EventStatus]{
	entity:  "event",
	initial: []EventStatus{EventStatusDraft, EventStatusUpcoming},
	edges: map[EventStatus][]EventStatus{
		EventStatusDraft:    {EventStatusUpcoming, EventStatusCancelled},
		EventStatusUpcoming: {EventStatusActive, EventStatusCancelled},
		EventStatusActive:   {EventStatusCompleted, EventStatusCancelled},
	},
}

var jobGraph = statusGraph[JobStatus]{
	entity:  "job",
	initial: []JobStatus{JobStatusDraft, JobStatusOpen},
	edges: map[JobStatus][]JobStatus{
		JobStatusDraft: {JobStatusOpen},
		JobStatusOpen:  {JobStatusClosed, JobStatusFilled},
	},
}

// ValidateRegistrationTransition must be called before every registration status write.
func ValidateRegistrationTransition(from, to RegistrationStatus) error {
	return registrationGraph.validate(from, to)
}

// ValidateApplicationTransition must be called before every application status write.
func ValidateApplicationTransition(from, to ApplicationStatus) error {
	return applicationGraph.validate(from, to)
}

// ValidateEventTransition must be called before every event status write.
func ValidateEventTransition(from, to EventStatus) error {
	return eventGraph.validate(from, to)
}

// ValidateJobTransition must be called before every job status write.
func ValidateJobTransition(from, to JobStatus) error {
	return jobGraph.validate(from, to)
}

// ValidateNewEventStatus rejects creating an event past the start of its graph.
func ValidateNewEventStatus(s EventStatus) error {
	return eventGraph.validateInitial(s)
}

// ValidateNewJobStatus rejects posting a job as closed or filled.
func ValidateNewJobStatus(s JobStatus) error {
	return jobGraph.validateInitial(s)
}

func (s RegistrationStatus) Terminal() bool { return registrationGraph.terminal(s) }
func (s ApplicationStatus) Terminal() bool  { return applicationGraph.terminal(s) }
func (s EventStatus) Terminal() bool        { return eventGraph.terminal(s) }
func (s JobStatus) Terminal() bool          { return jobGraph.terminal(s) }

// NextRegistrationStatuses lists the statuses reachable in one step, for admin UIs.
func NextRegistrationStatuses(from RegistrationStatus) []RegistrationStatus {
	return append([]RegistrationStatus(nil), registrationGraph.edges[from]...)
}

// NextApplicationStatuses lists the statuses reachable in one step, for admin UIs.
func NextApplicationStatuses(from ApplicationStatus) []ApplicationStatus {
	return append([]ApplicationStatus(nil), applicationGraph.edges[from]...)
}
