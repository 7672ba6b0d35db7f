package models

import (
	"errors"
	"testing"

	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func TestRegistrationTransitions(t *testing.T) {
	legal := map[RegistrationStatus][]RegistrationStatus{
		RegistrationStatusPending:    {RegistrationStatusConfirmed, RegistrationStatusCancelled, RegistrationStatusWaitlisted},
		RegistrationStatusConfirmed:  {RegistrationStatusCancelled},
		RegistrationStatusWaitlisted: {RegistrationStatusConfirmed, RegistrationStatusCancelled},
	}
	for _, from := range registrationStatuses {
		for _, to := range registrationStatuses {
			if from == to {
				continue
			}
			want := contains(legal[from], to)
			err := ValidateRegistrationTransition(from, to)
			if want && err != nil {
				t.Errorf("%s -> %s rejected: %v", from, to, err)
			}
			if !want && !errors.Is(err, apperrors.ErrInvalidTransition) {
				t.Errorf("%s -> %s accepted, want ErrInvalidTransition", from, to)
			}
		}
	}
	if !RegistrationStatusCancelled.Terminal() {
		t.Error("cancelled registration must be terminal")
	}
}

func TestApplicationTransitions(t *testing.T) {
	legal := map[ApplicationStatus][]ApplicationStatus{
		ApplicationStatusPending:     {ApplicationStatusShortlisted, ApplicationStatusRejected, ApplicationStatusWithdrawn},
		ApplicationStatusShortlisted: {ApplicationStatusSelected, ApplicationStatusRejected, ApplicationStatusWithdrawn},
	}
	for _, from := range applicationStatuses {
		for _, to := range applicationStatuses {
			if from == to {
				continue
			}
			want := contains(legal[from], to)
			if err := ValidateApplicationTransition(from, to); (err == nil) != want {
				t.Errorf("%s -> %s: err = %v, want legal=%v", from, to, err, want)
			}
		}
	}
	for _, s := range []ApplicationStatus{ApplicationStatusSelected, ApplicationStatusRejected, ApplicationStatusWithdrawn} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestEventTransitions(t *testing.T) {
	tests := []struct {
		from, to EventStatus
		ok       bool
	}{
		{EventStatusDraft, EventStatusUpcoming, true},
		{EventStatusUpcoming, EventStatusActive, true},
		{EventStatusActive, EventStatusCompleted, true},
		{EventStatusDraft, EventStatusCancelled, true},
		{EventStatusUpcoming, EventStatusCancelled, true},
		{EventStatusActive, EventStatusCancelled, true},
		{EventStatusDraft, EventStatusActive, false},
		{EventStatusCompleted, EventStatusCancelled, false},
		{EventStatusCancelled, EventStatusUpcoming, false},
		{EventStatusCompleted, EventStatusActive, false},
	}
	for _, tt := range tests {
		err := ValidateEventTransition(tt.from, tt.to)
		if (err == nil) != tt.ok {
			t.Errorf("%s -> %s: err = %v, want ok=%v", tt.from, tt.to, err, tt.ok)
		}
	}
}

func TestJobTransitions(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		ok       bool
	}{
		{JobStatusDraft, JobStatusOpen, true},
		{JobStatusOpen, JobStatusClosed, true},
		{JobStatusOpen, JobStatusFilled, true},
		{JobStatusDraft, JobStatusClosed, false},
		{JobStatusClosed, JobStatusOpen, false},
		{JobStatusFilled, JobStatusClosed, false},
	}
	for _, tt := range tests {
		err := ValidateJobTransition(tt.from, tt.to)
		if (err == nil) != tt.ok {
			t.Errorf("%s -> %s: err = %v, want ok=%v", tt.from, tt.to, err, tt.ok)
		}
	}
}

func TestSameStateIsNoop(t *testing.T) {
	if err := ValidateJobTransition(JobStatusClosed, JobStatusClosed); err != nil {
		t.Errorf("same-state write rejected: %v", err)
	}
}

func TestTransitionErrorCarriesStates(t *testing.T) {
	err := ValidateApplicationTransition(ApplicationStatusSelected, ApplicationStatusPending)
	var te *apperrors.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("error = %T, want *TransitionError", err)
	}
	if te.Entity != "application" || te.From != "selected" || te.To != "pending" {
		t.Errorf("TransitionError = %+v", te)
	}
}

func contains[S comparable](list []S, v S) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func TestNewRowStatuses(t *testing.T) {
	for _, s := range eventStatuses {
		err := ValidateNewEventStatus(s)
		allowed := s == EventStatusDraft || s == EventStatusUpcoming
		if allowed && err != nil {
			t.Errorf("new event as %s rejected: %v", s, err)
		}
		if !allowed && !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Errorf("new event as %s accepted, want ErrInvalidTransition", s)
		}
	}
	for _, s := range jobStatuses {
		err := ValidateNewJobStatus(s)
		allowed := s == JobStatusDraft || s == JobStatusOpen
		if allowed && err != nil {
			t.Errorf("new job as %s rejected: %v", s, err)
		}
		if !allowed && !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Errorf("new job as %s accepted, want ErrInvalidTransition", s)
		}
	}
}
