package models

import (
	"fmt"
	"strings"
	"time"
)

// RegistrationOpen is true when the sub-event has no deadline or now is strictly before it.
func RegistrationOpen(sub *SubEvent, now time.Time) bool {
	return sub.RegistrationDeadline == nil || now.Before(*sub.RegistrationDeadline)
}

// CanApply is true when the job is open, its deadline (if any) has not passed and the
// user has not applied yet. now == deadline counts as passed.
func CanApply(job *JobPosting, hasApplied bool, now time.Time) bool {
	if job.Status != JobStatusOpen || hasApplied {
		return false
	}
	return job.Deadline == nil || now.Before(*job.Deadline)
}

// CapacityReached is true when a capped sub-event already holds maxParticipants active registrations.
func CapacityReached(sub *SubEvent, activeRegistrations int64) bool {
	return sub.MaxParticipants != nil && activeRegistrations >= int64(*sub.MaxParticipants)
}

// RegistrationAction is the affordance offered to a student for one sub-event.
type RegistrationAction string

const (
	ActionRequiresEventRegistration RegistrationAction = "REQUIRES_EVENT_REGISTRATION"
	ActionAlreadyRegistered         RegistrationAction = "ALREADY_REGISTERED"
	ActionRegistrationClosed        RegistrationAction = "REGISTRATION_CLOSED"
	ActionJoinWaitlist              RegistrationAction = "JOIN_WAITLIST"
	ActionRegister                  RegistrationAction = "REGISTER"
)

// RegistrationContext is what the caller knows about a student and one sub-event.
type RegistrationContext struct {
	EventStatus       EventStatus
	IsParticipant     bool
	AlreadyRegistered bool
	Open              bool
	Full              bool
}

// SubEventAction decides which registration control a student sees.
func SubEventAction(rc RegistrationContext) RegistrationAction {
	switch {
	case !rc.IsParticipant:
		return ActionRequiresEventRegistration
	case rc.AlreadyRegistered:
		return ActionAlreadyRegistered
	case !rc.EventStatus.AcceptsRegistrations() || !rc.Open:
		return ActionRegistrationClosed
	case rc.Full:
		return ActionJoinWaitlist
	default:
		return ActionRegister
	}
}

// Eligibility explains whether a profile meets a job's published criteria.
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// CheckEligibility compares a profile with the job's cgpa, department and year criteria.
// Missing profile data fails the corresponding criterion.
func CheckEligibility(job *JobPosting, profile *Profile) Eligibility {
	var reasons []string

	if job.MinCGPA != nil {
		if profile == nil || profile.CGPA == nil {
			reasons = append(reasons, "CGPA not on profile")
		} else if *profile.CGPA < *job.MinCGPA {
			reasons = append(reasons, fmt.Sprintf("minimum CGPA is %.2f", *job.MinCGPA))
		}
	}

	if len(job.EligibleDepartments) > 0 {
		ok := false
		if profile != nil && profile.Department != nil {
			for _, d := range job.EligibleDepartments {
				if strings.EqualFold(d, *profile.Department) {
					ok = true
					break
				}
			}
		}
		if !ok {
			reasons = append(reasons, "department not eligible")
		}
	}

	if len(job.EligibleYears) > 0 {
		ok := false
		if profile != nil && profile.Year != nil {
			for _, y := range job.EligibleYears {
				if y == *profile.Year {
					ok = true
					break
				}
			}
		}
		if !ok {
			reasons = append(reasons, "year not eligible")
		}
	}

	return Eligibility{Eligible: len(reasons) == 0, Reasons: reasons}
}
