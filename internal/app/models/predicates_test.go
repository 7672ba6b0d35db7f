package models

import (
	"testing"
	"time"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt32(v int32) *int32        { return &v }
func ptrFloat(v float64) *float64    { return &v }
func ptrString(v string) *string     { return &v }

func TestRegistrationOpen(t *testing.T) {
	tests := []struct {
		name     string
		deadline *time.Time
		want     bool
	}{
		{"no deadline", nil, true},
		{"future", ptrTime(now.Add(time.Hour)), true},
		{"equal", ptrTime(now), false},
		{"past", ptrTime(now.Add(-time.Second)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RegistrationOpen(&SubEvent{RegistrationDeadline: tt.deadline}, now); got != tt.want {
				t.Errorf("RegistrationOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanApply(t *testing.T) {
	future := ptrTime(now.Add(24 * time.Hour))
	tests := []struct {
		name       string
		job        JobPosting
		hasApplied bool
		want       bool
	}{
		{"open no deadline", JobPosting{Status: JobStatusOpen}, false, true},
		{"open future deadline", JobPosting{Status: JobStatusOpen, Deadline: future}, false, true},
		{"deadline equals now", JobPosting{Status: JobStatusOpen, Deadline: ptrTime(now)}, false, false},
		{"deadline passed", JobPosting{Status: JobStatusOpen, Deadline: ptrTime(now.Add(-time.Minute))}, false, false},
		{"already applied", JobPosting{Status: JobStatusOpen, Deadline: future}, true, false},
		{"closed with future deadline", JobPosting{Status: JobStatusClosed, Deadline: future}, false, false},
		{"draft", JobPosting{Status: JobStatusDraft}, false, false},
		{"filled", JobPosting{Status: JobStatusFilled}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanApply(&tt.job, tt.hasApplied, now); got != tt.want {
				t.Errorf("CanApply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCapacityReached(t *testing.T) {
	if CapacityReached(&SubEvent{}, 1000) {
		t.Error("uncapped sub-event is never full")
	}
	capped := &SubEvent{MaxParticipants: ptrInt32(2)}
	if CapacityReached(capped, 1) {
		t.Error("1 of 2 is not full")
	}
	if !CapacityReached(capped, 2) {
		t.Error("2 of 2 is full")
	}
}

func TestSubEventActionScenario(t *testing.T) {
	sub := &SubEvent{RegistrationDeadline: ptrTime(now.Add(48 * time.Hour))}
	rc := RegistrationContext{EventStatus: EventStatusUpcoming, Open: RegistrationOpen(sub, now)}

	if got := SubEventAction(rc); got != ActionRequiresEventRegistration {
		t.Fatalf("before joining the event: %s", got)
	}

	rc.IsParticipant = true
	if got := SubEventAction(rc); got != ActionRegister {
		t.Fatalf("after joining the event: %s", got)
	}

	rc.AlreadyRegistered = true
	if got := SubEventAction(rc); got != ActionAlreadyRegistered {
		t.Fatalf("after registering: %s", got)
	}
}

func TestSubEventActionClosedAndFull(t *testing.T) {
	base := RegistrationContext{EventStatus: EventStatusActive, IsParticipant: true, Open: true}

	closed := base
	closed.Open = false
	if got := SubEventAction(closed); got != ActionRegistrationClosed {
		t.Errorf("deadline passed: %s", got)
	}

	completed := base
	completed.EventStatus = EventStatusCompleted
	if got := SubEventAction(completed); got != ActionRegistrationClosed {
		t.Errorf("completed event: %s", got)
	}

	full := base
	full.Full = true
	if got := SubEventAction(full); got != ActionJoinWaitlist {
		t.Errorf("full sub-event: %s", got)
	}
}

func TestCheckEligibility(t *testing.T) {
	job := &JobPosting{
		MinCGPA:             ptrFloat(7.5),
		EligibleDepartments: []string{"CSE", "ECE"},
		EligibleYears:       []int32{4},
	}
	good := &Profile{CGPA: ptrFloat(8.1), Department: ptrString("cse"), Year: ptrInt32(4)}
	if e := CheckEligibility(job, good); !e.Eligible {
		t.Errorf("expected eligible, reasons = %v", e.Reasons)
	}

	bad := &Profile{CGPA: ptrFloat(6.9), Department: ptrString("MECH"), Year: ptrInt32(3)}
	if e := CheckEligibility(job, bad); e.Eligible || len(e.Reasons) != 3 {
		t.Errorf("expected 3 reasons, got %v", e.Reasons)
	}

	if e := CheckEligibility(&JobPosting{}, nil); !e.Eligible {
		t.Error("a job without criteria accepts everyone")
	}
}
