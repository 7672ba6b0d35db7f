package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func newEventServiceFixture(events ...*models.Event) (EventService, *fakeEvents) {
	store := newFakeEvents()
	for _, e := range events {
		store.events[e.ID] = e
	}
	svc := NewEventService(store, nil, nil, nil, nil, nil, nil, nil, nil, fixedClock, zerolog.Nop())
	return svc, store
}

func TestUpdateEventWritesFieldsAndStatusTogether(t *testing.T) {
	svc, store := newEventServiceFixture(&models.Event{ID: 1, Name: "TechFest", Slug: "techfest", Status: models.EventStatusUpcoming, UpdatedAt: testNow})
	ctx := context.Background()

	updated, err := svc.UpdateEvent(ctx, superAdmin, 1, &dto.UpdateEventRequest{
		Name:   ptr("TechFest 2025"),
		Status: ptr(models.EventStatusActive),
	})
	if err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}
	if updated.Name != "TechFest 2025" || updated.Status != models.EventStatusActive {
		t.Errorf("updated = %+v", updated)
	}
	if len(store.statusSet) != 1 {
		t.Errorf("status writes = %v, want exactly one", store.statusSet)
	}
}

func TestUpdateEventStatusRaceLeavesEventUnchanged(t *testing.T) {
	svc, store := newEventServiceFixture(&models.Event{ID: 1, Name: "TechFest", Slug: "techfest", Status: models.EventStatusUpcoming, UpdatedAt: testNow})
	store.beforeWrite = func(e *models.Event) { e.Status = models.EventStatusCancelled }

	_, err := svc.UpdateEvent(context.Background(), superAdmin, 1, &dto.UpdateEventRequest{
		Name:   ptr("Renamed"),
		Status: ptr(models.EventStatusActive),
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	stored := store.events[1]
	if stored.Name != "TechFest" {
		t.Errorf("name = %q, the rejected update must not be stored", stored.Name)
	}
	if stored.Status != models.EventStatusCancelled {
		t.Errorf("status = %q, want the concurrent cancelled", stored.Status)
	}
}

func TestUpdateEventStatusOnlyChecksTimestamp(t *testing.T) {
	svc, store := newEventServiceFixture(&models.Event{ID: 1, Name: "TechFest", Slug: "techfest", Status: models.EventStatusDraft, UpdatedAt: testNow})
	// another edit lands after the service has read the row
	store.beforeWrite = func(e *models.Event) { e.UpdatedAt = testNow.Add(time.Minute) }

	_, err := svc.UpdateEvent(context.Background(), superAdmin, 1, &dto.UpdateEventRequest{
		Status:            ptr(models.EventStatusUpcoming),
		ExpectedUpdatedAt: ptr(testNow),
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if store.events[1].Status != models.EventStatusDraft {
		t.Errorf("status = %q, want draft", store.events[1].Status)
	}
}

func TestUpdateEventRejectsIllegalTransition(t *testing.T) {
	svc, store := newEventServiceFixture(&models.Event{ID: 1, Name: "TechFest", Slug: "techfest", Status: models.EventStatusCompleted, UpdatedAt: testNow})

	_, err := svc.UpdateEvent(context.Background(), superAdmin, 1, &dto.UpdateEventRequest{
		Name:   ptr("Renamed"),
		Status: ptr(models.EventStatusActive),
	})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if store.events[1].Name != "TechFest" {
		t.Errorf("name = %q, want unchanged", store.events[1].Name)
	}
}

func TestCreateEventStartingStatus(t *testing.T) {
	svc, _ := newEventServiceFixture()
	ctx := context.Background()

	tests := []struct {
		status  *models.EventStatus
		want    models.EventStatus
		wantErr error
	}{
		{nil, models.EventStatusDraft, nil},
		{ptr(models.EventStatusUpcoming), models.EventStatusUpcoming, nil},
		{ptr(models.EventStatusActive), "", apperrors.ErrInvalidTransition},
		{ptr(models.EventStatusCompleted), "", apperrors.ErrInvalidTransition},
		{ptr(models.EventStatusCancelled), "", apperrors.ErrInvalidTransition},
	}
	for i, tt := range tests {
		event, err := svc.CreateEvent(ctx, superAdmin, &dto.CreateEventRequest{
			Name:   "TechFest",
			Slug:   "techfest-" + string(rune('a'+i)),
			Status: tt.status,
		})
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("status %v: err = %v, want %v", *tt.status, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CreateEvent() error = %v", err)
		}
		if event.Status != tt.want {
			t.Errorf("status = %q, want %q", event.Status, tt.want)
		}
	}
}
