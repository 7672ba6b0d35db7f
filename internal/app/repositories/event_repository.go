package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
)

// EventFilter narrows the admin event list.
type EventFilter struct {
	Status *models.EventStatus
	Search string
	Limit  uint64
	Offset uint64
}

// EventRepository handles events and their sub-events
type EventRepository struct {
	events    *Table[models.Event]
	subEvents *Table[models.SubEvent]
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(conn db.DBTX) *EventRepository {
	return &EventRepository{
		events:    NewTable[models.Event](conn, "events", "event", true),
		subEvents: NewTable[models.SubEvent](conn, "sub_events", "sub-event", true),
	}
}

// ListPublic returns events in a publicly visible status, soonest first.
func (r *EventRepository) ListPublic(ctx context.Context) ([]models.Event, error) {
	statuses := make([]string, len(models.PublicEventStatuses))
	for i, s := range models.PublicEventStatuses {
		statuses[i] = string(s)
	}
	return r.events.Query(ctx, ListOptions{
		Where:   squirrel.Eq{"status": statuses},
		OrderBy: []string{"start_date ASC NULLS LAST", "id"},
	})
}

// List returns events for the admin screens, newest first, plus the total.
func (r *EventRepository) List(ctx context.Context, f EventFilter) ([]models.Event, int64, error) {
	where := squirrel.And{}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"status": string(*f.Status)})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, squirrel.Or{squirrel.ILike{"name": pattern}, squirrel.ILike{"slug": pattern}})
	}

	items, err := r.events.Query(ctx, ListOptions{
		Where:   where,
		OrderBy: []string{"created_at DESC"},
		Limit:   f.Limit,
		Offset:  f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := r.events.Count(ctx, where)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListCoordinatedBy returns the events a user coordinates.
func (r *EventRepository) ListCoordinatedBy(ctx context.Context, userID int64) ([]models.Event, error) {
	q := psql.Select("e.*").
		From("events e").
		Join("event_coordinators c ON c.event_id = e.id").
		Where(squirrel.Eq{"c.user_id": userID}).
		OrderBy("e.start_date ASC NULLS LAST", "e.id")
	return selectRows[models.Event](ctx, r.events.db, q)
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	return r.events.GetByID(ctx, id)
}

// GetBySlug retrieves an event by its slug
func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return r.events.QueryOne(ctx, squirrel.Eq{"slug": slug})
}

// Create inserts an event
func (r *EventRepository) Create(ctx context.Context, fields map[string]interface{}) (*models.Event, error) {
	return r.events.Insert(ctx, fields)
}

// Update writes fields to an event. A non-nil expected enables the optimistic check.
func (r *EventRepository) Update(ctx context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.Event, error) {
	if expected != nil {
		return r.events.UpdateIfUnchanged(ctx, id, fields, *expected)
	}
	return r.events.Update(ctx, id, fields)
}

// UpdateFromStatus writes fields, a status change among them, in one statement
// that only matches while the stored status is still from (and updated_at is
// still expected, when given). Otherwise nothing is written and ErrConflict is
// returned.
func (r *EventRepository) UpdateFromStatus(ctx context.Context, id int64, fields map[string]interface{}, from models.EventStatus, expected *time.Time) (*models.Event, error) {
	return r.events.UpdateGuarded(ctx, id, statusGuard(string(from), expected), fields)
}

// Delete removes an event and, by cascade, everything under it
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return r.events.Delete(ctx, id)
}

// CountEvents returns the number of events.
func (r *EventRepository) CountEvents(ctx context.Context) (int64, error) {
	return r.events.Count(ctx, nil)
}

// ListSubEvents returns the activities of an event in schedule order.
func (r *EventRepository) ListSubEvents(ctx context.Context, eventID int64) ([]models.SubEvent, error) {
	return r.subEvents.Query(ctx, ListOptions{
		Where:   squirrel.Eq{"event_id": eventID},
		OrderBy: []string{"schedule ASC NULLS LAST", "id"},
	})
}

// GetSubEvent retrieves a sub-event by ID
func (r *EventRepository) GetSubEvent(ctx context.Context, id int64) (*models.SubEvent, error) {
	return r.subEvents.GetByID(ctx, id)
}

// CreateSubEvent inserts a sub-event
func (r *EventRepository) CreateSubEvent(ctx context.Context, fields map[string]interface{}) (*models.SubEvent, error) {
	return r.subEvents.Insert(ctx, fields)
}

// UpdateSubEvent writes fields to a sub-event. A non-nil expected enables the optimistic check.
func (r *EventRepository) UpdateSubEvent(ctx context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.SubEvent, error) {
	if expected != nil {
		return r.subEvents.UpdateIfUnchanged(ctx, id, fields, *expected)
	}
	return r.subEvents.Update(ctx, id, fields)
}

// DeleteSubEvent removes a sub-event
func (r *EventRepository) DeleteSubEvent(ctx context.Context, id int64) error {
	return r.subEvents.Delete(ctx, id)
}

// CountSubEvents returns the number of sub-events.
func (r *EventRepository) CountSubEvents(ctx context.Context) (int64, error) {
	return r.subEvents.Count(ctx, nil)
}
