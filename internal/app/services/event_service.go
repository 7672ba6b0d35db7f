package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

const slugConstraint = "events_slug_key"

// EventService defines the interface for events, sub-events and coordinators
type EventService interface {
	// Public
	ListPublicEvents(ctx context.Context) ([]models.Event, error)
	GetEventDetail(ctx context.Context, slug string, viewer *auth.Actor) (*dto.EventDetailResponse, error)

	// Super admin
	ListEvents(ctx context.Context, actor auth.Actor, status, search string, page helpers.Page) (*dto.PaginatedResponse, error)
	CreateEvent(ctx context.Context, actor auth.Actor, req *dto.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, actor auth.Actor, eventID int64, req *dto.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, actor auth.Actor, eventID int64) error
	UploadBanner(ctx context.Context, actor auth.Actor, eventID int64, upload *filestorage.Upload) (*models.Event, error)
	ListCoordinators(ctx context.Context, actor auth.Actor, eventID int64) ([]models.CoordinatorDetail, error)
	AddCoordinator(ctx context.Context, actor auth.Actor, eventID int64, req *dto.AddCoordinatorRequest) (*models.EventCoordinator, error)
	RemoveCoordinator(ctx context.Context, actor auth.Actor, eventID, userID int64) error

	// Event admin
	ListManagedEvents(ctx context.Context, actor auth.Actor) ([]models.Event, error)
	GetManagedEvent(ctx context.Context, actor auth.Actor, eventID int64) (*models.Event, error)
	ListSubEvents(ctx context.Context, actor auth.Actor, eventID int64) ([]models.SubEvent, error)
	CreateSubEvent(ctx context.Context, actor auth.Actor, eventID int64, req *dto.SubEventRequest) (*models.SubEvent, error)
	UpdateSubEvent(ctx context.Context, actor auth.Actor, subEventID int64, req *dto.SubEventRequest) (*models.SubEvent, error)
	DeleteSubEvent(ctx context.Context, actor auth.Actor, subEventID int64) error
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	events        EventStore
	coordinators  CoordinatorStore
	registrations RegistrationStore
	results       ResultStore
	users         UserStore
	authz         *auth.AuthorizationService
	blobs         filestorage.BlobStore
	bus           *access.IdentityBus
	recorder      TransitionRecorder
	clock         helpers.Clock
	logger        zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	events EventStore,
	coordinators CoordinatorStore,
	registrations RegistrationStore,
	results ResultStore,
	users UserStore,
	authz *auth.AuthorizationService,
	blobs filestorage.BlobStore,
	bus *access.IdentityBus,
	recorder TransitionRecorder,
	clock helpers.Clock,
	logger zerolog.Logger,
) EventService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &eventServiceImpl{
		events:        events,
		coordinators:  coordinators,
		registrations: registrations,
		results:       results,
		users:         users,
		authz:         authz,
		blobs:         blobs,
		bus:           bus,
		recorder:      recorder,
		clock:         clock,
		logger:        logger,
	}
}

// ListPublicEvents returns upcoming, active and completed events
func (s *eventServiceImpl) ListPublicEvents(ctx context.Context) ([]models.Event, error) {
	return s.events.ListPublic(ctx)
}

// GetEventDetail assembles the public page of an event. Draft and cancelled
// events are only visible to those who manage them.
func (s *eventServiceImpl) GetEventDetail(ctx context.Context, slug string, viewer *auth.Actor) (*dto.EventDetailResponse, error) {
	event, err := s.events.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}

	resp := &dto.EventDetailResponse{Event: *event}
	if viewer != nil {
		if resp.CanManage, err = s.authz.CanManageEvent(ctx, *viewer, event.ID); err != nil {
			return nil, err
		}
	}
	if !event.Status.IsPublic() && !resp.CanManage {
		return nil, apperrors.NewResourceNotFoundError("event not found")
	}

	subEvents, err := s.events.ListSubEvents(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-events: %w", err)
	}
	counts, err := s.registrations.CountActiveByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}

	mine := map[int64]*models.EventRegistration{}
	if viewer != nil && viewer.UserID > 0 {
		if resp.IsParticipant, err = s.coordinators.IsParticipant(ctx, event.ID, viewer.UserID); err != nil {
			return nil, fmt.Errorf("failed to check participation: %w", err)
		}
		regs, err := s.registrations.ListForUserInEvent(ctx, event.ID, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to list registrations: %w", err)
		}
		for i := range regs {
			mine[regs[i].SubEventID] = &regs[i]
		}
	}

	now := s.clock()
	resp.SubEvents = make([]dto.SubEventView, 0, len(subEvents))
	for i := range subEvents {
		sub := subEvents[i]
		view := dto.SubEventView{
			SubEvent:            sub,
			ActiveRegistrations: counts[sub.ID],
			RegistrationOpen:    event.Status.AcceptsRegistrations() && models.RegistrationOpen(&sub, now),
			Full:                models.CapacityReached(&sub, counts[sub.ID]),
			MyRegistration:      mine[sub.ID],
		}
		if viewer != nil && viewer.UserID > 0 {
			view.Action = models.SubEventAction(models.RegistrationContext{
				EventStatus:       event.Status,
				IsParticipant:     resp.IsParticipant,
				AlreadyRegistered: mine[sub.ID] != nil,
				Open:              models.RegistrationOpen(&sub, now),
				Full:              view.Full,
			})
		}
		resp.SubEvents = append(resp.SubEvents, view)
	}

	if resp.Results, err = s.results.ListByEvent(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if resp.Gallery, err = s.results.ListGallery(ctx, event.ID); err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	return resp, nil
}

// ListEvents pages through all events for the super admin
func (s *eventServiceImpl) ListEvents(ctx context.Context, actor auth.Actor, status, search string, page helpers.Page) (*dto.PaginatedResponse, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}

	f := repositories.EventFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}
	if status != "" {
		st, err := models.ParseEventStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = &st
	}

	events, total, err := s.events.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &dto.PaginatedResponse{Items: events, Pagination: helpers.NewPaginationInfo(total, page)}, nil
}

func normalizeSlug(slug string) (string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !validation.IsSlug(slug) {
		return "", apperrors.NewValidationError("slug must be lowercase letters, digits and single hyphens")
	}
	return slug, nil
}

func checkDateOrder(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.NewValidationError("end date must be on or after start date")
	}
	return nil
}

// slugTaken turns a duplicate slug into ErrResourceAlreadyExists.
func slugTaken(err error) error {
	if dberrors.IsDuplicateConstraintError(err, slugConstraint) {
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "an event with this slug already exists")
	}
	return err
}

// CreateEvent creates a top-level event
func (s *eventServiceImpl) CreateEvent(ctx context.Context, actor auth.Actor, req *dto.CreateEventRequest) (*models.Event, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}
	slug, err := normalizeSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	if err := checkDateOrder(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	status := models.EventStatusDraft
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.NewCustomError(apperrors.ErrUnknownStatus, "unknown event status: "+string(*req.Status))
		}
		if err := models.ValidateNewEventStatus(*req.Status); err != nil {
			return nil, err
		}
		status = *req.Status
	}

	event, err := s.events.Create(ctx, map[string]interface{}{
		"name":        name,
		"slug":        slug,
		"description": req.Description,
		"start_date":  req.StartDate,
		"end_date":    req.EndDate,
		"status":      string(status),
		"created_by":  actor.UserID,
	})
	if err != nil {
		return nil, slugTaken(err)
	}

	s.logger.Info().Int64("eventID", event.ID).Str("slug", event.Slug).Msg("Event created")
	return event, nil
}

// UpdateEvent changes an event. A status change is validated against the
// event transition graph and written in the same statement as the other
// fields, so a concurrent status change rejects the whole update.
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, actor auth.Actor, eventID int64, req *dto.UpdateEventRequest) (*models.Event, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}

	current, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Slug != nil {
		slug, err := normalizeSlug(*req.Slug)
		if err != nil {
			return nil, err
		}
		fields["slug"] = slug
	}
	if req.Description != nil {
		fields["description"] = nullIfBlank(*req.Description)
	}

	start, end := current.StartDate, current.EndDate
	if req.StartDate != nil {
		start = req.StartDate
		fields["start_date"] = req.StartDate
	}
	if req.EndDate != nil {
		end = req.EndDate
		fields["end_date"] = req.EndDate
	}
	if err := checkDateOrder(start, end); err != nil {
		return nil, err
	}

	var next *models.EventStatus
	if req.Status != nil && *req.Status != current.Status {
		if err := models.ValidateEventTransition(current.Status, *req.Status); err != nil {
			return nil, err
		}
		next = req.Status
	}

	var updated *models.Event
	switch {
	case next != nil:
		fields["status"] = string(*next)
		if updated, err = s.events.UpdateFromStatus(ctx, eventID, fields, current.Status, req.ExpectedUpdatedAt); err != nil {
			return nil, slugTaken(err)
		}
		s.recorder.ObserveTransition("event", string(*next))
		s.logger.Info().
			Int64("eventID", eventID).
			Str("from", string(current.Status)).
			Str("to", string(*next)).
			Msg("Event status changed")
	case len(fields) > 0:
		if updated, err = s.events.Update(ctx, eventID, fields, req.ExpectedUpdatedAt); err != nil {
			return nil, slugTaken(err)
		}
	default:
		if req.ExpectedUpdatedAt != nil && !req.ExpectedUpdatedAt.Equal(current.UpdatedAt) {
			return nil, apperrors.NewConflictError("event was modified by someone else")
		}
		updated = current
	}
	return updated, nil
}

// DeleteEvent removes an event with everything under it, then its banner
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, actor auth.Actor, eventID int64) error {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return err
	}

	removeBlob(ctx, s.blobs, filestorage.BucketEventBanners, event.BannerURL, s.logger)
	s.logger.Info().Int64("eventID", eventID).Msg("Event deleted")
	return nil
}

// UploadBanner replaces the event banner
func (s *eventServiceImpl) UploadBanner(ctx context.Context, actor auth.Actor, eventID int64, upload *filestorage.Upload) (*models.Event, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if err := upload.RequireImage(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, filestorage.BucketEventBanners, filestorage.BannerPath(eventID, upload.Ext, s.clock()), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store banner: %w", err)
	}

	updated, err := s.events.Update(ctx, eventID, map[string]interface{}{"banner_url": url}, nil)
	if err != nil {
		removeBlob(ctx, s.blobs, filestorage.BucketEventBanners, &url, s.logger)
		return nil, err
	}

	removeBlob(ctx, s.blobs, filestorage.BucketEventBanners, event.BannerURL, s.logger)
	return updated, nil
}

// ListCoordinators returns the coordinators of an event
func (s *eventServiceImpl) ListCoordinators(ctx context.Context, actor auth.Actor, eventID int64) ([]models.CoordinatorDetail, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.coordinators.ListCoordinators(ctx, eventID)
}

// AddCoordinator assigns a user, named by id or e-mail, to coordinate an event.
// The user also receives the event_admin role.
func (s *eventServiceImpl) AddCoordinator(ctx context.Context, actor auth.Actor, eventID int64, req *dto.AddCoordinatorRequest) (*models.EventCoordinator, error) {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case req.UserID != nil:
		user, err = s.users.GetUserByID(ctx, *req.UserID)
	case req.Email != nil && strings.TrimSpace(*req.Email) != "":
		user, err = s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(*req.Email)))
	default:
		return nil, apperrors.NewValidationError("userId or email is required")
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("user not found")
		}
		return nil, err
	}

	coordinator, err := s.coordinators.AddCoordinator(ctx, eventID, user.ID)
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(access.IdentityChange{Kind: access.Refreshed, UserID: user.ID, At: s.clock()})
	}
	s.logger.Info().Int64("eventID", eventID).Int64("userID", user.ID).Msg("Coordinator added")
	return coordinator, nil
}

// RemoveCoordinator unassigns a coordinator. The event_admin role stays.
func (s *eventServiceImpl) RemoveCoordinator(ctx context.Context, actor auth.Actor, eventID, userID int64) error {
	if err := auth.RequireSuperAdmin(actor); err != nil {
		return err
	}
	if err := s.coordinators.RemoveCoordinator(ctx, eventID, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Msg("Coordinator removed")
	return nil
}

// ListManagedEvents returns the events the actor may manage
func (s *eventServiceImpl) ListManagedEvents(ctx context.Context, actor auth.Actor) ([]models.Event, error) {
	if err := auth.RequireRole(actor, models.RoleEventAdmin, models.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if actor.IsSuperAdmin() {
		events, _, err := s.events.List(ctx, repositories.EventFilter{})
		return events, err
	}
	return s.events.ListCoordinatedBy(ctx, actor.UserID)
}

// GetManagedEvent returns one event the actor manages
func (s *eventServiceImpl) GetManagedEvent(ctx context.Context, actor auth.Actor, eventID int64) (*models.Event, error) {
	if err := s.authz.RequireEventManager(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.events.GetByID(ctx, eventID)
}

// ListSubEvents returns the activities of a managed event
func (s *eventServiceImpl) ListSubEvents(ctx context.Context, actor auth.Actor, eventID int64) ([]models.SubEvent, error) {
	if err := s.authz.RequireEventManager(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.events.ListSubEvents(ctx, eventID)
}

// subEventFields validates req and maps it to columns.
func subEventFields(req *dto.SubEventRequest) (map[string]interface{}, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	minSize, maxSize := req.TeamSizeMin, req.TeamSizeMax
	if req.IsTeamEvent {
		if (minSize != nil && *minSize < 1) || (maxSize != nil && *maxSize < 1) {
			return nil, apperrors.NewValidationError("team sizes must be at least 1")
		}
		if minSize != nil && maxSize != nil && *minSize > *maxSize {
			return nil, apperrors.NewValidationError("minimum team size cannot exceed maximum team size")
		}
	} else {
		minSize, maxSize = nil, nil
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		return nil, apperrors.NewValidationError("max participants must be at least 1")
	}

	return map[string]interface{}{
		"name":                  name,
		"description":           req.Description,
		"venue":                 req.Venue,
		"schedule":              req.Schedule,
		"rules":                 req.Rules,
		"max_participants":      req.MaxParticipants,
		"registration_deadline": req.RegistrationDeadline,
		"is_team_event":         req.IsTeamEvent,
		"team_size_min":         minSize,
		"team_size_max":         maxSize,
	}, nil
}

// CreateSubEvent adds an activity to a managed event
func (s *eventServiceImpl) CreateSubEvent(ctx context.Context, actor auth.Actor, eventID int64, req *dto.SubEventRequest) (*models.SubEvent, error) {
	if err := s.authz.RequireEventManager(ctx, actor, eventID); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	fields, err := subEventFields(req)
	if err != nil {
		return nil, err
	}
	fields["event_id"] = eventID

	sub, err := s.events.CreateSubEvent(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("eventID", eventID).Int64("subEventID", sub.ID).Msg("Sub-event created")
	return sub, nil
}

// managedSubEvent loads a sub-event and checks the actor manages its event.
func (s *eventServiceImpl) managedSubEvent(ctx context.Context, actor auth.Actor, subEventID int64) (*models.SubEvent, error) {
	sub, err := s.events.GetSubEvent(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireEventManager(ctx, actor, sub.EventID); err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubEvent replaces the editable fields of an activity
func (s *eventServiceImpl) UpdateSubEvent(ctx context.Context, actor auth.Actor, subEventID int64, req *dto.SubEventRequest) (*models.SubEvent, error) {
	if _, err := s.managedSubEvent(ctx, actor, subEventID); err != nil {
		return nil, err
	}

	fields, err := subEventFields(req)
	if err != nil {
		return nil, err
	}
	return s.events.UpdateSubEvent(ctx, subEventID, fields, req.ExpectedUpdatedAt)
}

// DeleteSubEvent removes an activity with its registrations and results
func (s *eventServiceImpl) DeleteSubEvent(ctx context.Context, actor auth.Actor, subEventID int64) error {
	sub, err := s.managedSubEvent(ctx, actor, subEventID)
	if err != nil {
		return err
	}
	if err := s.events.DeleteSubEvent(ctx, subEventID); err != nil {
		return err
	}
	s.logger.Info().Int64("eventID", sub.EventID).Int64("subEventID", subEventID).Msg("Sub-event deleted")
	return nil
}
