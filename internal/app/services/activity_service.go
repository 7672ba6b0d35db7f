package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/repositories"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// ActivityService covers event participation and sub-event registrations
type ActivityService interface {
	JoinEvent(ctx context.Context, actor auth.Actor, eventID int64) (*models.EventParticipant, error)
	LeaveEvent(ctx context.Context, actor auth.Actor, eventID int64) error
	Register(ctx context.Context, actor auth.Actor, subEventID int64, req *dto.RegisterSubEventRequest) (*models.EventRegistration, error)
	MyEvents(ctx context.Context, actor auth.Actor) (*dto.MyEventsResponse, error)

	ListRegistrations(ctx context.Context, actor auth.Actor, subEventID int64, status string) ([]dto.RegistrationStatusOptions, error)
	UpdateRegistrationStatus(ctx context.Context, actor auth.Actor, registrationID int64, to models.RegistrationStatus) (*models.EventRegistration, error)
}

type activityServiceImpl struct {
	events        EventStore
	participants  CoordinatorStore
	registrations RegistrationStore
	authz         *auth.AuthorizationService
	notifier      Notifier
	recorder      TransitionRecorder
	clock         helpers.Clock
	logger        zerolog.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	events EventStore,
	participants CoordinatorStore,
	registrations RegistrationStore,
	authz *auth.AuthorizationService,
	notifier Notifier,
	recorder TransitionRecorder,
	clock helpers.Clock,
	logger zerolog.Logger,
) ActivityService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &activityServiceImpl{
		events:        events,
		participants:  participants,
		registrations: registrations,
		authz:         authz,
		notifier:      notifier,
		recorder:      recorder,
		clock:         clock,
		logger:        logger,
	}
}

// JoinEvent records the actor as a participant. Joining twice is harmless.
func (s *activityServiceImpl) JoinEvent(ctx context.Context, actor auth.Actor, eventID int64) (*models.EventParticipant, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Status.IsPublic() {
		return nil, apperrors.NewResourceNotFoundError("event not found")
	}
	if !event.Status.AcceptsRegistrations() {
		return nil, apperrors.NewConflictError("event is no longer accepting participants")
	}
	return s.participants.JoinEvent(ctx, eventID, actor.UserID)
}

// LeaveEvent removes the participant row. Existing registrations are kept.
func (s *activityServiceImpl) LeaveEvent(ctx context.Context, actor auth.Actor, eventID int64) error {
	return s.participants.LeaveEvent(ctx, eventID, actor.UserID)
}

// checkTeam applies the team rules of a sub-event. The team size counts the registrant.
func checkTeam(sub *models.SubEvent, req *dto.RegisterSubEventRequest) (*string, []string, error) {
	if !sub.IsTeamEvent {
		return nil, nil, nil
	}

	if req.TeamName == nil || strings.TrimSpace(*req.TeamName) == "" {
		return nil, nil, apperrors.NewValidationError("team name is required for team events")
	}
	name := strings.TrimSpace(*req.TeamName)

	members := make([]string, 0, len(req.TeamMembers))
	for _, m := range req.TeamMembers {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}

	size := int32(len(members) + 1)
	if sub.TeamSizeMin != nil && size < *sub.TeamSizeMin {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("team must have at least %d members", *sub.TeamSizeMin))
	}
	if sub.TeamSizeMax != nil && size > *sub.TeamSizeMax {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("team can have at most %d members", *sub.TeamSizeMax))
	}
	return &name, members, nil
}

// Register signs the actor up for a sub-event. A full sub-event places the
// registration on the waitlist.
func (s *activityServiceImpl) Register(ctx context.Context, actor auth.Actor, subEventID int64, req *dto.RegisterSubEventRequest) (*models.EventRegistration, error) {
	sub, err := s.events.GetSubEvent(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, sub.EventID)
	if err != nil {
		return nil, err
	}

	joined, err := s.participants.IsParticipant(ctx, event.ID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	existing, err := s.registrations.FindForUser(ctx, subEventID, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	switch models.SubEventAction(models.RegistrationContext{
		EventStatus:       event.Status,
		IsParticipant:     joined,
		AlreadyRegistered: existing != nil,
		Open:              models.RegistrationOpen(sub, s.clock()),
	}) {
	case models.ActionRequiresEventRegistration:
		return nil, apperrors.NewForbiddenError("join the event before registering for its activities")
	case models.ActionAlreadyRegistered:
		return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "already registered for this activity")
	case models.ActionRegistrationClosed:
		return nil, apperrors.NewConflictError("registration is closed")
	}

	teamName, members, err := checkTeam(sub, req)
	if err != nil {
		return nil, err
	}

	reg, err := s.registrations.Register(ctx, repositories.NewRegistration{
		SubEventID:  subEventID,
		UserID:      actor.UserID,
		TeamName:    teamName,
		TeamMembers: members,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("subEventID", subEventID).
		Int64("userID", actor.UserID).
		Str("status", string(reg.Status)).
		Msg("Registered for sub-event")
	return reg, nil
}

// MyEvents returns the actor's joined events and registrations
func (s *activityServiceImpl) MyEvents(ctx context.Context, actor auth.Actor) (*dto.MyEventsResponse, error) {
	ids, err := s.participants.ListParticipatingEventIDs(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined events: %w", err)
	}
	regs, err := s.registrations.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return &dto.MyEventsResponse{JoinedEventIDs: ids, Registrations: regs}, nil
}

// ListRegistrations lists the registrations of a managed sub-event with the
// statuses each may move to.
func (s *activityServiceImpl) ListRegistrations(ctx context.Context, actor auth.Actor, subEventID int64, status string) ([]dto.RegistrationStatusOptions, error) {
	sub, err := s.events.GetSubEvent(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireEventManager(ctx, actor, sub.EventID); err != nil {
		return nil, err
	}

	var filter *models.RegistrationStatus
	if status != "" {
		st, err := models.ParseRegistrationStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}

	rows, err := s.registrations.ListBySubEvent(ctx, subEventID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RegistrationStatusOptions, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.RegistrationStatusOptions{
			Registrant:   r,
			NextStatuses: models.NextRegistrationStatuses(r.Status),
		})
	}
	return out, nil
}

// UpdateRegistrationStatus moves a registration along the registration graph
// and notifies the registrant. Writing the current status is a no-op.
func (s *activityServiceImpl) UpdateRegistrationStatus(ctx context.Context, actor auth.Actor, registrationID int64, to models.RegistrationStatus) (*models.EventRegistration, error) {
	if !to.Valid() {
		return nil, apperrors.NewCustomError(apperrors.ErrUnknownStatus, "unknown registration status: "+string(to))
	}

	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	sub, err := s.events.GetSubEvent(ctx, reg.SubEventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireEventManager(ctx, actor, sub.EventID); err != nil {
		return nil, err
	}

	if reg.Status == to {
		return reg, nil
	}
	if err := models.ValidateRegistrationTransition(reg.Status, to); err != nil {
		return nil, err
	}

	updated, err := s.registrations.UpdateStatus(ctx, registrationID, reg.Status, to)
	if err != nil {
		return nil, err
	}
	s.recorder.ObserveTransition("registration", string(to))

	s.logger.Info().
		Int64("registrationID", registrationID).
		Int64("actorID", actor.UserID).
		Str("from", string(reg.Status)).
		Str("to", string(to)).
		Msg("Registration status changed")

	if s.notifier != nil {
		s.notifier.Notify(ctx, Notification{
			UserID: updated.UserID,
			Kind:   NotifyRegistrationStatus,
			Title:  fmt.Sprintf("Registration %s: %s", to, sub.Name),
			Body:   fmt.Sprintf("Your registration for %s is now %s.", sub.Name, to),
			Link:   "/my-events",
			Data:   map[string]interface{}{"registrationId": updated.ID, "subEventId": sub.ID, "status": to},
		})
	}
	return updated, nil
}
