package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/pkg/email"
	"github.com/yigit/campushub/internal/pkg/metrics"
	"github.com/yigit/campushub/internal/pkg/websocket"
)

// Notification kinds.
const (
	NotifyRegistrationStatus = "registration_status"
	NotifyApplicationStatus  = "application_status"
	NotifyPlacementResult    = "placement_result"
	NotifyRolesChanged       = "roles_changed"
)

// Notification is a message for one user.
type Notification struct {
	UserID int64
	Kind   string
	Title  string
	Body   string
	Link   string
	Data   interface{}
}

// Notifier delivers notifications. Delivery is best effort and never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Pusher sends a message to a user's live sockets.
type Pusher interface {
	SendToUser(message *websocket.Message) error
}

// NotificationService pushes notifications over the websocket hub and e-mails them.
type NotificationService struct {
	pusher  Pusher
	mailer  email.EmailService
	users   UserStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
	async   bool
}

// NewNotificationService creates a NotificationService. mailer and users may be
// nil to disable e-mail.
func NewNotificationService(pusher Pusher, mailer email.EmailService, users UserStore, m *metrics.Metrics, logger zerolog.Logger) *NotificationService {
	return &NotificationService{pusher: pusher, mailer: mailer, users: users, metrics: m, logger: logger, async: true}
}

// Notify implements Notifier.
func (s *NotificationService) Notify(ctx context.Context, n Notification) {
	if n.UserID <= 0 {
		return
	}

	if s.pusher != nil {
		err := s.pusher.SendToUser(&websocket.Message{
			Type:   n.Kind,
			UserID: n.UserID,
			Title:  n.Title,
			Body:   n.Body,
			Link:   n.Link,
			Data:   n.Data,
		})
		s.observe("websocket", err)
	}

	if s.mailer == nil || s.users == nil {
		return
	}
	if s.async {
		go s.sendEmail(context.WithoutCancel(ctx), n)
		return
	}
	s.sendEmail(ctx, n)
}

func (s *NotificationService) sendEmail(ctx context.Context, n Notification) {
	profile, err := s.users.GetProfileByUserID(ctx, n.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", n.UserID).Msg("No recipient for notification email")
		s.observe("email", err)
		return
	}

	err = s.mailer.SendNotification(profile.Email, profile.Name, email.Message{
		Subject:  n.Title,
		Headline: n.Title,
		Body:     n.Body,
		LinkPath: n.Link,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", n.UserID).Str("kind", n.Kind).Msg("Failed to send notification email")
	}
	s.observe("email", err)
}

func (s *NotificationService) observe(channel string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	s.metrics.ObserveNotification(channel, outcome)
}
