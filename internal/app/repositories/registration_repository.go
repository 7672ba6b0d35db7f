package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
)

// activeStatuses are the registration states that take up a seat.
var activeStatuses = []string{
	string(models.RegistrationStatusPending),
	string(models.RegistrationStatusConfirmed),
}

// NewRegistration is a student's request for a seat.
type NewRegistration struct {
	SubEventID  int64
	UserID      int64
	TeamName    *string
	TeamMembers []string
}

// RegistrationRepository handles sub-event registrations
type RegistrationRepository struct {
	tx            db.Transactor
	registrations *Table[models.EventRegistration]
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(conn db.DBTX, tx db.Transactor) *RegistrationRepository {
	return &RegistrationRepository{
		tx:            tx,
		registrations: NewTable[models.EventRegistration](conn, "event_registrations", "registration", true),
	}
}

// GetByID retrieves a registration by ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*models.EventRegistration, error) {
	return r.registrations.GetByID(ctx, id)
}

// FindForUser returns userID's registration for a sub-event, or nil when there is none.
func (r *RegistrationRepository) FindForUser(ctx context.Context, subEventID, userID int64) (*models.EventRegistration, error) {
	rows, err := r.registrations.Query(ctx, ListOptions{
		Where: squirrel.Eq{"sub_event_id": subEventID, "user_id": userID},
		Limit: 1,
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// ListForUserInEvent returns userID's registrations across the sub-events of one event.
func (r *RegistrationRepository) ListForUserInEvent(ctx context.Context, eventID, userID int64) ([]models.EventRegistration, error) {
	q := psql.Select("r.*").
		From("event_registrations r").
		Join("sub_events s ON s.id = r.sub_event_id").
		Where(squirrel.Eq{"s.event_id": eventID, "r.user_id": userID})
	return selectRows[models.EventRegistration](ctx, r.registrations.db, q)
}

// CountActive returns the seats taken in a sub-event.
func (r *RegistrationRepository) CountActive(ctx context.Context, subEventID int64) (int64, error) {
	return r.registrations.Count(ctx, squirrel.Eq{"sub_event_id": subEventID, "status": activeStatuses})
}

// CountActiveByEvent returns the seats taken per sub-event of an event.
func (r *RegistrationRepository) CountActiveByEvent(ctx context.Context, eventID int64) (map[int64]int64, error) {
	sql, args, err := psql.Select("r.sub_event_id", "COUNT(*)").
		From("event_registrations r").
		Join("sub_events s ON s.id = r.sub_event_id").
		Where(squirrel.Eq{"s.event_id": eventID, "r.status": activeStatuses}).
		GroupBy("r.sub_event_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build registration count query: %w", err)
	}
	rows, err := r.registrations.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}

	counts := make(map[int64]int64)
	var subEventID, count int64
	if _, err := pgx.ForEachRow(rows, []any{&subEventID, &count}, func() error {
		counts[subEventID] = count
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to scan registration counts: %w", err)
	}
	return counts, nil
}

// Register inserts a registration while holding a lock on the sub-event row, so
// the seat count it checks cannot change underneath it. When the sub-event is
// full the registration is created as waitlisted.
func (r *RegistrationRepository) Register(ctx context.Context, reg NewRegistration) (*models.EventRegistration, error) {
	var created *models.EventRegistration
	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lock, args, err := psql.Select("*").From("sub_events").
			Where(squirrel.Eq{"id": reg.SubEventID}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return err
		}
		rows, err := tx.Query(ctx, lock, args...)
		if err != nil {
			return err
		}
		sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[models.SubEvent])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewResourceNotFoundError("sub-event not found")
			}
			return err
		}

		table := r.registrations.WithDB(tx)
		active, err := table.Count(ctx, squirrel.Eq{"sub_event_id": reg.SubEventID, "status": activeStatuses})
		if err != nil {
			return err
		}

		status := models.RegistrationStatusPending
		if models.CapacityReached(sub, active) {
			status = models.RegistrationStatusWaitlisted
		}

		created, err = table.Insert(ctx, map[string]interface{}{
			"sub_event_id": reg.SubEventID,
			"user_id":      reg.UserID,
			"team_name":    reg.TeamName,
			"team_members": reg.TeamMembers,
			"status":       string(status),
		})
		if dberrors.IsDuplicateConstraintError(err, "event_registrations_sub_event_user_key") {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "already registered for this activity")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateStatus moves a registration from one status to another. If the stored
// status is no longer from, the write is rejected as a conflict.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.RegistrationStatus) (*models.EventRegistration, error) {
	return r.registrations.UpdateGuarded(ctx, id, squirrel.Eq{"status": string(from)}, map[string]interface{}{"status": string(to)})
}

// ListBySubEvent returns the registrants of a sub-event, oldest first.
func (r *RegistrationRepository) ListBySubEvent(ctx context.Context, subEventID int64, status *models.RegistrationStatus) ([]models.Registrant, error) {
	where := squirrel.And{squirrel.Eq{"r.sub_event_id": subEventID}}
	if status != nil {
		where = append(where, squirrel.Eq{"r.status": string(*status)})
	}
	q := psql.Select("r.id", "r.sub_event_id", "r.user_id", "r.team_name", "r.team_members", "r.status",
		"r.created_at", "r.updated_at",
		"COALESCE(p.name, '') AS name", "u.email", "p.student_id", "p.department").
		From("event_registrations r").
		Join("users u ON u.id = r.user_id").
		LeftJoin("profiles p ON p.user_id = r.user_id").
		Where(where).
		OrderBy("r.created_at", "r.id")
	return selectRows[models.Registrant](ctx, r.registrations.db, q)
}

// ListByUser returns a student's registrations with their sub-event and event, newest first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]models.RegistrationDetail, error) {
	q := psql.Select("r.id", "r.sub_event_id", "r.user_id", "r.team_name", "r.team_members", "r.status",
		"r.created_at", "r.updated_at",
		"s.name AS sub_event_name", "e.id AS event_id", "e.name AS event_name",
		"e.slug AS event_slug", "e.status AS event_status").
		From("event_registrations r").
		Join("sub_events s ON s.id = r.sub_event_id").
		Join("events e ON e.id = s.event_id").
		Where(squirrel.Eq{"r.user_id": userID}).
		OrderBy("r.created_at DESC")
	return selectRows[models.RegistrationDetail](ctx, r.registrations.db, q)
}

// CountRegistrations returns the number of registrations.
func (r *RegistrationRepository) CountRegistrations(ctx context.Context) (int64, error) {
	return r.registrations.Count(ctx, nil)
}
