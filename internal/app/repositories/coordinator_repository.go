package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
)

// CoordinatorRepository handles event coordinators and participants
type CoordinatorRepository struct {
	tx           db.Transactor
	coordinators *Table[models.EventCoordinator]
	participants *Table[models.EventParticipant]
}

// NewCoordinatorRepository creates a new CoordinatorRepository
func NewCoordinatorRepository(conn db.DBTX, tx db.Transactor) *CoordinatorRepository {
	return &CoordinatorRepository{
		tx:           tx,
		coordinators: NewTable[models.EventCoordinator](conn, "event_coordinators", "coordinator", false),
		participants: NewTable[models.EventParticipant](conn, "event_participants", "participation", false),
	}
}

// ListCoordinators returns the coordinators of an event with their names.
func (r *CoordinatorRepository) ListCoordinators(ctx context.Context, eventID int64) ([]models.CoordinatorDetail, error) {
	q := psql.Select("c.id", "c.event_id", "c.user_id", "c.created_at",
		"COALESCE(p.name, '') AS name", "u.email").
		From("event_coordinators c").
		Join("users u ON u.id = c.user_id").
		LeftJoin("profiles p ON p.user_id = c.user_id").
		Where(squirrel.Eq{"c.event_id": eventID}).
		OrderBy("c.created_at")
	return selectRows[models.CoordinatorDetail](ctx, r.coordinators.db, q)
}

// IsCoordinator reports whether userID coordinates eventID.
func (r *CoordinatorRepository) IsCoordinator(ctx context.Context, eventID, userID int64) (bool, error) {
	return r.coordinators.Exists(ctx, squirrel.Eq{"event_id": eventID, "user_id": userID})
}

// AddCoordinator assigns userID to eventID and, in the same transaction, makes
// sure the user holds the event_admin role.
func (r *CoordinatorRepository) AddCoordinator(ctx context.Context, eventID, userID int64) (*models.EventCoordinator, error) {
	var coordinator *models.EventCoordinator
	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		coordinator, err = r.coordinators.WithDB(tx).Insert(ctx, map[string]interface{}{
			"event_id": eventID,
			"user_id":  userID,
		})
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, "event_coordinators_event_user_key") {
				return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "user already coordinates this event")
			}
			return err
		}
		return insertRole(ctx, tx, userID, models.RoleEventAdmin)
	})
	if err != nil {
		return nil, err
	}
	return coordinator, nil
}

// RemoveCoordinator unassigns userID from eventID. The event_admin role is kept.
func (r *CoordinatorRepository) RemoveCoordinator(ctx context.Context, eventID, userID int64) error {
	n, err := r.coordinators.DeleteWhere(ctx, squirrel.Eq{"event_id": eventID, "user_id": userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewResourceNotFoundError("coordinator not found")
	}
	return nil
}

// IsParticipant reports whether userID opted into eventID.
func (r *CoordinatorRepository) IsParticipant(ctx context.Context, eventID, userID int64) (bool, error) {
	return r.participants.Exists(ctx, squirrel.Eq{"event_id": eventID, "user_id": userID})
}

// JoinEvent records userID as a participant of eventID. Joining twice is a no-op.
func (r *CoordinatorRepository) JoinEvent(ctx context.Context, eventID, userID int64) (*models.EventParticipant, error) {
	p, err := r.participants.Insert(ctx, map[string]interface{}{
		"event_id": eventID,
		"user_id":  userID,
	})
	if dberrors.IsDuplicateConstraintError(err, "event_participants_event_user_key") {
		return r.participants.QueryOne(ctx, squirrel.Eq{"event_id": eventID, "user_id": userID})
	}
	return p, err
}

// LeaveEvent removes the participant row. Leaving an event not joined is a no-op.
func (r *CoordinatorRepository) LeaveEvent(ctx context.Context, eventID, userID int64) error {
	_, err := r.participants.DeleteWhere(ctx, squirrel.Eq{"event_id": eventID, "user_id": userID})
	return err
}

// ListParticipatingEventIDs returns the ids of the events userID joined.
func (r *CoordinatorRepository) ListParticipatingEventIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.participants.Query(ctx, ListOptions{Where: squirrel.Eq{"user_id": userID}})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i, p := range rows {
		ids[i] = p.EventID
	}
	return ids, nil
}
