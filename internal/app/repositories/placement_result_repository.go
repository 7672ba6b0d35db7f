package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
)

// PlacementResultRepository handles offers made to candidates
type PlacementResultRepository struct {
	results *Table[models.PlacementResult]
}

// NewPlacementResultRepository creates a new PlacementResultRepository
func NewPlacementResultRepository(conn db.DBTX) *PlacementResultRepository {
	return &PlacementResultRepository{
		results: NewTable[models.PlacementResult](conn, "placement_results", "placement result", true),
	}
}

// List returns results with candidate and job names, optionally for one job, newest first.
func (r *PlacementResultRepository) List(ctx context.Context, jobID *int64) ([]models.PlacementResultDetail, error) {
	where := squirrel.And{}
	if jobID != nil {
		where = append(where, squirrel.Eq{"pr.job_id": *jobID})
	}
	q := psql.Select("pr.*", "COALESCE(p.name, '') AS name", "u.email", "j.title AS job_title", "c.name AS company_name").
		From("placement_results pr").
		Join("users u ON u.id = pr.user_id").
		Join("job_postings j ON j.id = pr.job_id").
		Join("companies c ON c.id = j.company_id").
		LeftJoin("profiles p ON p.user_id = pr.user_id").
		Where(where).
		OrderBy("pr.created_at DESC")
	return selectRows[models.PlacementResultDetail](ctx, r.results.db, q)
}

// GetByID retrieves a placement result by ID
func (r *PlacementResultRepository) GetByID(ctx context.Context, id int64) (*models.PlacementResult, error) {
	return r.results.GetByID(ctx, id)
}

// Create inserts a result. One result per (job, user).
func (r *PlacementResultRepository) Create(ctx context.Context, fields map[string]interface{}) (*models.PlacementResult, error) {
	res, err := r.results.Insert(ctx, fields)
	if dberrors.IsDuplicateConstraintError(err, "placement_results_job_user_key") {
		return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "a result for this candidate and job already exists")
	}
	return res, err
}

// Update writes fields to a result
func (r *PlacementResultRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*models.PlacementResult, error) {
	return r.results.Update(ctx, id, fields)
}

// Delete removes a result
func (r *PlacementResultRepository) Delete(ctx context.Context, id int64) error {
	return r.results.Delete(ctx, id)
}

// CountPlacements returns the number of results.
func (r *PlacementResultRepository) CountPlacements(ctx context.Context) (int64, error) {
	return r.results.Count(ctx, nil)
}
