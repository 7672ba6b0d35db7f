package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// JobFilter narrows the admin job list.
type JobFilter struct {
	Status    *models.JobStatus
	CompanyID *int64
}

// JobRepository handles job postings
type JobRepository struct {
	jobs *Table[models.JobPosting]
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(conn db.DBTX) *JobRepository {
	return &JobRepository{jobs: NewTable[models.JobPosting](conn, "job_postings", "job posting", true)}
}

func listingQuery() squirrel.SelectBuilder {
	return psql.Select("j.*", "c.name AS company_name", "c.logo_url AS company_logo_url").
		From("job_postings j").
		Join("companies c ON c.id = j.company_id")
}

// ListOpen returns open postings with their company, earliest deadline first.
func (r *JobRepository) ListOpen(ctx context.Context) ([]models.JobListing, error) {
	q := listingQuery().
		Where(squirrel.Eq{"j.status": string(models.JobStatusOpen)}).
		OrderBy("j.deadline ASC NULLS LAST", "j.id")
	return selectRows[models.JobListing](ctx, r.jobs.db, q)
}

// List returns postings for the placement cell, newest first.
func (r *JobRepository) List(ctx context.Context, f JobFilter) ([]models.JobListing, error) {
	where := squirrel.And{}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"j.status": string(*f.Status)})
	}
	if f.CompanyID != nil {
		where = append(where, squirrel.Eq{"j.company_id": *f.CompanyID})
	}
	q := listingQuery().Where(where).OrderBy("j.created_at DESC")
	return selectRows[models.JobListing](ctx, r.jobs.db, q)
}

// GetByID retrieves a job posting by ID
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.JobPosting, error) {
	return r.jobs.GetByID(ctx, id)
}

// GetListing retrieves a job posting with its company.
func (r *JobRepository) GetListing(ctx context.Context, id int64) (*models.JobListing, error) {
	return selectOne[models.JobListing](ctx, r.jobs.db, listingQuery().Where(squirrel.Eq{"j.id": id}), func() error {
		return apperrors.NewResourceNotFoundError("job posting not found")
	})
}

// Create inserts a job posting
func (r *JobRepository) Create(ctx context.Context, fields map[string]interface{}) (*models.JobPosting, error) {
	return r.jobs.Insert(ctx, fields)
}

// Update writes fields to a posting. A non-nil expected enables the optimistic check.
func (r *JobRepository) Update(ctx context.Context, id int64, fields map[string]interface{}, expected *time.Time) (*models.JobPosting, error) {
	if expected != nil {
		return r.jobs.UpdateIfUnchanged(ctx, id, fields, *expected)
	}
	return r.jobs.Update(ctx, id, fields)
}

// UpdateFromStatus writes fields together with a status change, guarded on
// the stored status (and updated_at when expected is set).
func (r *JobRepository) UpdateFromStatus(ctx context.Context, id int64, fields map[string]interface{}, from models.JobStatus, expected *time.Time) (*models.JobPosting, error) {
	return r.jobs.UpdateGuarded(ctx, id, statusGuard(string(from), expected), fields)
}

// Delete removes a posting
func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	return r.jobs.Delete(ctx, id)
}

// CountJobs returns the number of postings.
func (r *JobRepository) CountJobs(ctx context.Context) (int64, error) {
	return r.jobs.Count(ctx, nil)
}
