package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/dberrors"
)

// ApplicantFilter narrows the applicant list.
type ApplicantFilter struct {
	JobID  *int64
	Status *models.ApplicationStatus
}

// ApplicationRepository handles placement applications
type ApplicationRepository struct {
	applications *Table[models.PlacementApplication]
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(conn db.DBTX) *ApplicationRepository {
	return &ApplicationRepository{
		applications: NewTable[models.PlacementApplication](conn, "placement_applications", "application", true),
	}
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.PlacementApplication, error) {
	return r.applications.GetByID(ctx, id)
}

// FindForUser returns userID's application to a job, or nil when there is none.
func (r *ApplicationRepository) FindForUser(ctx context.Context, jobID, userID int64) (*models.PlacementApplication, error) {
	rows, err := r.applications.Query(ctx, ListOptions{
		Where: squirrel.Eq{"job_id": jobID, "user_id": userID},
		Limit: 1,
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// Create inserts an application. A second application to the same job is rejected.
func (r *ApplicationRepository) Create(ctx context.Context, fields map[string]interface{}) (*models.PlacementApplication, error) {
	app, err := r.applications.Insert(ctx, fields)
	if dberrors.IsDuplicateConstraintError(err, "placement_applications_job_user_key") {
		return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "already applied to this job")
	}
	return app, err
}

// UpdateStatus moves an application from one status to another. If the stored
// status is no longer from, the write is rejected as a conflict.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ApplicationStatus) (*models.PlacementApplication, error) {
	return r.applications.UpdateGuarded(ctx, id, squirrel.Eq{"status": string(from)}, map[string]interface{}{"status": string(to)})
}

// ListByUser returns a student's applications with job and company, newest first.
func (r *ApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]models.ApplicationDetail, error) {
	q := psql.Select("a.*", "j.title AS job_title", "j.status AS job_status", "c.name AS company_name").
		From("placement_applications a").
		Join("job_postings j ON j.id = a.job_id").
		Join("companies c ON c.id = j.company_id").
		Where(squirrel.Eq{"a.user_id": userID}).
		OrderBy("a.created_at DESC")
	return selectRows[models.ApplicationDetail](ctx, r.applications.db, q)
}

// ListApplicants returns applications with the applicant's profile, oldest first.
func (r *ApplicationRepository) ListApplicants(ctx context.Context, f ApplicantFilter) ([]models.Applicant, error) {
	where := squirrel.And{}
	if f.JobID != nil {
		where = append(where, squirrel.Eq{"a.job_id": *f.JobID})
	}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"a.status": string(*f.Status)})
	}
	q := psql.Select("a.*", "COALESCE(p.name, '') AS name", "u.email", "p.student_id", "p.department",
		"p.year", "p.cgpa", "j.title AS job_title").
		From("placement_applications a").
		Join("users u ON u.id = a.user_id").
		Join("job_postings j ON j.id = a.job_id").
		LeftJoin("profiles p ON p.user_id = a.user_id").
		Where(where).
		OrderBy("a.created_at", "a.id")
	return selectRows[models.Applicant](ctx, r.applications.db, q)
}

// CountApplications returns the number of applications.
func (r *ApplicationRepository) CountApplications(ctx context.Context) (int64, error) {
	return r.applications.Count(ctx, nil)
}
