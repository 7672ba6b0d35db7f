package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/db"
)

// ResultRepository handles sub-event results and the event gallery
type ResultRepository struct {
	results *Table[models.EventResult]
	gallery *Table[models.GalleryItem]
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(conn db.DBTX) *ResultRepository {
	return &ResultRepository{
		results: NewTable[models.EventResult](conn, "event_results", "result", false),
		gallery: NewTable[models.GalleryItem](conn, "event_gallery", "gallery item", false),
	}
}

func (r *ResultRepository) detailQuery() squirrel.SelectBuilder {
	return psql.Select("er.id", "er.sub_event_id", "er.user_id", "er.position", "er.team_name",
		"er.remarks", "er.created_at", "s.name AS sub_event_name", "p.name AS winner_name").
		From("event_results er").
		Join("sub_events s ON s.id = er.sub_event_id").
		LeftJoin("profiles p ON p.user_id = er.user_id")
}

// ListByEvent returns the results of every sub-event of an event, by sub-event then position.
func (r *ResultRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.ResultDetail, error) {
	q := r.detailQuery().
		Where(squirrel.Eq{"s.event_id": eventID}).
		OrderBy("s.id", "er.position", "er.id")
	return selectRows[models.ResultDetail](ctx, r.results.db, q)
}

// ListBySubEvent returns the results of one sub-event by position.
func (r *ResultRepository) ListBySubEvent(ctx context.Context, subEventID int64) ([]models.ResultDetail, error) {
	q := r.detailQuery().
		Where(squirrel.Eq{"er.sub_event_id": subEventID}).
		OrderBy("er.position", "er.id")
	return selectRows[models.ResultDetail](ctx, r.results.db, q)
}

// GetResult retrieves a result by ID
func (r *ResultRepository) GetResult(ctx context.Context, id int64) (*models.EventResult, error) {
	return r.results.GetByID(ctx, id)
}

// CreateResult inserts a result. Positions are not unique; ties are allowed.
func (r *ResultRepository) CreateResult(ctx context.Context, fields map[string]interface{}) (*models.EventResult, error) {
	return r.results.Insert(ctx, fields)
}

// DeleteResult removes a result
func (r *ResultRepository) DeleteResult(ctx context.Context, id int64) error {
	return r.results.Delete(ctx, id)
}

// ListGallery returns the images of an event, newest first.
func (r *ResultRepository) ListGallery(ctx context.Context, eventID int64) ([]models.GalleryItem, error) {
	return r.gallery.Query(ctx, ListOptions{
		Where:   squirrel.Eq{"event_id": eventID},
		OrderBy: []string{"created_at DESC", "id DESC"},
	})
}

// GetGalleryItem retrieves a gallery item by ID
func (r *ResultRepository) GetGalleryItem(ctx context.Context, id int64) (*models.GalleryItem, error) {
	return r.gallery.GetByID(ctx, id)
}

// CreateGalleryItem inserts a gallery item
func (r *ResultRepository) CreateGalleryItem(ctx context.Context, fields map[string]interface{}) (*models.GalleryItem, error) {
	return r.gallery.Insert(ctx, fields)
}

// DeleteGalleryItem removes a gallery item
func (r *ResultRepository) DeleteGalleryItem(ctx context.Context, id int64) error {
	return r.gallery.Delete(ctx, id)
}
