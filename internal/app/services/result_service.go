package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/auth"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// ResultService manages results and gallery images of managed events
type ResultService interface {
	ListResults(ctx context.Context, actor auth.Actor, eventID int64) ([]models.ResultDetail, error)
	CreateResult(ctx context.Context, actor auth.Actor, subEventID int64, req *dto.CreateResultRequest) (*models.EventResult, error)
	DeleteResult(ctx context.Context, actor auth.Actor, resultID int64) error

	ListGallery(ctx context.Context, actor auth.Actor, eventID int64) ([]models.GalleryItem, error)
	UploadGalleryImage(ctx context.Context, actor auth.Actor, eventID int64, subEventID *int64, caption *string, upload *filestorage.Upload) (*models.GalleryItem, error)
	DeleteGalleryImage(ctx context.Context, actor auth.Actor, itemID int64) error
}

type resultServiceImpl struct {
	events  EventStore
	results ResultStore
	authz   *auth.AuthorizationService
	blobs   filestorage.BlobStore
	clock   helpers.Clock
	logger  zerolog.Logger
}

// NewResultService creates a new ResultService
func NewResultService(events EventStore, results ResultStore, authz *auth.AuthorizationService, blobs filestorage.BlobStore, clock helpers.Clock, logger zerolog.Logger) ResultService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &resultServiceImpl{events: events, results: results, authz: authz, blobs: blobs, clock: clock, logger: logger}
}

func (s *resultServiceImpl) ListResults(ctx context.Context, actor auth.Actor, eventID int64) ([]models.ResultDetail, error) {
	if err := s.authz.RequireEventManager(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.results.ListByEvent(ctx, eventID)
}

// CreateResult records a placing. Positions may repeat for ties.
func (s *resultServiceImpl) CreateResult(ctx context.Context, actor auth.Actor, subEventID int64, req *dto.CreateResultRequest) (*models.EventResult, error) {
	sub, err := s.events.GetSubEvent(ctx, subEventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireEventManager(ctx, actor, sub.EventID); err != nil {
		return nil, err
	}
	if req.Position < 1 {
		return nil, apperrors.NewValidationError("position must be at least 1")
	}
	if req.UserID == nil && (req.TeamName == nil || *req.TeamName == "") {
		return nil, apperrors.NewValidationError("a result needs a user or a team name")
	}

	return s.results.CreateResult(ctx, map[string]interface{}{
		"sub_event_id": subEventID,
		"user_id":      req.UserID,
		"position":     req.Position,
		"team_name":    req.TeamName,
		"remarks":      req.Remarks,
	})
}

func (s *resultServiceImpl) DeleteResult(ctx context.Context, actor auth.Actor, resultID int64) error {
	result, err := s.results.GetResult(ctx, resultID)
	if err != nil {
		return err
	}
	sub, err := s.events.GetSubEvent(ctx, result.SubEventID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireEventManager(ctx, actor, sub.EventID); err != nil {
		return err
	}
	return s.results.DeleteResult(ctx, resultID)
}

func (s *resultServiceImpl) ListGallery(ctx context.Context, actor auth.Actor, eventID int64) ([]models.GalleryItem, error) {
	if err := s.authz.RequireEventManager(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.results.ListGallery(ctx, eventID)
}

// UploadGalleryImage stores an image for an event, optionally tagged with one of its sub-events.
func (s *resultServiceImpl) UploadGalleryImage(ctx context.Context, actor auth.Actor, eventID int64, subEventID *int64, caption *string, upload *filestorage.Upload) (*models.GalleryItem, error) {
	if err := s.authz.RequireEventManager(ctx, actor, eventID); err != nil {
		return nil, err
	}
	if err := upload.RequireImage(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if subEventID != nil {
		sub, err := s.events.GetSubEvent(ctx, *subEventID)
		if err != nil {
			return nil, err
		}
		if sub.EventID != eventID {
			return nil, apperrors.NewValidationError("sub-event does not belong to this event")
		}
	}

	url, err := s.blobs.Upload(ctx, filestorage.BucketEventGallery, filestorage.GalleryPath(eventID, upload.Name, s.clock()), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	item, err := s.results.CreateGalleryItem(ctx, map[string]interface{}{
		"event_id":     eventID,
		"sub_event_id": subEventID,
		"image_url":    url,
		"caption":      caption,
		"uploaded_by":  actor.UserID,
	})
	if err != nil {
		removeBlob(ctx, s.blobs, filestorage.BucketEventGallery, &url, s.logger)
		return nil, err
	}
	return item, nil
}

// DeleteGalleryImage removes the gallery row and its blob
func (s *resultServiceImpl) DeleteGalleryImage(ctx context.Context, actor auth.Actor, itemID int64) error {
	item, err := s.results.GetGalleryItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireEventManager(ctx, actor, item.EventID); err != nil {
		return err
	}
	if err := s.results.DeleteGalleryItem(ctx, itemID); err != nil {
		return err
	}
	removeBlob(ctx, s.blobs, filestorage.BucketEventGallery, &item.ImageURL, s.logger)
	return nil
}
