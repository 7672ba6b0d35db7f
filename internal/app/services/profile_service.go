package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/campushub/internal/app/models"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/apperrors"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
	"github.com/yigit/campushub/internal/pkg/validation"
)

// ProfileService defines the interface for a user's own profile
type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID int64, upload *filestorage.Upload) (*models.Profile, error)
}

// profileServiceImpl implements ProfileService
type profileServiceImpl struct {
	users  UserStore
	blobs  filestorage.BlobStore
	clock  helpers.Clock
	logger zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(users UserStore, blobs filestorage.BlobStore, clock helpers.Clock, logger zerolog.Logger) ProfileService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &profileServiceImpl{users: users, blobs: blobs, clock: clock, logger: logger}
}

// GetProfile retrieves the profile of a user
func (s *profileServiceImpl) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	return s.users.GetProfileByUserID(ctx, userID)
}

// UpdateProfile writes the fields present in req
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	fields := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty")
		}
		fields["name"] = name
	}
	if req.StudentID != nil {
		if *req.StudentID == "" {
			fields["student_id"] = nil
		} else if !validation.CompiledPatterns.StudentID.MatchString(*req.StudentID) {
			return nil, apperrors.NewValidationError("invalid student ID format")
		} else {
			fields["student_id"] = *req.StudentID
		}
	}
	if req.Department != nil {
		fields["department"] = nullIfBlank(*req.Department)
	}
	if req.Year != nil {
		fields["year"] = *req.Year
	}
	if req.Phone != nil {
		if *req.Phone != "" && !validation.CompiledPatterns.Phone.MatchString(*req.Phone) {
			return nil, apperrors.NewValidationError("invalid phone number")
		}
		fields["phone"] = nullIfBlank(*req.Phone)
	}
	if req.CGPA != nil {
		if !(validation.FloatRange{Min: 0, Max: 10}).Contains(req.CGPA) {
			return nil, apperrors.NewValidationError("cgpa must be between 0 and 10")
		}
		fields["cgpa"] = *req.CGPA
	}

	if len(fields) == 0 {
		return s.users.GetProfileByUserID(ctx, userID)
	}
	return s.users.UpdateProfile(ctx, userID, fields)
}

// UploadAvatar stores a new avatar, points the profile at it and removes the old blob.
func (s *profileServiceImpl) UploadAvatar(ctx context.Context, userID int64, upload *filestorage.Upload) (*models.Profile, error) {
	if err := upload.RequireImage(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	current, err := s.users.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.Upload(ctx, filestorage.BucketAvatars, filestorage.AvatarPath(userID, upload.Ext, s.clock()), upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	updated, err := s.users.UpdateProfile(ctx, userID, map[string]interface{}{"avatar_url": url})
	if err != nil {
		if path, ok := s.blobs.PathFromURL(filestorage.BucketAvatars, url); ok {
			_ = s.blobs.Delete(ctx, filestorage.BucketAvatars, path)
		}
		return nil, err
	}

	removeBlob(ctx, s.blobs, filestorage.BucketAvatars, current.AvatarURL, s.logger)
	return updated, nil
}

// removeBlob deletes the object behind a stored public URL. Failures are logged only.
func removeBlob(ctx context.Context, blobs filestorage.BlobStore, bucket string, url *string, logger zerolog.Logger) {
	if url == nil || *url == "" {
		return
	}
	path, ok := blobs.PathFromURL(bucket, *url)
	if !ok {
		return
	}
	if err := blobs.Delete(ctx, bucket, path); err != nil {
		logger.Warn().Err(err).Str("bucket", bucket).Str("path", path).Msg("Failed to delete replaced file")
	}
}

func nullIfBlank(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.TrimSpace(s)
}
