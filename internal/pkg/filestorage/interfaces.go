package filestorage

import (
	"context"
	"errors"
)

// Buckets the application writes to.
const (
	BucketAvatars         = "avatars"
	BucketEventBanners    = "event-banners"
	BucketEventGallery    = "event-gallery"
	BucketCompanyLogos    = "company-logos"
	BucketJobDescriptions = "job-descriptions"
	BucketResumes         = "resumes"
	BucketOfferLetters    = "offer-letters"
)

var knownBuckets = map[string]bool{
	BucketAvatars:         true,
	BucketEventBanners:    true,
	BucketEventGallery:    true,
	BucketCompanyLogos:    true,
	BucketJobDescriptions: true,
	BucketResumes:         true,
	BucketOfferLetters:    true,
}

var (
	ErrUnknownBucket = errors.New("unknown storage bucket")
	ErrInvalidPath   = errors.New("invalid object path")
	ErrFileTooLarge  = errors.New("file exceeds the upload size limit")
	ErrFileType      = errors.New("file type not allowed")
)

// BlobStore stores objects grouped in buckets and exposes them by public URL.
type BlobStore interface {
	// Upload writes data at bucket/objectPath, replacing any existing object, and returns its public URL.
	Upload(ctx context.Context, bucket, objectPath string, data []byte) (string, error)

	// Delete removes bucket/objectPath. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, objectPath string) error

	// PathFromURL recovers the object path from a public URL issued for bucket.
	PathFromURL(bucket, publicURL string) (string, bool)
}
