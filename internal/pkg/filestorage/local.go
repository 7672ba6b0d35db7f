package filestorage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yigit/campushub/internal/pkg/logger"
)

// LocalStorage keeps buckets as directories under basePath and serves them from baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates the base directory and one directory per bucket.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	for bucket := range knownBuckets {
		dir := filepath.Join(basePath, bucket)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage directory")
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	logger.Info().Str("path", basePath).Msg("Local storage directories ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// cleanObjectPath rejects absolute paths and any attempt to leave the bucket.
func cleanObjectPath(objectPath string) (string, error) {
	if objectPath == "" || strings.HasPrefix(objectPath, "/") || strings.Contains(objectPath, "\\") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(objectPath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func (ls *LocalStorage) resolve(bucket, objectPath string) (string, string, error) {
	if !knownBuckets[bucket] {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownBucket, bucket)
	}
	cleaned, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(ls.basePath, bucket, filepath.FromSlash(cleaned)), nil
}

// Upload implements BlobStore.
func (ls *LocalStorage) Upload(ctx context.Context, bucket, objectPath string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cleaned, physicalPath, err := ls.resolve(bucket, objectPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(physicalPath), 0o755); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to create object directory")
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	// Write to a temp file first so readers never see a partial object.
	tmp := physicalPath + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", tmp).Msg("Failed to write object")
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(tmp, physicalPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	url := ls.baseURL + "/" + bucket + "/" + cleaned
	logger.Info().Str("bucket", bucket).Str("object", cleaned).Int("bytes", len(data)).Msg("Object stored")
	return url, nil
}

// Delete implements BlobStore.
func (ls *LocalStorage) Delete(ctx context.Context, bucket, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, physicalPath, err := ls.resolve(bucket, objectPath)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("Object to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete object")
		return fmt.Errorf("failed to delete object: %w", err)
	}

	logger.Info().Str("bucket", bucket).Str("object", objectPath).Msg("Object deleted")
	return nil
}

// PathFromURL implements BlobStore.
func (ls *LocalStorage) PathFromURL(bucket, publicURL string) (string, bool) {
	prefix := ls.baseURL + "/" + bucket + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	objectPath := strings.TrimPrefix(publicURL, prefix)
	if _, err := cleanObjectPath(objectPath); err != nil {
		return "", false
	}
	return objectPath, true
}
