package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Upload limits.
const (
	MaxImageSize    = 5 << 20
	MaxDocumentSize = 10 << 20
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a file read from a multipart request.
type Upload struct {
	Name        string
	Ext         string
	ContentType string
	Data        []byte
}

// ReadUpload reads a multipart file fully, enforcing maxBytes.
func ReadUpload(fh *multipart.FileHeader, maxBytes int64) (*Upload, error) {
	if fh == nil {
		return nil, fmt.Errorf("%w: no file", ErrInvalidPath)
	}
	if fh.Size > maxBytes {
		return nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}

	return &Upload{
		Name:        sanitizeName(fh.Filename),
		Ext:         strings.ToLower(filepath.Ext(fh.Filename)),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

// RequireImage checks the sniffed content type and normalizes the extension.
func (u *Upload) RequireImage() error {
	ext, ok := imageTypes[u.ContentType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileType, u.ContentType)
	}
	if u.Ext == "" || (u.Ext != ext && !(ext == ".jpg" && u.Ext == ".jpeg")) {
		u.Ext = ext
	}
	return nil
}

// RequirePDF checks that the upload is a PDF document.
func (u *Upload) RequirePDF() error {
	if u.ContentType != "application/pdf" {
		return fmt.Errorf("%w: %s", ErrFileType, u.ContentType)
	}
	u.Ext = ".pdf"
	return nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// AvatarPath is {userId}/{userId}-{unix}{ext}.
func AvatarPath(userID int64, ext string, now time.Time) string {
	return fmt.Sprintf("%d/%d-%d%s", userID, userID, now.Unix(), ext)
}

// BannerPath is {eventId}/{unix}{ext}.
func BannerPath(eventID int64, ext string, now time.Time) string {
	return fmt.Sprintf("%d/%d%s", eventID, now.Unix(), ext)
}

// GalleryPath is {eventId}/{unix}-{name}.
func GalleryPath(eventID int64, name string, now time.Time) string {
	return fmt.Sprintf("%d/%d-%s", eventID, now.Unix(), sanitizeName(name))
}

// LogoPath is {companyId}/{unix}{ext}.
func LogoPath(companyID int64, ext string, now time.Time) string {
	return fmt.Sprintf("%d/%d%s", companyID, now.Unix(), ext)
}

// DocumentPath is {ownerId}/{unix}-{name}, used for resumes, offer letters and job descriptions.
func DocumentPath(ownerID int64, name string, now time.Time) string {
	return fmt.Sprintf("%d/%d-%s", ownerID, now.Unix(), sanitizeName(name))
}
