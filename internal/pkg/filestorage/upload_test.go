package filestorage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"
)

var (
	pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A rest of image")
	pdfHeader = []byte("%PDF-1.7 rest of document")
)

func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestReadUpload(t *testing.T) {
	u, err := ReadUpload(fileHeader(t, "My Photo (1).PNG", pngHeader), MaxImageSize)
	if err != nil {
		t.Fatalf("ReadUpload() error = %v", err)
	}
	if u.Name != "My_Photo__1_.PNG" {
		t.Errorf("Name = %q", u.Name)
	}
	if u.Ext != ".png" || u.ContentType != "image/png" {
		t.Errorf("Ext = %q, ContentType = %q", u.Ext, u.ContentType)
	}

	if _, err := ReadUpload(fileHeader(t, "big.pdf", bytes.Repeat([]byte("a"), 64)), 32); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized ReadUpload() error = %v, want ErrFileTooLarge", err)
	}
	if _, err := ReadUpload(nil, MaxImageSize); err == nil {
		t.Error("ReadUpload(nil) succeeded")
	}
}

func TestRequireImageAndPDF(t *testing.T) {
	img := &Upload{Name: "photo.jpeg", Ext: ".txt", ContentType: "image/png"}
	if err := img.RequireImage(); err != nil {
		t.Fatalf("RequireImage() error = %v", err)
	}
	if img.Ext != ".png" {
		t.Errorf("Ext = %q, want .png", img.Ext)
	}

	jpeg := &Upload{Ext: ".jpeg", ContentType: "image/jpeg"}
	if err := jpeg.RequireImage(); err != nil || jpeg.Ext != ".jpeg" {
		t.Errorf("RequireImage() on .jpeg = %v, ext %q", err, jpeg.Ext)
	}

	doc := &Upload{ContentType: "application/pdf"}
	if err := doc.RequireImage(); !errors.Is(err, ErrFileType) {
		t.Errorf("RequireImage() on a PDF error = %v, want ErrFileType", err)
	}
	if err := doc.RequirePDF(); err != nil || doc.Ext != ".pdf" {
		t.Errorf("RequirePDF() = %v, ext %q", err, doc.Ext)
	}

	text := &Upload{ContentType: "text/plain; charset=utf-8"}
	if err := text.RequirePDF(); !errors.Is(err, ErrFileType) {
		t.Errorf("RequirePDF() on text error = %v, want ErrFileType", err)
	}
}

func TestObjectPaths(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		got, want string
	}{
		{AvatarPath(7, ".png", now), "7/7-1700000000.png"},
		{BannerPath(3, ".jpg", now), "3/1700000000.jpg"},
		{GalleryPath(3, "team photo.jpg", now), "3/1700000000-team_photo.jpg"},
		{LogoPath(9, ".webp", now), "9/1700000000.webp"},
		{DocumentPath(7, "../cv.pdf", now), "7/1700000000-cv.pdf"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("path = %q, want %q", tt.got, tt.want)
		}
		if _, err := cleanObjectPath(tt.got); err != nil {
			t.Errorf("cleanObjectPath(%q) error = %v", tt.got, err)
		}
		if strings.Contains(tt.got, "..") {
			t.Errorf("path %q escapes its directory", tt.got)
		}
	}
}
