package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *ImageStorageService {
	t.Helper()
	original := os.Getenv("UPLOADED_IMAGES_DIR")
	os.Setenv("UPLOADED_IMAGES_DIR", t.TempDir())
	t.Cleanup(func() { os.Setenv("UPLOADED_IMAGES_DIR", original) })
	return NewImageStorageService()
}

func TestImageStorageSaveAndDelete(t *testing.T) {
	svc := newTestStorage(t)

	filename, err := svc.SaveImage([]byte{0xFF, 0xD8, 0x01, 0x02}, "rex.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("SaveImage error: %v", err)
	}
	if !strings.HasSuffix(filename, "_rex.jpg") {
		t.Errorf("Expected _rex.jpg suffix, got %q", filename)
	}

	path := svc.GetImagePath(filename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Saved file not readable: %v", err)
	}
	if len(data) != 4 {
		t.Errorf("Expected 4 bytes on disk, got %d", len(data))
	}

	if err := svc.DeleteImage(filename); err != nil {
		t.Fatalf("DeleteImage error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file removed from disk")
	}

	// Deleting an already-deleted file is not an error.
	if err := svc.DeleteImage(filename); err != nil {
		t.Errorf("Expected repeat delete to be a no-op, got %v", err)
	}
}

func TestImageStorageRejectsEmptyData(t *testing.T) {
	svc := newTestStorage(t)
	if _, err := svc.SaveImage(nil, "rex.png", "image/png"); err == nil {
		t.Error("Expected error for empty image data")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		mimeType string
		expected string
	}{
		{"plain name", "rex.jpg", "image/jpeg", "rex.jpg"},
		{"spaces and apostrophe dropped", "My Dog's Photo.png", "image/png", "MyDogsPhoto.png"},
		{"path traversal stripped", "../../etc/passwd", "image/jpeg", "passwd"},
		{"backslash separators stripped", `..\..\evil.png`, "image/png", "evil.png"},
		{"empty falls back to mime extension", "", "image/png", "image.png"},
		{"dots only falls back", "....", "image/webp", "image.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input, tt.mimeType); got != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetImagePathStaysInStorageDir(t *testing.T) {
	svc := newTestStorage(t)
	path := svc.GetImagePath("../../etc/passwd")
	if filepath.Dir(path) != svc.GetStorageDir() {
		t.Errorf("Expected path inside %q, got %q", svc.GetStorageDir(), path)
	}
}

func TestExtensionForMime(t *testing.T) {
	tests := []struct {
		mimeType string
		expected string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"", ".jpg"},
		{"application/pdf", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := extensionForMime(tt.mimeType); got != tt.expected {
				t.Errorf("extensionForMime(%q) = %q, want %q", tt.mimeType, got, tt.expected)
			}
		})
	}
}
