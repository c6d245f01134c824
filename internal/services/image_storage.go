package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStorageService handles storing and retrieving uploaded pet images
type ImageStorageService struct {
	storageDir string
}

// NewImageStorageService creates a new image storage service
func NewImageStorageService() *ImageStorageService {
	storageDir := os.Getenv("UPLOADED_IMAGES_DIR")
	if storageDir == "" {
		storageDir = "./data/uploads"
	}

	// Ensure the storage directory exists
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		// Log error but don't fail - will fail on actual writes
		fmt.Printf("Warning: could not create uploads directory: %v\n", err)
	}

	return &ImageStorageService{
		storageDir: storageDir,
	}
}

// SaveImage saves image data to disk and returns the stored filename. The
// name prefixes a fresh UUID to a sanitized form of the client's original
// filename, so uploads never collide and a crafted name cannot escape the
// storage directory.
func (s *ImageStorageService) SaveImage(imageData []byte, originalName, mimeType string) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	filename := uuid.New().String() + "_" + sanitizeFilename(originalName, mimeType)
	filePath := filepath.Join(s.storageDir, filename)

	if err := os.WriteFile(filePath, imageData, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return filename, nil
}

// GetImagePath returns the full path to an image file. The filename is
// reduced to its base component so it always resolves inside the storage
// directory.
func (s *ImageStorageService) GetImagePath(filename string) string {
	return filepath.Join(s.storageDir, filepath.Base(filename))
}

// DeleteImage removes an image file from disk
func (s *ImageStorageService) DeleteImage(filename string) error {
	if filename == "" {
		return nil
	}

	filePath := s.GetImagePath(filename)

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil // Already deleted
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// GetStorageDir returns the storage directory path
func (s *ImageStorageService) GetStorageDir() string {
	return s.storageDir
}

// sanitizeFilename reduces a client-supplied filename to a safe basename.
// Path separators and anything outside [A-Za-z0-9._-] are dropped. When
// nothing usable remains, a generic name with the MIME type's extension is
// used instead.
func sanitizeFilename(name, mimeType string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "image" + extensionForMime(mimeType)
	}
	return cleaned
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
