package services

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown test format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestValidateImageFormats(t *testing.T) {
	tests := []struct {
		format       string
		expectedMime string
	}{
		{"png", "image/png"},
		{"jpeg", "image/jpeg"},
		{"gif", "image/gif"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			mime, err := ValidateImage(encodeTestImage(t, tt.format))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if mime != tt.expectedMime {
				t.Errorf("Expected %q, got %q", tt.expectedMime, mime)
			}
		})
	}
}

func TestValidateImageRejectsEmpty(t *testing.T) {
	if _, err := ValidateImage(nil); err == nil {
		t.Error("Expected error for empty payload")
	}
}

func TestValidateImageRejectsUnsupportedFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Plain text", []byte("definitely not an image")},
		{"BMP signature", []byte{0x42, 0x4D, 0x00, 0x00}},
		{"PDF signature", []byte{0x25, 0x50, 0x44, 0x46}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImage(tt.data)
			if err == nil {
				t.Fatal("Expected error for unsupported format")
			}
			if !strings.Contains(err.Error(), "unsupported image format") {
				t.Errorf("Expected unsupported-format error, got %v", err)
			}
		})
	}
}

func TestValidateImageRejectsCorrupted(t *testing.T) {
	// Valid PNG magic bytes followed by garbage.
	data := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("garbage")...)

	_, err := ValidateImage(data)
	if err == nil {
		t.Fatal("Expected error for corrupted payload")
	}
	if !strings.Contains(err.Error(), "invalid or corrupted") {
		t.Errorf("Expected corruption error, got %v", err)
	}
}

func TestValidateImageRejectsOversized(t *testing.T) {
	data := make([]byte, maxImageBytes+1)
	data[0] = 0xFF
	data[1] = 0xD8

	_, err := ValidateImage(data)
	if err == nil {
		t.Fatal("Expected error for oversized payload")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("Expected size error, got %v", err)
	}
}
