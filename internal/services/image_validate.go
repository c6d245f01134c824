package services

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// maxImageBytes caps uploads at 16MB, matching the request body limit.
const maxImageBytes = 16 << 20

// imageSignatures maps magic-byte prefixes to MIME types. Checked in order;
// the RIFF prefix is ambiguous on its own, so detection is always paired
// with a decode check.
var imageSignatures = []struct {
	mimeType  string
	signature []byte
}{
	{"image/jpeg", []byte{0xFF, 0xD8}},
	{"image/png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"image/gif", []byte{0x47, 0x49, 0x46, 0x38}},
	{"image/webp", []byte{0x52, 0x49, 0x46, 0x46}},
}

// ValidateImage checks that the payload is a decodable image of a supported
// format and returns its MIME type. Detection trusts the magic bytes, never
// the uploaded filename.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes (max %d)", len(data), maxImageBytes)
	}

	mimeType := detectImageMime(data)
	if mimeType == "" {
		return "", fmt.Errorf("unsupported image format")
	}

	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid or corrupted image: %w", err)
	}
	debugLog("Image validated: format=%s %dx%d, %d bytes", format, config.Width, config.Height, len(data))

	return mimeType, nil
}

func detectImageMime(data []byte) string {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig.signature) {
			return sig.mimeType
		}
	}
	return ""
}
