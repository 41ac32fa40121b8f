package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"net/http"

	"github.com/disintegration/imaging"
)

// MaxImageBytes is the largest image payload accepted for analysis: 20 MiB.
//
// Payloads above this size are rejected before any decoding or network call
// happens, so oversized uploads cost nothing beyond reading the bytes.
const MaxImageBytes = 20 * 1024 * 1024

var (
	// ErrEmptyImage is returned when a payload contains zero bytes.
	ErrEmptyImage = errors.New("image payload is empty")

	// ErrImageTooLarge is returned when a payload exceeds MaxImageBytes.
	ErrImageTooLarge = errors.New("image payload exceeds 20 MiB size limit")
)

// Validate checks an image payload against the acceptance rules shared by
// every ingestion surface (HTTP upload, CLI file, test fixture).
//
// Returns:
//   - ErrEmptyImage if the payload has zero bytes
//   - ErrImageTooLarge if the payload is larger than MaxImageBytes
//   - nil otherwise
//
// A payload of exactly MaxImageBytes is accepted. Validate looks only at the
// byte count; it does not attempt to decode the payload, so malformed image
// data passes validation and fails later at decode time.
func Validate(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}
	if len(data) > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// Decode parses an image payload into pixels.
//
// Supported formats are PNG, JPEG, GIF, BMP, and TIFF. The concrete return
// type depends on the source format and color model (e.g., *image.NRGBA,
// *image.YCbCr).
//
// Decode does not enforce the size rules; call Validate first when handling
// untrusted input.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DetectContentType sniffs the MIME type of a payload from its leading
// bytes, e.g. "image/png" or "image/jpeg". Unrecognized data reports
// "application/octet-stream".
func DetectContentType(data []byte) string {
	return http.DetectContentType(data)
}

// Info describes an image payload without holding its decoded pixels.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoded format name: "png", "jpeg", "gif", "bmp", or
	// "tiff". Detection is based on the payload's magic bytes, not on any
	// file name.
	Format string `json:"format"`

	// MimeType is the sniffed MIME type of the payload.
	MimeType string `json:"mime_type"`

	// SizeBytes is the payload length in bytes.
	SizeBytes int `json:"size_bytes"`
}

// Inspect validates a payload and reports its dimensions and format.
//
// Only the image header is parsed, so Inspect is cheap even for payloads
// near the size limit. Returns the Validate sentinels for empty or
// oversized payloads, or a decode error for data that is not an image.
func Inspect(data []byte) (*Info, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	return &Info{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		MimeType:  DetectContentType(data),
		SizeBytes: len(data),
	}, nil
}

// Thumbnail scales an image down to fit within maxWidth x maxHeight while
// preserving its aspect ratio. Images already inside the box are returned
// at their original size. Used for the small previews pushed to streaming
// clients, where full-resolution frames would waste bandwidth.
func Thumbnail(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}
