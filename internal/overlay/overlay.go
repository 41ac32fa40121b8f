package overlay

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// Default annotation style, matching the service's visual identity:
// cyan outlines three pixels wide, no labels.
const (
	DefaultStrokeColor = "#00FFFF"
	DefaultStrokeWidth = 3
)

// Options control how recognized lines are painted onto an image.
//
// The zero value is usable: New fills an empty StrokeColor and a
// non-positive StrokeWidth with the defaults above.
type Options struct {
	// StrokeColor is the outline color as a hex string like "#00FFFF".
	StrokeColor string `json:"stroke_color" yaml:"stroke_color"`

	// StrokeWidth is the outline thickness in pixels.
	StrokeWidth int `json:"stroke_width" yaml:"stroke_width"`

	// DrawLabels paints each line's recognized text next to its outline.
	DrawLabels bool `json:"draw_labels" yaml:"draw_labels"`
}

// DefaultOptions returns the stock annotation style.
func DefaultOptions() Options {
	return Options{
		StrokeColor: DefaultStrokeColor,
		StrokeWidth: DefaultStrokeWidth,
		DrawLabels:  false,
	}
}

// Line is one region to annotate: a bounding polygon in pixel coordinates
// of the source image, and the text drawn when labels are enabled.
type Line struct {
	Text    string
	Polygon []image.Point
}

// Result contains the annotated image and drawing statistics.
type Result struct {
	// Image is the annotated copy of the source. The source image itself
	// is never modified.
	Image *image.RGBA

	// LinesDrawn counts the polygons that were outlined.
	LinesDrawn int

	// LinesSkipped counts the polygons dropped for having fewer than two
	// vertices. Skipping is silent; a degenerate polygon is not an error.
	LinesSkipped int
}

// EncodedImage is the serialized form of an annotated image, ready for a
// JSON response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode serializes the annotated image as base64-encoded PNG.
func (r *Result) Encode() (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := r.Image.Bounds()
	return &EncodedImage{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
