package ocr

// Point is a single vertex of a bounding polygon, in pixel coordinates of
// the source image. The origin is the top-left corner, with X growing right
// and Y growing down.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Word is a recognized word with its location and recognition confidence.
type Word struct {
	// Text is the recognized word content.
	Text string `json:"text"`

	// Polygon is the bounding polygon around the word, usually four vertices.
	Polygon []Point `json:"polygon"`

	// Confidence is the recognition confidence score (0.0 to 1.0).
	// Higher values indicate more certain recognition.
	Confidence float64 `json:"confidence"`
}

// TextLine is a single line of recognized text with its bounding polygon.
type TextLine struct {
	// Text is the full line content as recognized by the service.
	Text string `json:"text"`

	// Polygon is the bounding polygon around the line, in source image
	// coordinates. The service usually returns four vertices, but callers
	// must not rely on a fixed count.
	Polygon []Point `json:"polygon"`

	// Words breaks the line into individual words with per-word confidence.
	Words []Word `json:"words,omitempty"`
}

// TextBlock groups lines that the service considers one contiguous region,
// such as a paragraph or a sign.
type TextBlock struct {
	Lines []TextLine `json:"lines"`
}

// RecognitionResult contains the complete outcome of a read request.
//
// A result with no blocks is a valid outcome, not an error: it means the
// service found no text in the image. Use IsEmpty to branch on that case.
type RecognitionResult struct {
	// ModelVersion is the service model that produced this result.
	ModelVersion string `json:"model_version,omitempty"`

	// ImageWidth and ImageHeight are the source image dimensions as
	// measured by the service.
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`

	// Blocks contains the recognized text regions in the service's
	// reading order.
	Blocks []TextBlock `json:"blocks"`
}

// IsEmpty reports whether the service found no text at all.
func (r *RecognitionResult) IsEmpty() bool {
	for _, b := range r.Blocks {
		if len(b.Lines) > 0 {
			return false
		}
	}
	return true
}

// Lines flattens the result into a single slice, preserving the service's
// order: blocks first, then lines within each block. Overlay rendering and
// text aggregation both iterate in exactly this order.
func (r *RecognitionResult) Lines() []TextLine {
	var lines []TextLine
	for _, b := range r.Blocks {
		lines = append(lines, b.Lines...)
	}
	return lines
}

// LineCount returns the total number of recognized lines across all blocks.
func (r *RecognitionResult) LineCount() int {
	n := 0
	for _, b := range r.Blocks {
		n += len(b.Lines)
	}
	return n
}
