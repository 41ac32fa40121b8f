// Package textproc turns recognition geometry into plain text suitable for
// downstream language analysis.
package textproc

import (
	"strings"

	"github.com/textlens/textlens/internal/ocr"
)

// Aggregate flattens a recognition result into a single document string.
//
// Line texts are taken verbatim and joined with single spaces, walking
// blocks in order and lines within each block in order. Only the ends of
// the final document are trimmed; interior whitespace is preserved exactly
// as recognized. An empty or nil result aggregates to "".
func Aggregate(result *ocr.RecognitionResult) string {
	if result == nil {
		return ""
	}

	var parts []string
	for _, block := range result.Blocks {
		for _, line := range block.Lines {
			parts = append(parts, line.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
