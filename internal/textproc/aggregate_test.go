package textproc

import (
	"testing"

	"github.com/textlens/textlens/internal/ocr"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		result *ocr.RecognitionResult
		want   string
	}{
		{
			name:   "nil result",
			result: nil,
			want:   "",
		},
		{
			name:   "empty result",
			result: &ocr.RecognitionResult{},
			want:   "",
		},
		{
			name: "single line",
			result: &ocr.RecognitionResult{Blocks: []ocr.TextBlock{
				{Lines: []ocr.TextLine{{Text: "HELLO WORLD"}}},
			}},
			want: "HELLO WORLD",
		},
		{
			name: "lines joined within a block",
			result: &ocr.RecognitionResult{Blocks: []ocr.TextBlock{
				{Lines: []ocr.TextLine{{Text: "HELLO"}, {Text: "WORLD"}}},
			}},
			want: "HELLO WORLD",
		},
		{
			name: "blocks joined in order",
			result: &ocr.RecognitionResult{Blocks: []ocr.TextBlock{
				{Lines: []ocr.TextLine{{Text: "first block"}}},
				{Lines: []ocr.TextLine{{Text: "second"}, {Text: "block"}}},
			}},
			want: "first block second block",
		},
		{
			name: "surrounding whitespace trimmed",
			result: &ocr.RecognitionResult{Blocks: []ocr.TextBlock{
				{Lines: []ocr.TextLine{{Text: "  padded  "}}},
			}},
			want: "padded",
		},
		{
			name: "interior whitespace preserved",
			result: &ocr.RecognitionResult{Blocks: []ocr.TextBlock{
				{Lines: []ocr.TextLine{{Text: "tabs\tinside"}, {Text: "stay"}}},
			}},
			want: "tabs\tinside stay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.result); got != tt.want {
				t.Errorf("Aggregate: got %q, want %q", got, tt.want)
			}
		})
	}
}
