package sentiment

// Label classifies the overall feeling of a document or sentence.
type Label string

// Labels returned by the language service. Mixed appears only at document
// level, when individual sentences disagree.
const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
	Mixed    Label = "mixed"
)

// Valid reports whether l is one of the labels the service defines.
func (l Label) Valid() bool {
	switch l {
	case Positive, Neutral, Negative, Mixed:
		return true
	}
	return false
}

// Confidence holds the per-label probability scores for one classification.
// Scores are carried exactly as the service reported them, without any
// rounding, and sum to approximately 1.0.
type Confidence struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Sentence is the classification of a single sentence within the document.
type Sentence struct {
	// Text is the sentence as segmented by the service.
	Text string `json:"text"`

	// Sentiment is the sentence-level label.
	Sentiment Label `json:"sentiment"`

	// Confidence holds the sentence-level scores.
	Confidence Confidence `json:"confidence"`

	// Offset and Length locate the sentence within the submitted document,
	// in UTF-16 code units as counted by the service.
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// Record is the complete sentiment analysis of one document.
type Record struct {
	// Sentiment is the document-level label.
	Sentiment Label `json:"sentiment"`

	// Confidence holds the document-level scores.
	Confidence Confidence `json:"confidence"`

	// Sentences contains the per-sentence breakdown in document order.
	Sentences []Sentence `json:"sentences"`
}
