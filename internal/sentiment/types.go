package sentiment

// Wire types mirroring the language service's JSON. The service batches
// documents; this client always submits exactly one per call, so responses
// are reduced back to a single Record.

type analyzeRequest struct {
	Documents []wireDocument `json:"documents"`
}

type wireDocument struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type analyzeResponse struct {
	Documents    []wireResult        `json:"documents"`
	Errors       []wireDocumentError `json:"errors"`
	ModelVersion string              `json:"modelVersion"`
}

type wireResult struct {
	ID               string         `json:"id"`
	Sentiment        string         `json:"sentiment"`
	ConfidenceScores wireConfidence `json:"confidenceScores"`
	Sentences        []wireSentence `json:"sentences"`
}

type wireConfidence struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type wireSentence struct {
	Text             string         `json:"text"`
	Sentiment        string         `json:"sentiment"`
	ConfidenceScores wireConfidence `json:"confidenceScores"`
	Offset           int            `json:"offset"`
	Length           int            `json:"length"`
}

type wireDocumentError struct {
	ID    string `json:"id"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// serviceFault is the request-level error envelope on non-2xx responses.
type serviceFault struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toRecord converts one wire document result into the exported model.
func (w *wireResult) toRecord() *Record {
	record := &Record{
		Sentiment:  Label(w.Sentiment),
		Confidence: Confidence(w.ConfidenceScores),
		Sentences:  make([]Sentence, 0, len(w.Sentences)),
	}
	for _, s := range w.Sentences {
		record.Sentences = append(record.Sentences, Sentence{
			Text:       s.Text,
			Sentiment:  Label(s.Sentiment),
			Confidence: Confidence(s.ConfidenceScores),
			Offset:     s.Offset,
			Length:     s.Length,
		})
	}
	return record
}
