package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultLanguage = "en"
)

// ServiceError describes a failed call to the language service.
//
// StatusCode is zero when the request never produced an HTTP response. The
// service can also reject an individual document inside a 200 response; that
// surfaces as a ServiceError carrying the response status and the document
// error as its cause.
type ServiceError struct {
	// Op is the logical operation that failed, e.g. "sentiment".
	Op string

	// StatusCode is the HTTP status returned by the service, or 0 when no
	// response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("language %s: service returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("language %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client calls the language service's sentiment endpoint over HTTP.
//
// A Client holds no per-request state and is safe for concurrent use.
type Client struct {
	endpoint string
	key      string
	httpc    *http.Client

	// Language is the ISO 639-1 hint sent with every document.
	// NewClient sets it to "en".
	Language string
}

// NewClient creates a sentiment client for the given service endpoint.
// A zero or negative timeout selects the 30 second default. Requests are
// never retried.
func NewClient(endpoint, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		httpc:    &http.Client{Timeout: timeout},
		Language: defaultLanguage,
	}
}

// AnalyzeSentiment classifies a document and returns its label, confidence
// scores, and per-sentence breakdown, all exactly as the service reported
// them.
//
// The document is submitted as a single-element batch. All failures,
// including a document-level rejection inside a successful response, are
// reported as *ServiceError.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (*Record, error) {
	reqBody := analyzeRequest{
		Documents: []wireDocument{{ID: "1", Language: c.Language, Text: text}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ServiceError{Op: "sentiment", Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	url := c.endpoint + "/text/analytics/v3.1/sentiment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &ServiceError{Op: "sentiment", Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &ServiceError{Op: "sentiment", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Op: "sentiment", StatusCode: resp.StatusCode, Err: readFault(resp.Body)}
	}

	var wire analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &ServiceError{Op: "sentiment", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(wire.Errors) > 0 {
		docErr := wire.Errors[0].Error
		return nil, &ServiceError{
			Op:         "sentiment",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("document rejected: %s: %s", docErr.Code, docErr.Message),
		}
	}
	if len(wire.Documents) == 0 {
		return nil, &ServiceError{Op: "sentiment", StatusCode: resp.StatusCode, Err: errors.New("response contains no documents")}
	}

	record := wire.Documents[0].toRecord()
	if !record.Sentiment.Valid() {
		return nil, &ServiceError{
			Op:         "sentiment",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response carries unknown sentiment label %q", record.Sentiment),
		}
	}
	for _, s := range record.Sentences {
		if !s.Sentiment.Valid() {
			return nil, &ServiceError{
				Op:         "sentiment",
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("response carries unknown sentence label %q", s.Sentiment),
			}
		}
	}
	return record, nil
}

// readFault extracts the service's error envelope from a failed response,
// falling back to the raw body when the envelope is absent or malformed.
func readFault(r io.Reader) error {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return fmt.Errorf("failed to read error body: %w", err)
	}

	var fault serviceFault
	if err := json.Unmarshal(body, &fault); err == nil && fault.Error.Code != "" {
		return fmt.Errorf("%s: %s", fault.Error.Code, fault.Error.Message)
	}
	return errors.New(strings.TrimSpace(string(body)))
}
