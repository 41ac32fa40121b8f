package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Video index states reported by the service. Uploaded and Processing are
// transient; Processed and Failed are terminal.
const (
	StateUploaded   = "Uploaded"
	StateProcessing = "Processing"
	StateProcessed  = "Processed"
	StateFailed     = "Failed"
)

const (
	defaultTimeout      = 2 * time.Minute
	defaultPollInterval = 10 * time.Second
)

// ErrIndexingFailed reports that the service reached the Failed state for a
// video and will not produce an index for it.
var ErrIndexingFailed = errors.New("video indexing failed")

// ServiceError describes a failed call to the video indexing service.
type ServiceError struct {
	// Op is the logical operation that failed: "upload" or "index".
	Op string

	// StatusCode is the HTTP status returned by the service, or 0 when no
	// response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("indexer %s: service returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("indexer %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Insights is a video's index document. Raw carries the service's JSON
// verbatim; consumers receive it untouched so that nothing in this layer
// has to chase the service's evolving schema. State is extracted from the
// document for flow control.
type Insights struct {
	State string
	Raw   json.RawMessage
}

// Client calls the video indexing service over HTTP.
type Client struct {
	endpoint string
	key      string
	httpc    *http.Client
}

// NewClient creates a video indexing client. Uploads can be slow, so the
// default timeout is 2 minutes; pass a positive timeout to override it.
func NewClient(endpoint, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Upload streams a video to the service and returns the id assigned to it.
// The video body is sent as a multipart upload without buffering it in
// memory.
func (c *Client) Upload(ctx context.Context, name string, video io.Reader) (string, error) {
	uploadURL := fmt.Sprintf("%s/videos?name=%s", c.endpoint, url.QueryEscape(name))

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, video); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, pr)
	if err != nil {
		return "", &ServiceError{Op: "upload", Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &ServiceError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{Op: "upload", StatusCode: resp.StatusCode, Err: readFault(resp.Body)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &ServiceError{Op: "upload", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if created.ID == "" {
		return "", &ServiceError{Op: "upload", Err: errors.New("response contains no video id")}
	}

	return created.ID, nil
}

// Index fetches a video's index document. The document is returned verbatim
// in Insights.Raw regardless of its state, so callers can expose it without
// reshaping.
func (c *Client) Index(ctx context.Context, videoID string) (*Insights, error) {
	indexURL := fmt.Sprintf("%s/videos/%s/index", c.endpoint, url.PathEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, &ServiceError{Op: "index", Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &ServiceError{Op: "index", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Op: "index", StatusCode: resp.StatusCode, Err: readFault(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Op: "index", Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var doc struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ServiceError{Op: "index", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &Insights{State: doc.State, Raw: body}, nil
}

// WaitProcessed polls a video's index until it reaches the Processed state
// and returns the final document. A video that reaches Failed yields
// ErrIndexingFailed. Polling stops early with the context's error when ctx
// ends. A non-positive interval selects the 10 second default.
func (c *Client) WaitProcessed(ctx context.Context, videoID string, interval time.Duration) (*Insights, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		insights, err := c.Index(ctx, videoID)
		if err != nil {
			return nil, err
		}

		switch insights.State {
		case StateProcessed:
			return insights, nil
		case StateFailed:
			return nil, fmt.Errorf("video %s: %w", videoID, ErrIndexingFailed)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// readFault extracts the service's error envelope from a failed response,
// falling back to the raw body when the envelope is absent or malformed.
func readFault(r io.Reader) error {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return fmt.Errorf("failed to read error body: %w", err)
	}

	var fault struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &fault); err == nil && fault.Error.Code != "" {
		return fmt.Errorf("%s: %s", fault.Error.Code, fault.Error.Message)
	}
	return errors.New(strings.TrimSpace(string(body)))
}
