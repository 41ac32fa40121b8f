package ocr

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
	apiVersion     = "2023-10-01"
	defaultTimeout = 30 * time.Second
)

// ServiceError describes a failed call to the text recognition service.
//
// StatusCode is zero when the request never produced an HTTP response
// (network failure, timeout, cancelled context). Callers can detect service
// failures with errors.As and inspect the status to map them onto their own
// error surface.
type ServiceError struct {
	// Op is the logical operation that failed, e.g. "analyze".
	Op string

	// StatusCode is the HTTP status returned by the service, or 0 when no
	// response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("vision %s: service returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("vision %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client calls the image analysis service's read feature over HTTP.
//
// The zero value is not usable; construct clients with NewClient. A Client
// holds no per-request state and is safe for concurrent use.
type Client struct {
	endpoint string
	key      string
	httpc    *http.Client
}

// NewClient creates a read-text client for the given service endpoint.
//
// Parameters:
//   - endpoint: Base URL of the service, e.g. "https://myaccount.example.com".
//     A trailing slash is tolerated.
//   - key: Subscription key sent with every request.
//   - timeout: Per-request ceiling covering the full exchange. Zero or
//     negative selects the 30 second default.
//
// Requests are never retried. A failed call surfaces immediately as a
// *ServiceError and the caller decides what happens next.
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

// RecognizeText submits an image payload for text recognition and returns
// the recognized lines with their bounding polygons.
//
// The payload is sent as-is in the request body; the service detects the
// image format itself. An image containing no text yields a non-nil result
// with zero blocks, not an error. All failures are reported as
// *ServiceError.
func (c *Client) RecognizeText(ctx context.Context, data []byte) (*RecognitionResult, error) {
	url := fmt.Sprintf("%s/computervision/imageanalysis:analyze?api-version=%s&features=read",
		c.endpoint, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &ServiceError{Op: "analyze", Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &ServiceError{Op: "analyze", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Op: "analyze", StatusCode: resp.StatusCode, Err: readFault(resp.Body)}
	}

	var wire analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &ServiceError{Op: "analyze", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return wire.toResult(), nil
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
