package indexer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestUpload(t *testing.T) {
	videoBytes := []byte("fake video content")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if r.URL.Path != "/videos" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "demo clip" {
			t.Errorf("name query: got %q, want %q", got, "demo clip")
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("subscription key header: got %s", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing multipart file field: %v", err)
		}
		defer file.Close()
		if header.Filename != "demo clip" {
			t.Errorf("filename: got %q, want %q", header.Filename, "demo clip")
		}
		body, _ := io.ReadAll(file)
		if !bytes.Equal(body, videoBytes) {
			t.Errorf("uploaded bytes do not match: got %d bytes", len(body))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"vid-42","state":"Uploaded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	id, err := client.Upload(context.Background(), "demo clip", bytes.NewReader(videoBytes))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if id != "vid-42" {
		t.Errorf("id: got %s, want vid-42", id)
	}
}

func TestUpload_Fault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"AlreadyExists","message":"video name in use"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.Upload(context.Background(), "dup", bytes.NewReader([]byte("x")))

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error should be a *ServiceError, got %T", err)
	}
	if svcErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode: got %d, want 409", svcErr.StatusCode)
	}
	if svcErr.Op != "upload" {
		t.Errorf("Op: got %s, want upload", svcErr.Op)
	}
}

func TestUpload_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	if _, err := client.Upload(context.Background(), "clip", bytes.NewReader([]byte("x"))); err == nil {
		t.Error("Upload should fail when the response carries no id")
	}
}

func TestIndex(t *testing.T) {
	rawDoc := `{"state":"Processing","name":"demo","videos":[{"insights":{"sentiments":[]}}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method: got %s, want GET", r.Method)
		}
		if r.URL.Path != "/videos/vid-42/index" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(rawDoc))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	insights, err := client.Index(context.Background(), "vid-42")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	if insights.State != StateProcessing {
		t.Errorf("State: got %s, want Processing", insights.State)
	}
	// The document must pass through byte for byte.
	if string(insights.Raw) != rawDoc {
		t.Errorf("Raw was reshaped:\ngot  %s\nwant %s", insights.Raw, rawDoc)
	}
}

func TestIndex_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NotFound","message":"no such video"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.Index(context.Background(), "missing")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error should be a *ServiceError, got %T", err)
	}
	if svcErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode: got %d, want 404", svcErr.StatusCode)
	}
}

func TestWaitProcessed(t *testing.T) {
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if polls.Add(1) < 3 {
			w.Write([]byte(`{"state":"Processing"}`))
			return
		}
		w.Write([]byte(`{"state":"Processed","summary":"done"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	insights, err := client.WaitProcessed(context.Background(), "vid-42", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitProcessed failed: %v", err)
	}

	if insights.State != StateProcessed {
		t.Errorf("State: got %s, want Processed", insights.State)
	}
	if got := polls.Load(); got != 3 {
		t.Errorf("polls: got %d, want 3", got)
	}
}

func TestWaitProcessed_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state":"Failed"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.WaitProcessed(context.Background(), "vid-42", 10*time.Millisecond)
	if !errors.Is(err, ErrIndexingFailed) {
		t.Errorf("error: got %v, want ErrIndexingFailed", err)
	}
}

func TestWaitProcessed_ContextEnds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state":"Processing"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.WaitProcessed(ctx, "vid-42", 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error: got %v, want context.DeadlineExceeded", err)
	}
}
