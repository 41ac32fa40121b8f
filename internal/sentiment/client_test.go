package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sentimentFixture is a trimmed but structurally faithful service response
// for the document "I love this product".
const sentimentFixture = `{
  "documents": [
    {
      "id": "1",
      "sentiment": "positive",
      "confidenceScores": {"positive": 0.9823914, "neutral": 0.0152743, "negative": 0.0023343},
      "sentences": [
        {
          "sentiment": "positive",
          "confidenceScores": {"positive": 0.9823914, "neutral": 0.0152743, "negative": 0.0023343},
          "offset": 0,
          "length": 19,
          "text": "I love this product"
        }
      ],
      "warnings": []
    }
  ],
  "errors": [],
  "modelVersion": "2022-11-01"
}`

func TestAnalyzeSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if r.URL.Path != "/text/analytics/v3.1/sentiment" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Errorf("subscription key header: got %s, want test-key", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type: got %s, want application/json", got)
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if len(req.Documents) != 1 {
			t.Fatalf("documents in request: got %d, want 1", len(req.Documents))
		}
		doc := req.Documents[0]
		if doc.ID != "1" || doc.Language != "en" || doc.Text != "I love this product" {
			t.Errorf("unexpected document: %+v", doc)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sentimentFixture))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	record, err := client.AnalyzeSentiment(context.Background(), "I love this product")
	if err != nil {
		t.Fatalf("AnalyzeSentiment failed: %v", err)
	}

	if record.Sentiment != Positive {
		t.Errorf("Sentiment: got %s, want positive", record.Sentiment)
	}
	// Scores must arrive verbatim, without any rounding.
	if record.Confidence.Positive != 0.9823914 {
		t.Errorf("positive score: got %v, want 0.9823914", record.Confidence.Positive)
	}
	if record.Confidence.Neutral != 0.0152743 {
		t.Errorf("neutral score: got %v, want 0.0152743", record.Confidence.Neutral)
	}
	if record.Confidence.Negative != 0.0023343 {
		t.Errorf("negative score: got %v, want 0.0023343", record.Confidence.Negative)
	}

	if len(record.Sentences) != 1 {
		t.Fatalf("sentences: got %d, want 1", len(record.Sentences))
	}
	sentence := record.Sentences[0]
	if sentence.Text != "I love this product" {
		t.Errorf("sentence text: got %q", sentence.Text)
	}
	if sentence.Sentiment != Positive {
		t.Errorf("sentence sentiment: got %s, want positive", sentence.Sentiment)
	}
	if sentence.Offset != 0 || sentence.Length != 19 {
		t.Errorf("sentence location: got offset %d length %d, want 0/19", sentence.Offset, sentence.Length)
	}
}

func TestAnalyzeSentiment_MixedLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"documents": [{
				"id": "1",
				"sentiment": "mixed",
				"confidenceScores": {"positive": 0.5, "neutral": 0.0, "negative": 0.5},
				"sentences": [
					{"sentiment":"positive","confidenceScores":{"positive":1.0,"neutral":0.0,"negative":0.0},"offset":0,"length":9,"text":"Great().."},
					{"sentiment":"negative","confidenceScores":{"positive":0.0,"neutral":0.0,"negative":1.0},"offset":10,"length":9,"text":"Awful().."}
				]
			}],
			"errors": []
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	record, err := client.AnalyzeSentiment(context.Background(), "Great().. Awful()..")
	if err != nil {
		t.Fatalf("AnalyzeSentiment failed: %v", err)
	}
	if record.Sentiment != Mixed {
		t.Errorf("Sentiment: got %s, want mixed", record.Sentiment)
	}
	if len(record.Sentences) != 2 {
		t.Errorf("sentences: got %d, want 2", len(record.Sentences))
	}
}

func TestAnalyzeSentiment_UnknownLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"documents": [{
				"id": "1",
				"sentiment": "enthusiastic",
				"confidenceScores": {"positive": 1.0, "neutral": 0.0, "negative": 0.0},
				"sentences": []
			}],
			"errors": []
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.AnalyzeSentiment(context.Background(), "some text")
	if err == nil {
		t.Fatal("expected an error for an unknown sentiment label")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error should be a *ServiceError, got %T", err)
	}
	if !strings.Contains(svcErr.Error(), "enthusiastic") {
		t.Errorf("error should name the offending label, got %q", svcErr.Error())
	}
}

func TestAnalyzeSentiment_DocumentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"documents": [],
			"errors": [{"id":"1","error":{"code":"InvalidDocument","message":"Document text is empty."}}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.AnalyzeSentiment(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error for a rejected document")
	}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error should be a *ServiceError, got %T", err)
	}
	if svcErr.Op != "sentiment" {
		t.Errorf("Op: got %s, want sentiment", svcErr.Op)
	}
}

func TestAnalyzeSentiment_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"429","message":"Rate limit is exceeded."}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.AnalyzeSentiment(context.Background(), "some text")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error should be a *ServiceError, got %T", err)
	}
	if svcErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode: got %d, want 429", svcErr.StatusCode)
	}
}

func TestAnalyzeSentiment_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"documents": [], "errors": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	_, err := client.AnalyzeSentiment(context.Background(), "some text")
	if err == nil {
		t.Fatal("expected an error when the response carries no documents")
	}
}

func TestAnalyzeSentiment_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, "test-key", time.Second)
	_, err := client.AnalyzeSentiment(context.Background(), "some text")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error should be a *ServiceError, got %T", err)
	}
	if svcErr.StatusCode != 0 {
		t.Errorf("StatusCode without a response: got %d, want 0", svcErr.StatusCode)
	}
}

func TestAnalyzeSentiment_CustomLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if got := req.Documents[0].Language; got != "de" {
			t.Errorf("language: got %s, want de", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sentimentFixture))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)
	client.Language = "de"
	if _, err := client.AnalyzeSentiment(context.Background(), "Sehr gut"); err != nil {
		t.Fatalf("AnalyzeSentiment failed: %v", err)
	}
}
