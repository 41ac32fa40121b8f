package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/textlens/textlens/internal/indexer"
	"github.com/textlens/textlens/internal/media"
	"github.com/textlens/textlens/internal/ocr"
	"github.com/textlens/textlens/internal/overlay"
	"github.com/textlens/textlens/internal/pipeline"
	"github.com/textlens/textlens/internal/sentiment"
)

const (
	// pongWait is how long a websocket client may stay silent before the
	// read loop gives up on it.
	pongWait = 60 * time.Second

	// pingPeriod is how often the server pings each client. It must be
	// shorter than pongWait so healthy clients always answer in time.
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// analyzeResponse is the JSON document returned by the analyze endpoint.
//
// Recognition carries the full line and word geometry from the vision
// service, Annotated the rendered overlay as base64 PNG. Sentiment is
// omitted when the image contained no readable text.
type analyzeResponse struct {
	ID           string                 `json:"id"`
	MediaType    string                 `json:"media_type"`
	ImageWidth   int                    `json:"image_width"`
	ImageHeight  int                    `json:"image_height"`
	Document     string                 `json:"document"`
	LinesDrawn   int                    `json:"lines_drawn"`
	LinesSkipped int                    `json:"lines_skipped"`
	Recognition  *ocr.RecognitionResult `json:"recognition"`
	Sentiment    *sentiment.Record      `json:"sentiment,omitempty"`
	Annotated    *overlay.EncodedImage  `json:"annotated"`
}

type videoUploadResponse struct {
	ID string `json:"video_id"`
}

type errorBody struct {
	Error string `json:"error"`
}

// handleAnalyze accepts an image, runs it through the pipeline, and
// returns the recognition result, annotated overlay, and sentiment as
// one JSON document.
//
// The image arrives either as a multipart form with an "image" field or
// as the raw request body. Optional "labels", "stroke", and "width"
// values, taken from form fields or the query string, override the
// annotation style for this request only.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, err := imagePayload(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, media.ErrImageTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read image payload: "+err.Error())
		return
	}

	pipe, err := s.requestPipeline(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := pipe.Analyze(r.Context(), data)
	if err != nil {
		s.writeAnalyzeError(w, err)
		return
	}

	resp, err := newAnalyzeResponse(analysis, media.DetectContentType(data))
	if err != nil {
		s.log.Error("failed to encode annotated image: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to encode annotated image")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// requestPipeline returns the pipeline for this request. When the
// request carries annotation overrides, the shared pipeline is cloned
// with a renderer built from the overridden style; otherwise the shared
// pipeline is returned as-is.
func (s *Server) requestPipeline(r *http.Request) (*pipeline.Pipeline, error) {
	opts := s.overlay
	overridden := false

	if v := r.FormValue("labels"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid labels value %q", v)
		}
		opts.DrawLabels = b
		overridden = true
	}
	if v := r.FormValue("stroke"); v != "" {
		opts.StrokeColor = v
		overridden = true
	}
	if v := r.FormValue("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid width value %q", v)
		}
		opts.StrokeWidth = n
		overridden = true
	}

	if !overridden {
		return s.pipe, nil
	}
	renderer, err := overlay.New(opts)
	if err != nil {
		return nil, err
	}
	return s.pipe.WithRenderer(renderer), nil
}

// handleVideoUpload forwards a multipart "video" field to the indexing
// service and returns the assigned video ID.
func (s *Server) handleVideoUpload(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		writeError(w, http.StatusServiceUnavailable, "video indexing is not configured")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing video field")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	if name == "" {
		name = "upload"
	}

	id, err := s.indexer.Upload(r.Context(), name, file)
	if err != nil {
		s.writeIndexerError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, videoUploadResponse{ID: id})
}

// handleVideoIndex proxies the indexing service's insight document for
// one video. The upstream body is returned verbatim so callers see the
// full insight schema, including fields this server does not model.
func (s *Server) handleVideoIndex(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		writeError(w, http.StatusServiceUnavailable, "video indexing is not configured")
		return
	}

	insights, err := s.indexer.Index(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeIndexerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(insights.Raw)
}

// handleWebsocket upgrades the connection and subscribes it to the
// pipeline activity feed. The client is not expected to send anything;
// the read loop exists to notice disconnects and answer pings.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warning("websocket upgrade failed: %v", err)
		return
	}

	s.hub.Register(conn)
	defer s.hub.Unregister(conn)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go pingLoop(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pingLoop pings the client until a write fails, which happens once the
// connection is closed by either side.
func pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		deadline := time.Now().Add(5 * time.Second)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			return
		}
	}
}

// imagePayload pulls the image bytes out of the request, accepting
// either a multipart form with an "image" field or a raw body. Reads
// are capped just past the pipeline's size limit so oversized payloads
// fail validation instead of buffering without bound.
func imagePayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageBytes+(1<<20))

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, media.MaxImageBytes+1))
	}
	return io.ReadAll(r.Body)
}

func newAnalyzeResponse(a *pipeline.Analysis, mediaType string) (*analyzeResponse, error) {
	encoded, err := a.Annotated.Encode()
	if err != nil {
		return nil, err
	}
	return &analyzeResponse{
		ID:           a.ID,
		MediaType:    mediaType,
		ImageWidth:   a.ImageWidth,
		ImageHeight:  a.ImageHeight,
		Document:     a.Document,
		LinesDrawn:   a.Annotated.LinesDrawn,
		LinesSkipped: a.Annotated.LinesSkipped,
		Recognition:  a.Recognition,
		Sentiment:    a.Sentiment,
		Annotated:    encoded,
	}, nil
}

// writeAnalyzeError maps pipeline failures onto HTTP status codes:
// invalid payloads are the client's fault, upstream service failures
// surface as 502, and anything else is a 500.
func (s *Server) writeAnalyzeError(w http.ResponseWriter, err error) {
	var (
		visionErr   *ocr.ServiceError
		languageErr *sentiment.ServiceError
	)
	switch {
	case errors.Is(err, media.ErrEmptyImage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, media.ErrImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &visionErr) || errors.As(err, &languageErr):
		s.log.Warning("upstream service failure: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error("analysis failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

// writeIndexerError maps indexing client failures: an upstream 404
// passes through so callers can tell an unknown video from an outage.
func (s *Server) writeIndexerError(w http.ResponseWriter, err error) {
	var svcErr *indexer.ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.log.Warning("indexer service failure: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.log.Error("indexer request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "video request failed")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}
