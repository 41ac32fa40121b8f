// Package server exposes the analysis pipeline over HTTP.
//
// It serves three surfaces from one mux: the embedded single-page
// frontend, a JSON API, and a websocket feed of pipeline activity.
//
// # Endpoints
//
//	GET  /                        embedded frontend
//	GET  /healthz                 liveness probe
//	POST /api/analyze             image in, recognition + overlay + sentiment out
//	POST /api/videos              upload a video for indexing
//	GET  /api/videos/{id}/index   proxy the video's insight document
//	GET  /ws                      websocket activity feed
//
// The analyze endpoint accepts either a multipart form with an "image"
// field or the image as a raw request body, and returns one JSON
// document holding the recognition geometry, the annotated image as
// base64 PNG, the aggregated text, and its sentiment. Optional
// "labels", "stroke", and "width" form or query values restyle the
// overlay for a single request.
//
// # Status Codes
//
// Invalid payloads map to 400, oversized ones to 413. Failures of the
// vision, language, or indexing services surface as 502 so callers can
// tell an upstream outage from a bug in this server; an indexer 404
// passes through as 404.
//
// # Activity Feed
//
// Every pipeline stage is published to connected websocket clients as
// a JSON text frame. The feed is best effort: slow or absent clients
// never block analysis.
//
// # Usage
//
//	srv, err := server.NewServer(server.Options{
//	    Addr:     ":8080",
//	    Pipeline: pipe,
//	    Indexer:  idx,
//	    Hub:      server.NewHub(log),
//	    Log:      log,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
