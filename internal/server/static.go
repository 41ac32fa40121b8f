package server

import (
	_ "embed"
	"net/http"
)

//go:embed web/index.html
var indexPage []byte

// handleIndex serves the embedded single-page frontend.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}
