// Package web serves a read-only viewer over captured digests and notes.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/askeland/mailfold/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewServer creates and configures the HTTP server for the mailfold viewer.
func NewServer(st store.Store, version, bind string, port int) *http.Server {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}

	renderer, err := NewRenderer(templateSub, version)
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	h := &Handlers{
		store:    st,
		renderer: renderer,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/digests", http.StatusFound)
	})
	mux.HandleFunc("GET /digests", h.HandleDigestList)
	mux.HandleFunc("GET /digests/{day}", h.HandleDigestDetail)
	mux.HandleFunc("GET /notes", h.HandleNoteList)
	mux.HandleFunc("GET /notes/{name}", h.HandleNoteDetail)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
