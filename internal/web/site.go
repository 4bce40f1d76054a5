// Package web serves the browser front end.
package web

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const indexFile = "index.html"

type Site struct {
	log        *slog.Logger
	files      fs.FS
	fileServer http.Handler
}

// New serves files from fsys; main passes os.DirFS of the static directory.
func New(log *slog.Logger, fsys fs.FS) (*Site, error) {
	if fsys == nil {
		return nil, errors.New("web: filesystem must not be nil")
	}
	if _, err := fs.Stat(fsys, indexFile); err != nil {
		// Not fatal: assets may be deployed after the server starts.
		log.Warn("front-end index missing", "file", indexFile, "err", err)
	}
	return &Site{log: log, files: fsys, fileServer: http.FileServerFS(fsys)}, nil
}

// RegisterRoutes mounts "/" ahead of the catch-all so the file server can
// never shadow the front-end document.
func RegisterRoutes(mux *chi.Mux, s *Site) {
	mux.Get("/", s.Index)
	mux.Handle("/*", s.fileServer)
}

func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	if _, err := fs.Stat(s.files, indexFile); err != nil {
		s.log.Error("serve index", "err", err)
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFileFS(w, r, s.files, indexFile)
}
