// Package server assembles the HTTP handler: routes plus middleware.
package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/varsilias/voicechat/internal/api"
	"github.com/varsilias/voicechat/internal/chat"
	"github.com/varsilias/voicechat/internal/middleware"
	"github.com/varsilias/voicechat/internal/web"
	"github.com/varsilias/voicechat/internal/ws"
)

type Deps struct {
	Log      *slog.Logger
	Engine   chat.Engine
	Static   fs.FS
	Provider string
	Model    string
}

func NewHandler(d Deps) (http.Handler, error) {
	if d.Log == nil || d.Engine == nil {
		return nil, errors.New("server: logger and engine are required")
	}

	site, err := web.New(d.Log, d.Static)
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	api.RegisterRoutes(mux, api.NewHandlers(d.Log, d.Provider, d.Model))
	ws.RegisterRoutes(mux, ws.NewHandler(d.Log, chat.NewController(d.Log, d.Engine)))
	// Last: its catch-all must not swallow the routes above.
	web.RegisterRoutes(mux, site)

	var handler http.Handler = mux
	handler = middleware.Recoverer(d.Log)(handler)
	// AccessLog sits inside RequestID so it sees the id on the request.
	handler = middleware.AccessLog(d.Log)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.VersionHeader()(handler)
	handler = middleware.CORS()(handler)
	return handler, nil
}
