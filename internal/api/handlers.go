package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/varsilias/voicechat/internal/buildinfo"
	"github.com/varsilias/voicechat/pkg/utils"
)

type Handlers struct {
	log      *slog.Logger
	provider string
	model    string
}

func NewHandlers(log *slog.Logger, provider, model string) *Handlers {
	return &Handlers{log: log, provider: provider, model: model}
}

// Health is a basic liveness endpoint. It does not call the provider.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"status":    true,
		"message":   "voicechat",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{
		"version":  buildinfo.Version,
		"commit":   buildinfo.Commit,
		"built_at": buildinfo.BuiltAt,
		"provider": h.provider,
		"model":    h.model,
	}

	utils.JSON(w, http.StatusOK, res)
}
