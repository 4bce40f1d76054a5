// Package ws serves the /ws relay endpoint: one sequential receive, reply,
// receive loop per client connection.
package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/varsilias/voicechat/internal/chat"
	"github.com/varsilias/voicechat/pkg/types"
)

const errUnsupportedFrame = "unsupported message type"

// Replier is satisfied by *chat.Controller.
type Replier interface {
	Reply(ctx context.Context, text string) types.Envelope
}

type Handler struct {
	log      *slog.Logger
	chat     Replier
	upgrader websocket.Upgrader
}

func NewHandler(log *slog.Logger, r Replier) *Handler {
	return &Handler{
		log:  log,
		chat: r,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The front end may be served from another origin during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func RegisterRoutes(mux *chi.Mux, h *Handler) {
	mux.Get("/ws", h.ServeWS)
}

// ServeWS upgrades the request and runs the relay loop until the client
// goes away or the connection fails.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.log.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	defer conn.Close()

	log := h.log.With("conn_id", uuid.NewString(), "remote", r.RemoteAddr)
	log.Info("websocket connection accepted")

	// Provider calls are not interrupted when the client disconnects; the
	// result is dropped when the following write fails.
	ctx := context.WithoutCancel(r.Context())

	if err := h.relay(ctx, log, conn); err != nil {
		log.Error("websocket connection terminated", "err", err, "kind", chat.KindOf(err).String())
		return
	}
	log.Info("websocket connection closed by client")
}

// relay returns nil on a clean client disconnect and a transport error otherwise.
func (h *Handler) relay(ctx context.Context, log *slog.Logger, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if isClientClose(err) {
				return nil
			}
			return chat.NewTransportError("read", err)
		}

		var env types.Envelope
		if msgType == websocket.TextMessage {
			text := string(data)
			log.Info("received message", "message", text)
			env = h.chat.Reply(ctx, text)
		} else {
			log.Warn("received non-text frame", "frame_type", msgType, "bytes", len(data))
			env = types.ErrorEnvelope(errUnsupportedFrame)
		}

		if err := conn.WriteJSON(env); err != nil {
			return chat.NewTransportError("write", err)
		}
		if env.Type == types.EnvelopeError {
			log.Info("sent error", "content", env.Content)
		} else {
			log.Info("sent reply", "content", env.Content)
		}
	}
}

func isClientClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
