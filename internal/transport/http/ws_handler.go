package http

import (
	"log/slog"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"enrollscope/internal/config"
	apierrors "enrollscope/internal/errors"
	"enrollscope/internal/websocket"
)

// WSHandler upgrades connections and hands them to the hub.
type WSHandler struct {
	hub        *websocket.Hub
	upgrader   gorilla.Upgrader
	errHandler *apierrors.ErrorHandler
	logger     *slog.Logger
}

// NewWSHandler creates the handler. allowedOrigins restricts the Origin
// header; "*" accepts any origin.
func NewWSHandler(hub *websocket.Hub, wsCfg config.WebSocketConfig, allowedOrigins []string, errHandler *apierrors.ErrorHandler, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub: hub,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  wsCfg.ReadBufferSize,
			WriteBufferSize: wsCfg.WriteBufferSize,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		errHandler: errHandler,
		logger:     logger.With(slog.String("component", "ws_handler")),
	}
}

// HandleWS serves GET /ws.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	if err := websocket.ServeWS(h.hub, h.upgrader, w, r); err != nil {
		// Upgrade failures write their own response; just log.
		h.logger.ErrorContext(r.Context(), "websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
