package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"clientreport/internal/config"
	"clientreport/internal/infrastructure"
)

// Handler upgrades HTTP requests to websocket clients of a hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	timing   Timing
	logger   *slog.Logger
}

// NewHandler builds the upgrade endpoint. Origins follow the same allow
// list as CORS; "*" allows any.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		timing: Timing{PingPeriod: cfg.PingPeriod, PongWait: cfg.PongWait},
		logger: logger.With(slog.String("component", "websocket.handler")),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := NewClient(h.hub, Wrap(conn), h.timing, infrastructure.GetTraceID(r.Context()))
	if !h.hub.Register(c) {
		_ = conn.Close()
		return
	}
	go c.WritePump()
	go c.ReadPump()
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
