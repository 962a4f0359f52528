// Package websocket pushes batch progress events to connected browsers.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"clientreport/internal/infrastructure"
	"clientreport/internal/pipeline"
)

// Message types sent to clients
const (
	TypeConnection = "connection"
	TypeProgress   = "report:progress"
)

const broadcastQueue = 256

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
// It implements pipeline.Observer.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu           sync.RWMutex
	running      bool
	stopped      bool
	messagesSent int64
	quit         chan struct{}
	done         chan struct{}

	logger *slog.Logger
}

// NewHub creates a hub. Call Start before registering clients. A hub is
// single-use: once stopped it cannot be started again.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start runs the hub loop in its own goroutine. It is idempotent and does
// nothing after Stop.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client. It is idempotent.
func (h *Hub) Stop() {
	h.mu.Lock()
	wasRunning, first := h.running, !h.stopped
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	if first {
		close(h.quit)
	}
	if wasRunning {
		<-h.done
	}
}

func (h *Hub) run() {
	defer close(h.done)
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.mu.Unlock()
	}()

	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.InfoContext(c.context(), "client registered",
				slog.String("client_id", c.id),
				slog.String("remote_addr", c.remoteAddr),
				slog.Int("total_clients", count))

			if data, err := encode(TypeConnection, map[string]string{"status": "connected", "client_id": c.id}, c.traceID); err == nil {
				select {
				case c.send <- data:
				default:
				}
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.InfoContext(c.context(), "client unregistered",
				slog.String("client_id", c.id),
				slog.Int("total_clients", count),
				slog.Duration("connection_duration", time.Since(c.connectedAt)))

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
					h.messagesSent++
				default:
					close(c.send)
					delete(h.clients, c)
					h.logger.WarnContext(c.context(), "client send buffer full, disconnecting",
						slog.String("client_id", c.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Notify broadcasts a pipeline event. Events are dropped when the hub is
// stopped or its queue is full.
func (h *Hub) Notify(e pipeline.Event) {
	data, err := encode(TypeProgress, e, e.RunID)
	if err != nil {
		h.logger.Error("marshal progress event", slog.String("error", err.Error()))
		return
	}
	h.Broadcast(data)
}

// Broadcast queues a raw frame for every client.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, dropping message", slog.Int("size", len(data)))
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MessagesSent returns how many frames were queued to clients.
func (h *Hub) MessagesSent() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.messagesSent
}

func encode(msgType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   traceID,
	})
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}
