package upload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bankpush/bankpush/internal/operations"
)

const (
	broadcastBuffer = 64
	writeWait       = 5 * time.Second
)

// update is the message pushed to websocket clients.
type update struct {
	Type      string               `json:"type"`
	Operation operations.Operation `json:"operation"`
}

// Hub pushes operation changes to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
	upgrader   websocket.Upgrader
	store      *operations.Store
	log        zerolog.Logger
}

// NewHub creates a Hub that sends the store's latest operation to new
// clients. Call Run to start delivering messages.
func NewHub(store *operations.Store, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		store: store,
		log:   log,
	}
}

// Run delivers messages until ctx is cancelled, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("websocket client disconnected")
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Warn().Err(err).Msg("dropping websocket client")
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify queues an operation update for all clients. It never blocks; the
// update is dropped when the queue is full.
func (h *Hub) Notify(op operations.Operation) {
	data, err := json.Marshal(update{Type: "operation_update", Operation: op})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal operation update")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn().Str("operation_id", op.ID).Msg("websocket queue full, update dropped")
	}
}

// ServeWS upgrades the connection, sends the current status and keeps the
// client registered until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to upgrade to websocket")
		return
	}

	initial, err := json.Marshal(update{Type: "status", Operation: h.store.Latest()})
	if err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
			conn.Close()
			return
		}
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
		conn.Close()
	}
}
