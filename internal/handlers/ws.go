package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Events carried by refresh messages.
const (
	EventBugCreated     = "bug.created"
	EventBugUpdated     = "bug.updated"
	EventBugDeleted     = "bug.deleted"
	EventProjectUpdated = "project.updated"
	EventProjectDeleted = "project.deleted"
)

type Message struct {
	Type      string `json:"type"`
	Event     string `json:"event,omitempty"`
	Message   string `json:"message"`
	ProjectID uint   `json:"project_id"`
}

// client serializes writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(messageType, data)
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

// Hub tracks the websocket clients watching each project and pushes a
// refresh message to them when the project's bugs change.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub accepts connections from the given browser origins. Requests
// without an Origin header are not from a browser and are always accepted.
func NewHub(allowedOrigins []string, log *slog.Logger) *Hub {
	origins := slices.Clone(allowedOrigins)

	return &Hub{
		clients: make(map[uint]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin)
			},
		},
		log: log,
	}
}

// BroadcastRefresh tells every client of the project to reload. Clients
// that cannot be written to are dropped.
func (hub *Hub) BroadcastRefresh(projectID uint, event string) {
	hub.mu.RLock()
	clients := make([]*client, 0, len(hub.clients[projectID]))
	for c := range hub.clients[projectID] {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	msg := Message{
		Type:      "refresh",
		Event:     event,
		Message:   "Project data updated",
		ProjectID: projectID,
	}

	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			hub.log.Warn("failed to broadcast refresh",
				slog.Uint64("project_id", uint64(projectID)),
				slog.Any("error", err),
			)
			hub.unregister(projectID, c)
			c.conn.Close()
		}
	}
}

// ClientCount returns the number of clients watching the project.
func (hub *Hub) ClientCount(projectID uint) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	return len(hub.clients[projectID])
}

// Close disconnects every client.
func (hub *Hub) Close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for projectID, clients := range hub.clients {
		for c := range clients {
			c.conn.Close()
		}
		delete(hub.clients, projectID)
	}
}

func (hub *Hub) register(projectID uint, c *client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.clients[projectID] == nil {
		hub.clients[projectID] = make(map[*client]struct{})
	}
	hub.clients[projectID][c] = struct{}{}
}

func (hub *Hub) unregister(projectID uint, c *client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if clients, ok := hub.clients[projectID]; ok {
		delete(clients, c)

		if len(clients) == 0 {
			delete(hub.clients, projectID)
		}
	}
}

// Serve upgrades the request and keeps the connection registered under the
// project until the client goes away.
func (hub *Hub) Serve(w http.ResponseWriter, r *http.Request, projectID uint) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)

	if err != nil {
		hub.log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	hub.register(projectID, c)

	defer func() {
		hub.unregister(projectID, c)
		conn.Close()
		hub.log.Debug("websocket connection closed", slog.Uint64("project_id", uint64(projectID)))
	}()

	err = c.writeJSON(Message{
		Type:      "connected",
		Message:   "WebSocket connection established",
		ProjectID: projectID,
	})

	if err != nil {
		hub.log.Warn("failed to send welcome message", slog.Any("error", err))
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.log.Debug("websocket read failed",
					slog.Uint64("project_id", uint64(projectID)),
					slog.Any("error", err),
				)
			}
			return
		}
	}
}

// WebSocket subscribes the caller to refresh events of a project it has
// access to.
func (h *Handler) WebSocket(ctx *gin.Context) {
	user, ok := h.currentUser(ctx)

	if !ok {
		return
	}

	project, ok := h.accessibleProject(ctx, user)

	if !ok {
		return
	}

	h.hub.Serve(ctx.Writer, ctx.Request, project.ID)
}
