// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ResultsFunc fetches the current state snapshot sent to a connection
// right after it subscribes.
type ResultsFunc func(battleID string) (any, error)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Identity is header/query based, not cookie based, so cross-origin
	// upgrades carry no ambient credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades GET /ws/battles/{id} requests and pumps events to the
// client until it disconnects.
type Handler struct {
	hub      *Hub
	snapshot ResultsFunc
}

func NewHandler(hub *Hub, snapshot ResultsFunc) *Handler {
	return &Handler{hub: hub, snapshot: snapshot}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "battle_id", battleID, "error", err)
		return
	}
	conn := &wsConn{ws: ws}

	h.hub.Subscribe(battleID, userID, conn)
	defer func() {
		h.hub.Unsubscribe(battleID, conn)
		conn.Close()
		slog.Info("websocket closed", "battle_id", battleID, "user_id", userID)
	}()

	// Initial snapshot so the client does not render from nothing while
	// waiting for the first vote.
	if h.snapshot != nil {
		data, err := h.snapshot(battleID)
		if err != nil {
			slog.Warn("snapshot unavailable", "battle_id", battleID, "error", err)
		} else {
			conn.writeEvent(Event{
				Type:      "battle_state",
				Data:      data,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var in Event
		if err := json.Unmarshal(msg, &in); err != nil {
			continue
		}
		// ping is the only client-initiated message; everything else is
		// ignored.
		if in.Type == "ping" {
			conn.writeEvent(Event{Type: "pong"})
		}
	}
}

// wsConn adapts a gorilla connection to the hub's Conn interface. The
// mutex serializes writes, which gorilla requires.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

func (c *wsConn) writeEvent(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal event", "type", e.Type, "error", err)
		return
	}
	if err := c.WriteMessage(payload); err != nil {
		slog.Warn("websocket write failed", "type", e.Type, "error", err)
	}
}
