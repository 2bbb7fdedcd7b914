// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Event is the wire envelope for every message the hub pushes.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Conn is the slice of a websocket connection the hub needs. Writes on
// a Conn must be safe for concurrent use.
type Conn interface {
	WriteMessage(data []byte) error
	Close() error
}

// Hub tracks which connections are watching which battle and fans events
// out to them. It satisfies the coordinator's Broadcaster interface.
type Hub struct {
	mu sync.Mutex
	// battles maps battle id to the set of subscribed connections.
	battles map[string]map[Conn]struct{}
	// users maps "battleID:userID" to that user's most recent
	// connection, for targeted sends.
	users map[string]Conn
}

func NewHub() *Hub {
	return &Hub{
		battles: make(map[string]map[Conn]struct{}),
		users:   make(map[string]Conn),
	}
}

// Subscribe registers conn for events on battleID. A reconnect by the
// same user takes over the user index entry, but the earlier connection
// stays in the battle set and keeps receiving broadcasts until it
// disconnects or a write to it fails. Only Unsubscribe and failed sends
// deregister; several spectators may legitimately share a user id.
func (h *Hub) Subscribe(battleID, userID string, conn Conn) {
	h.mu.Lock()
	set, ok := h.battles[battleID]
	if !ok {
		set = make(map[Conn]struct{})
		h.battles[battleID] = set
	}
	set[conn] = struct{}{}
	h.users[battleID+":"+userID] = conn
	h.mu.Unlock()

	slog.Info("websocket subscribed", "battle_id", battleID, "user_id", userID)
}

// Unsubscribe removes conn from the battle. Safe to call for connections
// the hub has already dropped.
func (h *Hub) Unsubscribe(battleID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.battles[battleID]
	if !ok {
		return
	}
	if _, ok := set[conn]; !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.battles, battleID)
	}
	for key, c := range h.users {
		if c == conn && strings.HasPrefix(key, battleID+":") {
			delete(h.users, key)
		}
	}
}

// Publish sends an event to every connection watching battleID.
// Connections whose write fails are dropped and closed; delivery is best
// effort and Publish never blocks on slow marshaling per subscriber (the
// payload is marshaled once).
func (h *Hub) Publish(battleID, eventType string, data any) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		slog.Error("failed to marshal event", "type", eventType, "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]Conn, 0, len(h.battles[battleID]))
	for c := range h.battles[battleID] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	var dead []Conn
	for _, c := range conns {
		if err := c.WriteMessage(payload); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		h.Unsubscribe(battleID, c)
		c.Close()
	}
	if len(dead) > 0 {
		slog.Info("pruned dead websocket connections", "battle_id", battleID, "count", len(dead))
	}
}

// Subscribers reports how many connections are watching battleID.
func (h *Hub) Subscribers(battleID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.battles[battleID])
}
