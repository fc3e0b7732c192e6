// Package live streams accepted scan outcomes to dashboard clients over
// websockets, one room per school.
package live

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message pushed to clients.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connected clients per school and fans events out to them.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]struct{}
	log   *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]struct{}), log: log}
}

// Serve upgrades the request and parks the connection in the school's room
// until the client goes away. The read loop only drains control frames;
// clients don't send.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, schoolID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.add(schoolID, conn)
	defer h.remove(schoolID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends an event to every client of the school. Dead connections
// are dropped on write failure.
func (h *Hub) Broadcast(schoolID string, evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[schoolID] {
		if err := conn.WriteJSON(evt); err != nil {
			conn.Close()
			delete(h.rooms[schoolID], conn)
		}
	}
}

// Clients returns the number of connections in a school's room.
func (h *Hub) Clients(schoolID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[schoolID])
}

func (h *Hub) add(schoolID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[schoolID] == nil {
		h.rooms[schoolID] = make(map[*websocket.Conn]struct{})
	}
	h.rooms[schoolID][conn] = struct{}{}
}

func (h *Hub) remove(schoolID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[schoolID], conn)
	conn.Close()
}
