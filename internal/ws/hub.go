package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Event is the invalidation signal pushed to connected dashboards whenever a
// ledger mutates, so list views refetch instead of polling.
type Event struct {
	Type    string    `json:"type"` // always "ledger_update"
	Entity  string    `json:"entity"`
	Action  string    `json:"action"`
	Subject string    `json:"subject"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 16),
	}
}

// Notify broadcasts a ledger invalidation event without blocking the caller.
func (h *Hub) Notify(entity, action, subject, actor string) {
	ev := Event{
		Type:    "ledger_update",
		Entity:  entity,
		Action:  action,
		Subject: subject,
		Actor:   actor,
		At:      time.Now(),
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		// no listeners draining; drop rather than stall a mutation path
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Println("New WS Client Connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
