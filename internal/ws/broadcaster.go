package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Broadcaster fans metrics updates out to every connected dashboard client.
type Broadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

// Event is the wire envelope for pushed updates.
type Event struct {
	Type        string `json:"type"`
	CompanyName string `json:"companyName,omitempty"`
	Payload     any    `json:"payload,omitempty"`
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Broadcast sends one event to all clients. Writes that fail drop the
// client; slow consumers never block the refresh path for long because the
// payloads are small.
func (b *Broadcaster) Broadcast(eventType, companyName string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg, err := json.Marshal(Event{Type: eventType, CompanyName: companyName, Payload: payload})
	if err != nil {
		log.Printf("Broadcaster: failed to marshal event: %v", err)
		return
	}

	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("Broadcaster: websocket write error: %v", err)
			c.Close()
			delete(b.clients, c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler upgrades the connection and keeps it registered until the client
// goes away. The read loop only exists to notice disconnects.
func (b *Broadcaster) Handler(c *gin.Context) {
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Broadcaster: websocket upgrade error: %v", err)
		return
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.clients, conn)
			b.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}
