package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"inboxpilot/internal/auth"
	"inboxpilot/internal/config"
	"inboxpilot/internal/flow"
)

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHub fans task events out to connected dashboard sockets. It satisfies
// flow.EventSink; Publish never blocks on a slow client, it drops the client
// instead.
type EventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*websocket.Conn]bool)}
}

func (h *EventHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *EventHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ClientCount reports the number of attached sockets.
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends the event to every connected client as a JSON frame.
func (h *EventHub) Publish(event flow.DashboardEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("[Events] Dropping client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// GET /ws/events?token=...
// The browser WebSocket API cannot set an Authorization header, so the token
// rides in the query string, same as the chat socket convention.
func WSEventsHandler(cfg *config.Config, svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Missing token"}})
			return
		}
		if _, err := auth.ParseJWT(cfg.Server.JWTSecret, token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Invalid or expired token"}})
			return
		}
		conn, err := eventsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[Events] Upgrade failed: %v", err)
			return
		}
		svc.Events.register(conn)
		log.Printf("[Events] Dashboard client connected (%d total)", svc.Events.ClientCount())

		// Reader loop only watches for close; the hub owns all writes.
		go func() {
			defer svc.Events.unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
