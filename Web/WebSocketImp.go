package Web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kiru56776/AI-math/Relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientManager tracks connected websocket clients grouped by owner filter.
// Clients connected with ?owner=<id> receive only that owner's relay events;
// clients with no filter receive everything.
type ClientManager struct {
	clients map[string]map[*websocket.Conn]bool
	mu      sync.RWMutex
}

func handleWebSocket(c *gin.Context, manager *ClientManager) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	filter := c.Query("owner")
	manager.mu.Lock()
	if manager.clients[filter] == nil {
		manager.clients[filter] = make(map[*websocket.Conn]bool)
	}
	manager.clients[filter][conn] = true
	manager.mu.Unlock()

	// Keep the connection open; reads only detect disconnects.
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}

	manager.mu.Lock()
	delete(manager.clients[filter], conn)
	clientCount := len(manager.clients)
	manager.mu.Unlock()

	conn.Close()
	log.Printf("websocket client disconnected, groups: %d", clientCount)
}

// Broadcast fans one relay event out to every matching client.
func (m *ClientManager) Broadcast(msg Relay.WebMsg) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("event marshal failed: %v", err)
		return
	}

	type badConn struct {
		filter string
		conn   *websocket.Conn
	}
	bad := make([]badConn, 0)

	m.mu.RLock()
	for filter, clients := range m.clients {
		if filter != "" && filter != msg.Owner {
			continue
		}
		for conn := range clients {
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("event send failed: %v", err)
				conn.Close()
				bad = append(bad, badConn{filter: filter, conn: conn})
			}
		}
	}
	m.mu.RUnlock()

	if len(bad) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bad {
		if m.clients[b.filter] == nil {
			continue
		}
		delete(m.clients[b.filter], b.conn)
	}
}

func startBroadcasting(manager *ClientManager, channel chan Relay.WebMsg) {
	for msg := range channel {
		manager.Broadcast(msg)
	}
}
