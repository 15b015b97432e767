package services

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// outMessage is the outbound wire envelope.
type outMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks live connections and room membership on the transport side,
// implementing the Broadcaster primitive the dispatcher emits through.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if old, ok := h.clients[c.id]; ok {
		old.Close()
	}
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	if c, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		c.Close()
	}
	for code, members := range h.rooms {
		if _, ok := members[connID]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	h.mu.Unlock()
}

func (h *Hub) JoinRoom(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[code] = members
	}
	members[connID] = c
}

func (h *Hub) LeaveRoom(code, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, code)
	}
}

func (h *Hub) SendToConn(connID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.deliver(c, event, payload)
}

func (h *Hub) BroadcastToRoom(code, event string, payload any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[code]))
	for _, c := range h.rooms[code] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		h.deliver(c, event, payload)
	}
}

func (h *Hub) deliver(c *Client, event string, payload any) {
	b, err := json.Marshal(outMessage{Type: event, Data: payload})
	if err != nil {
		h.log.Errorw("marshal outbound message", "event", event, "err", err)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.log.Warnw("recovered delivering to closed client", "conn", c.id)
		}
	}()
	select {
	case c.send <- b:
	default:
		h.log.Warnw("dropping message, send buffer full", "conn", c.id, "event", event)
	}
}

// HandleWebSocket upgrades the connection, assigns it an opaque identity,
// and starts the pumps.
func HandleWebSocket(hub *Hub, dispatcher *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Errorw("websocket upgrade failed", "err", err)
			return
		}

		client := &Client{
			id:         uuid.NewString(),
			conn:       conn,
			hub:        hub,
			dispatcher: dispatcher,
			send:       make(chan []byte, 32),
		}
		hub.Register(client)

		go client.writePump()
		go client.readPump()

		hub.SendToConn(client.id, "connected", map[string]string{"connectionId": client.id})
		hub.log.Infow("websocket client connected", "conn", client.id)
	}
}
