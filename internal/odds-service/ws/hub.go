package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/bet-market-engine/pkg/contracts/events"
)

// client serializa as escritas: gorilla/websocket aceita um único writer por conexão
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) send(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub gerencia conexões WebSocket e assinaturas de odds por evento
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// eventID -> conjunto de clientes
	subs map[int64]map[*client]struct{}
}

// NewHub cria o hub com política de origem customizada
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[int64]map[*client]struct{}),
	}
}

// HandleWS mantém a conexão: subscribe/unsubscribe por eventId e ping/pong
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}
	defer func() {
		h.drop(c)
		_ = conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.subscribe(c, msg.EventID)
			_ = c.send(ServerMsg{Type: "ack", EventID: msg.EventID})
		case "unsubscribe":
			h.unsubscribe(c, msg.EventID)
			_ = c.send(ServerMsg{Type: "ack", EventID: msg.EventID})
		case "ping":
			_ = c.send(ServerMsg{Type: "pong"})
		}
	}
}

func (h *Hub) subscribe(c *client, eventID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[eventID]; !ok {
		h.subs[eventID] = make(map[*client]struct{})
	}
	h.subs[eventID][c] = struct{}{}
}

func (h *Hub) unsubscribe(c *client, eventID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[eventID]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, eventID)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, id)
		}
	}
}

// Subscribers devolve quantos clientes acompanham o evento
func (h *Hub) Subscribers(eventID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[eventID])
}

// Broadcast envia a atualização aos clientes inscritos no evento
func (h *Hub) Broadcast(u events.OddsUpdate) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.subs[u.EventID]))
	for c := range h.subs[u.EventID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	msg := ServerMsg{Type: "odds", EventID: u.EventID, Payload: &u}
	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.log.Debug("ws write failed", zap.Int64("event_id", u.EventID), zap.Error(err))
		}
	}
}
