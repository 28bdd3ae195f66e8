package simulator

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClientConn representa uma conexão de cliente WebSocket
// id: identificador único da conexão
// conn: ponteiro para a conexão WebSocket
type ClientConn struct {
	ID   string
	Conn *websocket.Conn
}

// Hub gerencia os clientes conectados via WebSocket e faz broadcast dos ticks
// de placar para todos eles.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*ClientConn
	log     *zap.Logger

	OnConnect    func() // métricas (gauge++)
	OnDisconnect func() // métricas (gauge--)
	OnSent       func() // métricas (counter++)
}

// NewHub cria uma nova instância de hub para gerenciar conexões
func NewHub(log *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]*ClientConn), log: log}
}

// Add adiciona um novo cliente ao hub
func (h *Hub) Add(c *ClientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	if h.OnConnect != nil {
		h.OnConnect()
	}
	h.log.Info("ws client connected", zap.String("client_id", c.ID))
}

// Remove remove um cliente do hub
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		if h.OnDisconnect != nil {
			h.OnDisconnect()
		}
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Broadcast envia uma mensagem para todos os clientes conectados
func (h *Hub) Broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.Conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.Conn.Close()
		} else if h.OnSent != nil {
			h.OnSent()
		}
	}
}
