// Package ws reparte los eventos de stock a los clientes websocket conectados,
// cada uno suscrito solo a su tenant.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
)

var _ stock.EventPublisher = (*Hub)(nil)

// Conn lo que el hub usa de *websocket.Conn.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client conexión suscrita a los eventos de un tenant.
type Client struct {
	TenantID string
	UserID   string
	Conn     Conn
}

type tenantMessage struct {
	tenantID string
	data     []byte
}

// Hub registra clientes por tenant y difunde mensajes en una sola goroutine (Run).
// Join y Leave no bloquean después de que Run termina.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan tenantMessage
	done       chan struct{}

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     zerolog.Logger
}

// NewHub construye el hub. Hay que lanzar Run en una goroutine.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan tenantMessage, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]struct{}),
		log:        log,
	}
}

// Run atiende registros y difusiones hasta que ctx se cancela; al salir cierra todas las conexiones.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.TenantID] == nil {
				h.clients[c.TenantID] = make(map[*Client]struct{})
			}
			h.clients[c.TenantID][c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug().Str("tenant_id", c.TenantID).Str("user_id", c.UserID).Msg("cliente ws conectado")

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.tenantID]))
			for c := range h.clients[msg.tenantID] {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			for _, c := range targets {
				if err := c.Conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					h.remove(c)
				}
			}
		}
	}
}

// Join suscribe al cliente. Devuelve false si el hub ya se detuvo.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave retira al cliente y cierra su conexión. Con el hub detenido no hace nada:
// closeAll ya cerró todas.
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish encola el evento para los clientes de su tenant.
func (h *Hub) Publish(ctx context.Context, e stock.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal ws event: %w", err)
	}
	select {
	case h.broadcast <- tenantMessage{tenantID: e.TenantID, data: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("ws hub saturado, evento %s descartado", e.Type)
	}
}

// Count clientes conectados de un tenant.
func (h *Hub) Count(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tenantID])
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.TenantID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.TenantID)
	}
	_ = c.Conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tenant, set := range h.clients {
		for c := range set {
			_ = c.Conn.Close()
		}
		delete(h.clients, tenant)
	}
}
