// Package hub provides connection management for WebSocket subscribers.
package hub

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tessera-ai/eventgate/internal/domain"
)

// Connection represents a single WebSocket subscription connection. A
// connection receives no events until a subscription filter is installed
// on it; installing the filter is what establishes the subscription.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	hub *Hub

	// mu serializes writes to Conn; filterMu guards the installed filter.
	// They stay separate so event fanout never waits on an in-flight
	// network write.
	mu sync.Mutex

	filterMu sync.RWMutex
	filter   *domain.SubscriptionFilter
}

// SetSubscriptionFilter installs the filter for this connection. It
// implements the resolver's FilterRegistry; the filter is retained until
// replaced or the connection closes.
func (c *Connection) SetSubscriptionFilter(filter domain.SubscriptionFilter) {
	c.filterMu.Lock()
	c.filter = &filter
	c.filterMu.Unlock()
}

// ClearSubscriptionFilter removes the installed filter, stopping delivery.
func (c *Connection) ClearSubscriptionFilter() {
	c.filterMu.Lock()
	c.filter = nil
	c.filterMu.Unlock()
}

// subscriptionFilter returns the installed filter, if any.
func (c *Connection) subscriptionFilter() (domain.SubscriptionFilter, bool) {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	if c.filter == nil {
		return domain.SubscriptionFilter{}, false
	}
	return *c.filter, true
}

// Subscribed reports whether a filter is installed on the connection.
func (c *Connection) Subscribed() bool {
	_, ok := c.subscriptionFilter()
	return ok
}

// eventDelivery carries a marshaled event plus its filterable fields.
type eventDelivery struct {
	fields map[string]any
	data   []byte
}

// Hub manages all WebSocket subscription connections.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// Channels for registration/unregistration
	register   chan *Connection
	unregister chan *Connection

	// Publish channel for fanning events out to matching connections
	publish chan eventDelivery

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		publish:     make(chan eventDelivery, 256),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			h.mu.Unlock()
			log.Printf("Connection registered: %s", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Printf("Connection unregistered: %s", conn.ID)

		case delivery := <-h.publish:
			h.deliver(delivery)
		}
	}
}

// deliver sends the event to every connection whose installed filter
// matches. Connections without a filter have not subscribed and are skipped.
func (h *Hub) deliver(delivery eventDelivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections {
		filter, ok := conn.subscriptionFilter()
		if !ok || !filter.Matches(delivery.fields) {
			continue
		}
		select {
		case conn.Send <- delivery.data:
		default:
			// Buffer full, close the connection
			log.Printf("Connection %s buffer full, closing", conn.ID)
			go h.Unregister(conn)
		}
	}
}

// NewConnection creates a new connection bound to this hub.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
		hub:  h,
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Publish fans a marshaled event out to matching connections.
func (h *Hub) Publish(fields map[string]any, data []byte) {
	h.publish <- eventDelivery{fields: fields, data: data}
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// GetSubscriberCount returns the number of connections with a filter installed.
func (h *Hub) GetSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conn := range h.connections {
		if conn.Subscribed() {
			count++
		}
	}
	return count
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
