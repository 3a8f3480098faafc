// Package ws provides the WebSocket server for subscription connections.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/tessera-ai/eventgate/internal/broker"
	"github.com/tessera-ai/eventgate/internal/config"
	"github.com/tessera-ai/eventgate/internal/domain"
	"github.com/tessera-ai/eventgate/internal/hub"
	"github.com/tessera-ai/eventgate/internal/protocol"
	"github.com/tessera-ai/eventgate/internal/resolver"
)

// Server handles WebSocket subscription connections.
type Server struct {
	cfg      *config.Config
	hub      *hub.Hub
	registry *resolver.Registry
	broker   *broker.Broker
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, h *hub.Hub, registry *resolver.Registry, b *broker.Broker) *Server {
	return &Server{
		cfg:      cfg,
		hub:      h,
		registry: registry,
		broker:   b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Browser clients connect from arbitrary origins.
				return true
			},
		},
	}
}

// Run drains published events from the broker into the hub, which delivers
// them to connections with a matching installed filter. It blocks until the
// broker subscription is closed.
func (s *Server) Run() {
	sub := s.broker.Subscribe(domain.SubscriptionFilter{})
	for event := range sub.C {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal event %s: %v", event.EventID, err)
			continue
		}
		msg := protocol.EventMessage{
			BaseMessage: protocol.BaseMessage{Type: protocol.TypeEvent, Ts: event.Ts},
			Field:       "onRuntimeUpdate",
			Payload:     payload,
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Failed to marshal event message: %v", err)
			continue
		}
		s.hub.Publish(event.Fields(), data)
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	s.hub.Register(conn)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection.
func (s *Server) readPump(conn *hub.Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *hub.Connection, data []byte) {
	var baseMsg protocol.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch baseMsg.Type {
	case protocol.TypeSubscribe:
		s.handleSubscribe(conn, data)
	case protocol.TypeUnsubscribe:
		s.handleUnsubscribe(conn, data)
	default:
		s.sendError(conn, baseMsg.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// handleSubscribe runs the resolver pipeline for the requested subscription
// field with this connection as the filter registry. Delivery starts once
// the installed filter is in place.
func (s *Server) handleSubscribe(conn *hub.Connection, data []byte) {
	var msg protocol.SubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid subscribe message")
		return
	}

	if s.cfg.APIKey != "" && msg.APIKey != s.cfg.APIKey {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeUnauthorized, "invalid api_key")
		return
	}

	op := s.registry.Lookup(msg.Field)
	if op == nil {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeUnknownField, "unknown field: "+msg.Field)
		return
	}
	if op.Kind != resolver.KindSubscription {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeInvalidMessage, msg.Field+" is not a subscription field")
		return
	}

	if _, err := s.registry.Execute(context.Background(), msg.Field, msg.Args, conn); err != nil {
		s.sendError(conn, msg.RequestID, protocol.ErrorCodeInternalError, err.Error())
		return
	}

	s.sendJSON(conn, protocol.SubscribeAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeSubscribeAck,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
		},
		Field: msg.Field,
	})
}

// handleUnsubscribe clears the connection's filter.
func (s *Server) handleUnsubscribe(conn *hub.Connection, data []byte) {
	var msg protocol.UnsubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid unsubscribe message")
		return
	}

	conn.ClearSubscriptionFilter()

	s.sendJSON(conn, protocol.UnsubscribeAckMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeUnsubscribeAck,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
		},
	})
}

// sendJSON marshals and queues a message on the connection.
func (s *Server) sendJSON(conn *hub.Connection, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}
	select {
	case conn.Send <- data:
	default:
		log.Printf("Connection %s send buffer full, dropping message", conn.ID)
	}
}

// sendError queues an error message on the connection.
func (s *Server) sendError(conn *hub.Connection, requestID, code, message string) {
	s.sendJSON(conn, protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
		},
		Code:    code,
		Message: message,
	})
}
