// Package main provides a simple CLI client for subscribing to runtime
// updates over the gateway's WebSocket server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

// Message types
const (
	TypeSubscribe    = "subscribe"
	TypeSubscribeAck = "subscribe_ack"
	TypeEvent        = "event"
	TypeError        = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
}

// SubscribeMessage establishes a filtered subscription.
type SubscribeMessage struct {
	BaseMessage
	Field  string         `json:"field"`
	Args   map[string]any `json:"args,omitempty"`
	APIKey string         `json:"api_key,omitempty"`
}

// ErrorMessage represents an error from the server.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client represents a WebSocket client.
type Client struct {
	conn *websocket.Conn
	done chan struct{}
}

// NewClient creates a new client and connects to the server.
func NewClient(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return &Client{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	close(c.done)
	return c.conn.Close()
}

// Subscribe sends a subscribe message and waits for the ack.
func (c *Client) Subscribe(agentName, apiKey string) error {
	msg := SubscribeMessage{
		BaseMessage: BaseMessage{
			Type:      TypeSubscribe,
			Ts:        time.Now().UnixMilli(),
			RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
		},
		Field:  "onRuntimeUpdate",
		Args:   map[string]any{"agentName": agentName},
		APIKey: apiKey,
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}

	// Wait for subscribe_ack
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read subscribe_ack: %w", err)
	}

	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("unmarshal subscribe_ack: %w", err)
	}

	if base.Type == TypeError {
		var errMsg ErrorMessage
		json.Unmarshal(data, &errMsg)
		return fmt.Errorf("subscribe failed: %s - %s", errMsg.Code, errMsg.Message)
	}

	if base.Type != TypeSubscribeAck {
		return fmt.Errorf("expected subscribe_ack, got: %s", base.Type)
	}

	return nil
}

// ReadMessages reads and prints messages from the server.
func (c *Client) ReadMessages() {
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Read error: %v", err)
				}
				return
			}

			var base BaseMessage
			if err := json.Unmarshal(data, &base); err != nil {
				log.Printf("Unmarshal error: %v", err)
				continue
			}

			// Pretty print the message
			var prettyJSON map[string]interface{}
			json.Unmarshal(data, &prettyJSON)
			formatted, _ := json.MarshalIndent(prettyJSON, "", "  ")
			fmt.Printf("\n[%s] Received:\n%s\n", base.Type, string(formatted))
		}
	}
}

func main() {
	addr := flag.String("addr", "ws://localhost:8090/ws", "WebSocket server address")
	apiKey := flag.String("api-key", "", "API key for authentication")
	agentName := flag.String("agent", "", "Agent name to subscribe to")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *agentName == "" {
		log.Fatal("-agent is required")
	}

	fmt.Printf("Connecting to %s...\n", *addr)

	client, err := NewClient(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	fmt.Printf("Connected. Subscribing to runtime updates for %s...\n", *agentName)

	if err := client.Subscribe(*agentName, *apiKey); err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	fmt.Println("Subscribed. Waiting for events (Ctrl-C to quit)...")

	go client.ReadMessages()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	fmt.Println("\nDisconnecting...")
}
