// Package protocol defines the WebSocket message protocol between
// subscribers and the gateway.
package protocol

import "encoding/json"

// Message types from client to gateway
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Message types from gateway to client
const (
	TypeSubscribeAck   = "subscribe_ack"
	TypeUnsubscribeAck = "unsubscribe_ack"
	TypeEvent          = "event"
	TypeError          = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
}

// SubscribeMessage is sent by a client to establish a filtered subscription.
// Field names a subscription operation (e.g. onRuntimeUpdate); Args carries
// the operation's arguments.
type SubscribeMessage struct {
	BaseMessage
	Field  string         `json:"field"`
	Args   map[string]any `json:"args,omitempty"`
	APIKey string         `json:"api_key,omitempty"`
}

// SubscribeAckMessage is sent by the gateway after a successful subscribe.
type SubscribeAckMessage struct {
	BaseMessage
	Field string `json:"field"`
}

// UnsubscribeMessage is sent by a client to stop delivery.
type UnsubscribeMessage struct {
	BaseMessage
}

// UnsubscribeAckMessage is sent by the gateway after an unsubscribe.
type UnsubscribeAckMessage struct {
	BaseMessage
}

// EventMessage carries a published runtime-update event to a subscriber.
type EventMessage struct {
	BaseMessage
	Field   string          `json:"field"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorMessage is sent by the gateway when an error occurs.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeUnauthorized   = "unauthorized"
	ErrorCodeUnknownField   = "unknown_field"
	ErrorCodeInternalError  = "internal_error"
)
