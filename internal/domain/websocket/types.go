// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the real-time event types
type EventType string

const (
	// Connection events
	EventTypePing  EventType = "ping"
	EventTypePong  EventType = "pong"
	EventTypeError EventType = "error"

	// Session events (server -> client)
	EventTypeAuthState EventType = "auth:state"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("message type is required")
	}
	return &msg, nil
}
