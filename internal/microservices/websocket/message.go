package websocket

import (
	"time"

	"github.com/goccy/go-json"
)

// Message types on the live feed socket
const (
	TypePing         = "ping"
	TypePong         = "pong"
	TypeActivity     = "activity"
	TypeNotification = "notification"
	TypeSystem       = "system"
)

// Message is the envelope written to clients.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(msgType string, data any) *Message {
	return &Message{Type: msgType, Data: data, Timestamp: time.Now().UTC()}
}

// ToJSON encodes the message once so a fan-out reuses the same bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a client frame.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
