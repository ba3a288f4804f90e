// Package protocol defines the JSON message schema spoken on the live trace
// feed websocket.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/antoniostano/adpulse/internal/trace"
)

const (
	// Client to server.
	TypeSubscribe = "subscribe"

	// Server to client.
	TypeTraceEvent  = "trace_event"
	TypeSystemEvent = "system"
	TypeErrorEvent  = "error"
)

// Envelope carries just enough to dispatch on message type.
type Envelope struct {
	Type string `json:"type"`
}

// Subscribe narrows the feed to a single conversation. An empty
// conversation_id subscribes to every conversation.
type Subscribe struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// TraceEventMessage wraps one appended trace event for feed delivery.
type TraceEventMessage struct {
	Type  string      `json:"type"`
	Event trace.Event `json:"event"`
}

// SystemEvent reports feed lifecycle changes such as subscription acks.
type SystemEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorEvent tells the client its last message was rejected.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewTraceEventMessage(ev trace.Event) TraceEventMessage {
	return TraceEventMessage{Type: TypeTraceEvent, Event: ev}
}

func NewSystemEvent(message string) SystemEvent {
	return SystemEvent{
		Type:      TypeSystemEvent,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: TypeErrorEvent, Message: message}
}

// ParseClientMessage decodes one inbound feed message. Only subscribe is
// accepted from clients.
func ParseClientMessage(data []byte) (Subscribe, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Subscribe{}, fmt.Errorf("malformed message: %w", err)
	}
	switch env.Type {
	case TypeSubscribe:
		var sub Subscribe
		if err := json.Unmarshal(data, &sub); err != nil {
			return Subscribe{}, fmt.Errorf("malformed subscribe: %w", err)
		}
		return sub, nil
	case "":
		return Subscribe{}, fmt.Errorf("missing message type")
	default:
		return Subscribe{}, fmt.Errorf("unsupported message type %q", env.Type)
	}
}
