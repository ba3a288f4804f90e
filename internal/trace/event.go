package trace

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies trace event variants. The set is closed: new
// occurrence kinds get a new constant, existing ones are never overloaded.
type EventType string

const (
	EventUserRequest EventType = "user_request"
	EventBotResponse EventType = "bot_response"
	EventError       EventType = "error"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventUserRequest, EventBotResponse, EventError:
		return true
	}
	return false
}

// Event is one atomic occurrence inside a conversation. Events are immutable
// once constructed; stores only ever append them.
type Event struct {
	EventID        string         `json:"event_id"`
	ConversationID string         `json:"conversation_id"`
	Timestamp      time.Time      `json:"timestamp"`
	EventType      EventType      `json:"event_type"`
	Content        map[string]any `json:"content"`
	Metadata       map[string]any `json:"metadata"`
}

// NewConversationID returns a fresh globally-unique conversation identifier.
// The caller owns the id and threads it through every core operation; there
// is no ambient "current conversation" anywhere in the process.
func NewConversationID() string {
	return uuid.NewString()
}

func newEvent(conversationID string, eventType EventType, content, metadata map[string]any) Event {
	if content == nil {
		content = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Event{
		EventID:        uuid.NewString(),
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
		EventType:      eventType,
		Content:        content,
		Metadata:       metadata,
	}
}

// NewUserRequestEvent records a submitted campaign-analysis request.
func NewUserRequestEvent(conversationID, companyName string, clientInfo, metadata map[string]any) Event {
	content := map[string]any{
		"company_name": companyName,
		"client_info":  clientInfo,
		"request_type": "campaign_analysis",
	}
	return newEvent(conversationID, EventUserRequest, content, metadata)
}

// NewBotResponseEvent records an evaluation result. A non-negative
// processingTime is stored in metadata under processing_time_seconds.
func NewBotResponseEvent(conversationID string, evaluation map[string]any, processingTime float64, metadata map[string]any) Event {
	content := map[string]any{
		"evaluation":    evaluation,
		"response_type": "campaign_evaluation",
	}
	md := map[string]any{}
	for k, v := range metadata {
		md[k] = v
	}
	if processingTime >= 0 {
		md["processing_time_seconds"] = processingTime
	}
	return newEvent(conversationID, EventBotResponse, content, md)
}

// NewErrorEvent records a failure tied to the conversation.
func NewErrorEvent(conversationID, message, kind string, context map[string]any) Event {
	if context == nil {
		context = map[string]any{}
	}
	content := map[string]any{
		"error_message": message,
		"error_type":    kind,
		"context":       context,
	}
	return newEvent(conversationID, EventError, content, nil)
}
