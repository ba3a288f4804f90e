package trace

import "time"

// Conversation is the append-only event sequence for one conversation id.
// Instances are transient views reconstructed from storage on each read; the
// store owns the durable representation.
type Conversation struct {
	ConversationID string     `json:"conversation_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Events         []Event    `json:"events"`
	Summary        *Summary   `json:"summary"`
}

// Summary holds recomputable aggregate statistics over a conversation.
type Summary struct {
	TotalRequests       int       `json:"total_requests"`
	TotalResponses      int       `json:"total_responses"`
	TotalErrors         int       `json:"total_errors"`
	CompaniesAnalyzed   []string  `json:"companies_analyzed"`
	CategoriesAssigned  []string  `json:"categories_assigned"`
	TotalProcessingTime float64   `json:"total_processing_time"`
	DurationMinutes     float64   `json:"conversation_duration_minutes"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// ListEntry is the per-conversation row returned by FileStore.List.
type ListEntry struct {
	ConversationID string     `json:"conversation_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	EventCount     int        `json:"event_count"`
	CompanyName    string     `json:"company_name"`
	Category       string     `json:"category"`
	Confidence     int        `json:"confidence"`
}
