package trace

import "time"

// HistoryEntry is one turn in the simplified display projection of a trace.
type HistoryEntry struct {
	Kind       string         `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	Company    string         `json:"company,omitempty"`
	Category   string         `json:"category,omitempty"`
	Confidence any            `json:"confidence,omitempty"`
	Content    map[string]any `json:"content"`
}

// History projects the raw event sequence into the two display kinds the
// conversation view renders, "user" and "bot". Error events are omitted on
// purpose: the display consumer decides separately whether and how to surface
// failures, so this projection carries only the turns.
func History(c *Conversation) []HistoryEntry {
	if c == nil {
		return []HistoryEntry{}
	}
	out := make([]HistoryEntry, 0, len(c.Events))
	for _, ev := range c.Events {
		switch ev.EventType {
		case EventUserRequest:
			company, _ := ev.Content["company_name"].(string)
			if company == "" {
				company = "Unknown"
			}
			out = append(out, HistoryEntry{
				Kind:      "user",
				Timestamp: ev.Timestamp,
				Company:   company,
				Content:   ev.Content,
			})
		case EventBotResponse:
			eval, _ := ev.Content["evaluation"].(map[string]any)
			entry := HistoryEntry{
				Kind:      "bot",
				Timestamp: ev.Timestamp,
				Category:  "unknown",
				Content:   eval,
			}
			if eval != nil {
				if cat, ok := eval["category"].(string); ok && cat != "" {
					entry.Category = cat
				}
				entry.Confidence = eval["confidence"]
			}
			out = append(out, entry)
		}
	}
	return out
}
