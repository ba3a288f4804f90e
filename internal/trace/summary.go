package trace

import "time"

// Summarize derives aggregate statistics from a loaded trace. It is pure over
// the trace contents: the only outside input is the clock, and that is used
// solely when the conversation is still open.
func Summarize(c *Conversation) Summary {
	return summarizeAt(c, time.Now().UTC())
}

func summarizeAt(c *Conversation, now time.Time) Summary {
	sum := Summary{
		CompaniesAnalyzed:  []string{},
		CategoriesAssigned: []string{},
		GeneratedAt:        now,
	}

	seenCompanies := map[string]bool{}
	for _, ev := range c.Events {
		switch ev.EventType {
		case EventUserRequest:
			sum.TotalRequests++
			name, _ := ev.Content["company_name"].(string)
			if name == "" {
				name = "Unknown"
			}
			if !seenCompanies[name] {
				seenCompanies[name] = true
				sum.CompaniesAnalyzed = append(sum.CompaniesAnalyzed, name)
			}
		case EventBotResponse:
			sum.TotalResponses++
			if eval, ok := ev.Content["evaluation"].(map[string]any); ok {
				if cat, ok := eval["category"].(string); ok && cat != "" {
					sum.CategoriesAssigned = append(sum.CategoriesAssigned, cat)
				}
			}
			if secs, ok := floatValue(ev.Metadata["processing_time_seconds"]); ok {
				sum.TotalProcessingTime += secs
			}
		case EventError:
			sum.TotalErrors++
		}
	}

	sum.DurationMinutes = durationMinutes(c, now)
	return sum
}

func durationMinutes(c *Conversation, now time.Time) float64 {
	if len(c.Events) == 0 {
		return 0
	}
	end := now
	if c.EndTime != nil {
		end = *c.EndTime
	}
	minutes := end.Sub(c.StartTime).Minutes()
	if minutes < 0 {
		return 0
	}
	return minutes
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
