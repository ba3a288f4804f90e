package reliability

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ClassifyCompletionError maps a completion-provider failure onto a stable
// code. The code becomes the error_type of the recorded error trace event and
// the label on the completion error metric, so it must stay coarse and
// bounded.
func ClassifyCompletionError(err error) (code string, retryable bool) {
	if err == nil {
		return "", false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout", true
	}
	if errors.Is(err, context.Canceled) {
		return "canceled", false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout", true
		}
		return "connection", true
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return "rate_limited", true
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "connection reset"):
		return "connection", true
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") ||
		strings.Contains(msg, "invalid api key"):
		return "auth", false
	}
	return "provider_error", false
}
