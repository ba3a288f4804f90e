package archive

import (
	"context"

	"github.com/antoniostano/adpulse/internal/trace"
)

// Store is a secondary sink for appended trace events, used for offline
// analytics. The file-backed trace store stays authoritative; mirroring into
// the archive is best-effort and at-most-once.
type Store interface {
	RecordEvent(ctx context.Context, ev trace.Event) error
	EventCount(ctx context.Context, conversationID string) (int, error)
	Close() error
}
