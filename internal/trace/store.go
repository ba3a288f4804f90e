package trace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var ErrNotFound = errors.New("conversation not found")

// Conversation ids become file names, so reject anything that could walk out
// of the traces directory.
var validConversationID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// FileStore persists one JSON document per conversation under a single
// directory. Appends rewrite the whole document through a temp file and
// rename, so a reader never observes a half-written trace. The store assumes
// at most one writer per conversation id at a time; concurrent writers to the
// same id race on the read-modify-write and may lose updates. Writers to
// different ids are independent.
type FileStore struct {
	dir  string
	feed *Feed
}

// NewFileStore creates the traces directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("traces directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create traces directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store persists into.
func (s *FileStore) Dir() string { return s.dir }

// SetFeed attaches a live feed that receives every successfully appended event.
func (s *FileStore) SetFeed(f *Feed) { s.feed = f }

func (s *FileStore) filename(conversationID string) string {
	return filepath.Join(s.dir, "trace_"+conversationID+".json")
}

// Append adds one event to the conversation's trace, creating the trace with
// start_time = event timestamp when this is the first event for the id.
func (s *FileStore) Append(ev Event) error {
	if !validConversationID.MatchString(ev.ConversationID) {
		return fmt.Errorf("invalid conversation id %q", ev.ConversationID)
	}
	if ev.EventID == "" {
		return errors.New("event id is required")
	}
	if !ev.EventType.Valid() {
		return fmt.Errorf("unknown event type %q", ev.EventType)
	}

	c := s.Load(ev.ConversationID)
	if c == nil {
		c = &Conversation{
			ConversationID: ev.ConversationID,
			StartTime:      ev.Timestamp,
			Events:         []Event{},
		}
	}
	c.Events = append(c.Events, ev)

	if err := s.save(c); err != nil {
		return err
	}
	if s.feed != nil {
		s.feed.Publish(ev)
	}
	return nil
}

// Load returns the trace for the id, or nil when no trace exists. A stored
// document that cannot be parsed is reported as absent with a logged warning
// rather than an error: a corrupt file must never crash a reader.
func (s *FileStore) Load(conversationID string) *Conversation {
	if !validConversationID.MatchString(conversationID) {
		return nil
	}
	data, err := os.ReadFile(s.filename(conversationID))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("trace %s unreadable: %v", conversationID, err)
		}
		return nil
	}
	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		log.Printf("trace %s corrupt, treating as absent: %v", conversationID, err)
		return nil
	}
	if c.ConversationID == "" {
		log.Printf("trace %s missing conversation_id, treating as absent", conversationID)
		return nil
	}
	return &c
}

// List scans the traces directory and returns one entry per readable trace,
// newest first by start time. Traces that fail to parse are skipped; a single
// corrupt file must not abort the listing.
func (s *FileStore) List() []ListEntry {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("list traces: %v", err)
		}
		return []ListEntry{}
	}

	out := make([]ListEntry, 0, len(entries))
	for _, entry := range entries {
		id, ok := conversationIDFromFilename(entry.Name())
		if !ok {
			continue
		}
		c := s.Load(id)
		if c == nil || len(c.Events) == 0 {
			continue
		}
		out = append(out, listEntryOf(c))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ConversationID < out[j].ConversationID
	})
	return out
}

func listEntryOf(c *Conversation) ListEntry {
	e := ListEntry{
		ConversationID: c.ConversationID,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		EventCount:     len(c.Events),
		CompanyName:    "Unknown",
		Category:       "unknown",
	}
	for _, ev := range c.Events {
		switch ev.EventType {
		case EventUserRequest:
			if name, ok := ev.Content["company_name"].(string); ok && name != "" {
				e.CompanyName = name
			}
		case EventBotResponse:
			if eval, ok := ev.Content["evaluation"].(map[string]any); ok {
				if cat, ok := eval["category"].(string); ok && cat != "" {
					e.Category = cat
				}
				e.Confidence = intValue(eval["confidence"])
			}
			return e
		}
	}
	return e
}

// End closes the conversation: stamps end_time, attaches the supplied summary
// or computes one, and persists exactly once.
func (s *FileStore) End(conversationID string, summary *Summary) (*Conversation, error) {
	c := s.Load(conversationID)
	if c == nil {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	c.EndTime = &now
	if summary == nil {
		sum := Summarize(c)
		summary = &sum
	}
	c.Summary = summary
	if err := s.save(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the stored trace and reports whether one existed. A missing
// trace is not an error; a failed removal of an existing trace is.
func (s *FileStore) Delete(conversationID string) (bool, error) {
	if !validConversationID.MatchString(conversationID) {
		return false, nil
	}
	err := os.Remove(s.filename(conversationID))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete trace %s: %w", conversationID, err)
	}
	return true, nil
}

// StaleTraces returns the ids of traces whose file modification time is older
// than now - maxAge. Age is judged by storage recency, not by the logical
// start_time: a trace a writer is still appending to keeps a fresh mtime and
// is never reported stale.
func (s *FileStore) StaleTraces(maxAge time.Duration) []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	cutoff := time.Now().Add(-maxAge)

	var stale []string
	for _, entry := range entries {
		id, ok := conversationIDFromFilename(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	return stale
}

// Purge deletes every stale trace and returns how many were removed. Failures
// on individual files do not stop the sweep; they are joined into the
// returned error.
func (s *FileStore) Purge(maxAge time.Duration) (int, error) {
	removed := 0
	var errs []error
	for _, id := range s.StaleTraces(maxAge) {
		ok, err := s.Delete(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

// StartJanitor purges stale traces on a fixed interval until ctx is done.
func (s *FileStore) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.Purge(maxAge)
				if err != nil {
					log.Printf("trace purge: %v", err)
				}
				if n > 0 {
					log.Printf("trace purge removed %d stale trace(s)", n)
				}
			}
		}
	}()
}

func (s *FileStore) save(c *Conversation) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace %s: %w", c.ConversationID, err)
	}

	tmp, err := os.CreateTemp(s.dir, "trace_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp trace file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write trace %s: %w", c.ConversationID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close trace %s: %w", c.ConversationID, err)
	}
	if err := os.Rename(tmpName, s.filename(c.ConversationID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("persist trace %s: %w", c.ConversationID, err)
	}
	return nil
}

func conversationIDFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, "trace_") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, "trace_"), ".json")
	if !validConversationID.MatchString(id) {
		return "", false
	}
	return id, true
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil {
			return i
		}
	}
	return 0
}
