package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// FormatJSON is the only export format currently supported. The export is the
// full serialized trace document, indented for human reading and lossless for
// re-import.
const FormatJSON = "json"

// Export serializes one trace in the requested format. An unknown id or
// format is an error rather than empty output.
func (s *FileStore) Export(conversationID, format string) ([]byte, error) {
	c := s.Load(conversationID)
	if c == nil {
		return nil, fmt.Errorf("export %s: %w", conversationID, ErrNotFound)
	}
	return marshalExport(c, format)
}

// ExportAll serializes every readable trace, newest first.
func (s *FileStore) ExportAll(format string) ([]byte, error) {
	if !formatSupported(format) {
		return nil, fmt.Errorf("export all: %w: %q", ErrUnsupportedFormat, format)
	}
	traces := []*Conversation{}
	for _, entry := range s.List() {
		if c := s.Load(entry.ConversationID); c != nil {
			traces = append(traces, c)
		}
	}
	data, err := json.MarshalIndent(traces, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export all: %w", err)
	}
	return data, nil
}

func marshalExport(c *Conversation, format string) ([]byte, error) {
	if !formatSupported(format) {
		return nil, fmt.Errorf("export %s: %w: %q", c.ConversationID, ErrUnsupportedFormat, format)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", c.ConversationID, err)
	}
	return data, nil
}

func formatSupported(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), FormatJSON)
}
