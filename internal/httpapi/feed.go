package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antoniostano/adpulse/internal/protocol"
)

// handleTraceFeedWS streams trace events to the client as they are appended.
// The client may send a subscribe message to narrow the stream to one
// conversation; the conversation_id query parameter does the same up front.
func (s *Server) handleTraceFeedWS(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "trace feed not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.FeedClients.Inc()
	defer s.metrics.FeedClients.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := s.feed.Subscribe(64)
	defer s.feed.Unsubscribe(events)

	// filter holds the conversation id the client is narrowed to; empty means
	// everything. Only the writer goroutine reads it, only via the channel.
	filterCh := make(chan string, 4)
	if id := strings.TrimSpace(r.URL.Query().Get("conversation_id")); id != "" {
		filterCh <- id
	}

	outbound := make(chan any, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		filter := ""
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-filterCh:
				filter = id
				select {
				case outbound <- protocol.NewSystemEvent("subscribed to " + subscriptionName(id)):
				default:
				}
			case msg, ok := <-outbound:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
			case ev, ok := <-events:
				if !ok {
					return
				}
				if filter != "" && ev.ConversationID != filter {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(protocol.NewTraceEventMessage(ev)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		sub, err := protocol.ParseClientMessage(data)
		if err != nil {
			select {
			case outbound <- protocol.NewErrorEvent(err.Error()):
			default:
				// Writes stay single-threaded; drop when the queue is full.
			}
			continue
		}
		select {
		case <-ctx.Done():
		case filterCh <- strings.TrimSpace(sub.ConversationID):
		}
	}

	cancel()
	<-writerDone
}

func subscriptionName(conversationID string) string {
	if conversationID == "" {
		return "all conversations"
	}
	return "conversation " + conversationID
}
