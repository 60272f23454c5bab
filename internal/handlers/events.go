package handlers

import (
	"fmt"
	"net/http"

	"secrecy-ai/internal/contextutil"
	"secrecy-ai/internal/events"
)

// EventsHandler streams change notifications over Server-Sent Events so
// clients can refetch when chats or notes change.
type EventsHandler struct {
	bus *events.Bus
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(bus *events.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// ServeHTTP subscribes the client to chat and note change events until the
// connection closes. Each event carries only the topic name; payloads are
// fetched through the normal endpoints.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Buffered so publishers never block on a slow client; a dropped tick is
	// fine because events are refetch hints, not data.
	notify := make(chan events.Topic, 8)
	enqueue := func(topic events.Topic) func() {
		return func() {
			select {
			case notify <- topic:
			default:
			}
		}
	}

	unsubChats := h.bus.Subscribe(events.TopicChats, enqueue(events.TopicChats))
	defer unsubChats()
	unsubNotes := h.bus.Subscribe(events.TopicNotes, enqueue(events.TopicNotes))
	defer unsubNotes()

	_, _ = fmt.Fprintf(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case topic := <-notify:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: changed\n\n", topic); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
