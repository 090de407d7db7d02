package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var errStreamingUnsupported = errors.New("response writer cannot stream")

// eventStream frames pipeline events as Server-Sent Events. Progress
// callbacks arrive from regeneration workers, so writes are serialized.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// newEventStream commits the stream headers on w. retryMillis, when positive,
// tells clients how long to wait before reconnecting.
func newEventStream(w http.ResponseWriter, retryMillis int) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if retryMillis > 0 {
		fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	}
	flusher.Flush()
	return &eventStream{w: w, flusher: flusher}, nil
}

// WriteEvent sends name with payload encoded as one JSON data line
func (s *eventStream) WriteEvent(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError ends the stream with an "error" event. Write failures are
// dropped: the client is already gone.
func (s *eventStream) WriteError(status int, message string) {
	_ = s.WriteEvent("error", errorBody{Status: status, Error: message})
}

type errorBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}
