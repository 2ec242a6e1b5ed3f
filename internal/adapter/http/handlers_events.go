package adapthttp

import (
	"errors"
	"fmt"
	"net/http"

	"periodtracker/internal/app"
)

// handleEvents streams one server-sent event per store change until the
// client goes away. A client that falls behind may see a burst of changes
// merged into fewer events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	updates := make(chan struct{}, 16)
	unsubscribe := s.days.Subscribe(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", app.EventDataUpdated); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
