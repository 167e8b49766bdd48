package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talentsift/talentsift/internal/liveevents"
)

// StreamSearchEvents pushes progress updates for one search over SSE. The
// pull endpoint stays authoritative; this channel is best-effort.
func (s *Server) StreamSearchEvents(c *gin.Context) {
	userID, _ := userIDFrom(c)
	searchID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Authorization piggybacks on the progress lookup; it also gives the
	// subscriber a current snapshot before the backlog replay.
	progress, err := s.searchSvc.Progress(c.Request.Context(), searchID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	subscription, backlog, err := s.liveSearch.Subscribe(searchID.String())
	if err != nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer subscription.Close()

	writer := c.Writer
	headers := writer.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if _, err := io.WriteString(writer, "retry: 2000\n\n"); err != nil {
		return
	}

	if len(backlog) == 0 {
		if err := writeSearchEvent(writer, liveevents.Event{
			SearchID: searchID.String(),
			Progress: *progress,
		}); err != nil {
			return
		}
	}
	for _, event := range backlog {
		if err := writeSearchEvent(writer, event); err != nil {
			return
		}
	}
	flusher.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-subscription.Events():
			if err := writeSearchEvent(writer, event); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(writer, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSearchEvent(w io.Writer, event liveevents.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
