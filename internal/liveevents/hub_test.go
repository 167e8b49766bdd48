package liveevents

import (
	"testing"

	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
)

func progressEvent(searchID string, progress int) Event {
	return Event{
		SearchID: searchID,
		Progress: searchdomain.ProgressResponse{
			SearchID: searchID,
			Status:   searchdomain.StatusParsing,
			Progress: progress,
		},
	}
}

func TestPublishWithoutSubscribersIsDropped(t *testing.T) {
	hub := NewHub()
	hub.Publish("42", progressEvent("42", 10))

	_, backlog, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(backlog) != 0 {
		t.Fatalf("expected empty backlog, got %d events", len(backlog))
	}
}

func TestSubscriberReceivesPublishedEvents(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	hub.Publish("42", progressEvent("42", 10))
	hub.Publish("42", progressEvent("42", 30))

	first := <-sub.Events()
	second := <-sub.Events()
	if first.Progress.Progress != 10 || second.Progress.Progress != 30 {
		t.Fatalf("unexpected deliveries: %d, %d", first.Progress.Progress, second.Progress.Progress)
	}
}

func TestLateSubscriberGetsBacklog(t *testing.T) {
	hub := NewHub()
	early, _, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer early.Close()

	hub.Publish("42", progressEvent("42", 10))
	hub.Publish("42", progressEvent("42", 30))

	late, backlog, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer late.Close()

	if len(backlog) != 2 {
		t.Fatalf("expected backlog of 2, got %d", len(backlog))
	}
	if backlog[0].Progress.Progress != 10 || backlog[1].Progress.Progress != 30 {
		t.Fatalf("backlog out of order: %v", backlog)
	}
}

func TestBacklogIsBounded(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	for i := 0; i < DefaultBufferSize+10; i++ {
		hub.Publish("42", progressEvent("42", i))
	}

	_, backlog, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(backlog) != DefaultBufferSize {
		t.Fatalf("expected backlog capped at %d, got %d", DefaultBufferSize, len(backlog))
	}
	if got := backlog[len(backlog)-1].Progress.Progress; got != DefaultBufferSize+9 {
		t.Fatalf("expected newest event retained, got progress %d", got)
	}
}

func TestStreamsAreIsolatedBySearch(t *testing.T) {
	hub := NewHub()
	a, _, err := hub.Subscribe("1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer a.Close()
	b, _, err := hub.Subscribe("2")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer b.Close()

	hub.Publish("1", progressEvent("1", 10))

	if got := <-a.Events(); got.SearchID != "1" {
		t.Fatalf("unexpected event %v", got)
	}
	select {
	case got := <-b.Events():
		t.Fatalf("stream 2 received foreign event %v", got)
	default:
	}
}

func TestSlowSubscriberIsSkippedNotBlocked(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	// Fill the subscriber channel past capacity; Publish must not block.
	for i := 0; i < DefaultSubscriberBuffer+5; i++ {
		hub.Publish("42", progressEvent("42", i))
	}

	delivered := 0
	for {
		select {
		case <-sub.Events():
			delivered++
		default:
			if delivered != DefaultSubscriberBuffer {
				t.Fatalf("expected %d buffered deliveries, got %d", DefaultSubscriberBuffer, delivered)
			}
			return
		}
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("42")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	sub.Close()
	sub.Close() // idempotent

	hub.Publish("42", progressEvent("42", 10))
	select {
	case got := <-sub.Events():
		t.Fatalf("closed subscription received %v", got)
	default:
	}
}

func TestSubscribeRejectsBlankSearchID(t *testing.T) {
	hub := NewHub()
	for _, id := range []string{"", "   "} {
		if _, _, err := hub.Subscribe(id); err == nil {
			t.Fatalf("expected error for id %q", id)
		}
	}
}
