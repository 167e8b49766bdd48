package liveevents

import (
	"errors"
	"strings"
	"sync"

	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// Event is one progress update pushed over the realtime channel. Delivery is
// best-effort; the progress endpoint remains authoritative.
type Event struct {
	SearchID string                        `json:"search_id"`
	Progress searchdomain.ProgressResponse `json:"progress"`
}

// Hub fans progress events out to SSE subscribers, keyed by search ID. A
// small ring buffer replays recent events to late subscribers.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub      *Hub
	searchID string
	id       uint64
	ch       chan Event
	once     sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish delivers the event to every subscriber of the search. Slow
// subscribers are skipped, never blocked on.
func (h *Hub) Publish(searchID string, event Event) {
	if h == nil {
		return
	}
	key := strings.TrimSpace(searchID)
	if key == "" {
		return
	}
	h.mu.RLock()
	stream := h.streams[key]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribe(searchID string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	key := strings.TrimSpace(searchID)
	if key == "" {
		return nil, nil, errors.New("invalid_search_id")
	}

	stream := h.ensureStream(key)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan Event)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]Event(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub:      h,
		searchID: key,
		id:       id,
		ch:       ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(searchID string) *stream {
	h.mu.RLock()
	current := h.streams[searchID]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[searchID]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[searchID] = current
	}
	return current
}

func (h *Hub) unsubscribe(searchID string, id uint64) {
	if h == nil {
		return
	}

	h.mu.RLock()
	stream := h.streams[searchID]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[searchID]
	if current != stream {
		h.mu.Unlock()
		return
	}
	stream.mu.Lock()
	empty := len(stream.subs) == 0
	stream.mu.Unlock()
	if empty {
		delete(h.streams, searchID)
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.searchID, s.id)
	})
}
