package feed

import (
	"log/slog"
	"sync"

	"minisocial/cmd/internal/social"

	"github.com/google/uuid"
)

// Hub is an in-memory broadcast fan-out of social events.
type Hub struct {
	log *slog.Logger

	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool

	onCount func(n int)
	onDrop  func()
}

var _ social.Publisher = (*Hub)(nil)

type HubOption func(*Hub)

// WithSubscriberHook is called with the subscriber count after every change.
func WithSubscriberHook(fn func(n int)) HubOption {
	return func(h *Hub) {
		if fn != nil {
			h.onCount = fn
		}
	}
}

// WithDropHook is called once per event dropped for a full queue.
func WithDropHook(fn func()) HubOption {
	return func(h *Hub) {
		if fn != nil {
			h.onDrop = fn
		}
	}
}

func NewHub(log *slog.Logger, opts ...HubOption) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		log:     log,
		subs:    make(map[string]*Subscription),
		onCount: func(int) {},
		onDrop:  func() {},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Subscribe registers a new session. It returns nil after Close.
func (h *Hub) Subscribe(userID string, queue int) *Subscription {
	s := newSubscription(uuid.NewString(), userID, queue)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.subs[s.id] = s
	n := len(h.subs)
	h.mu.Unlock()

	h.onCount(n)
	h.log.Debug("feed.subscribe", "subscriber_id", s.id, "user_id", userID)
	return s
}

// Unsubscribe removes the session, then signals it to stop.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	s, ok := h.subs[id]
	delete(h.subs, id)
	n := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	s.Close()
	h.onCount(n)
	h.log.Debug("feed.unsubscribe", "subscriber_id", id)
}

// Publish never blocks.
func (h *Hub) Publish(ev social.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		select {
		case <-s.Done():
			continue
		default:
		}

		select {
		case s.send <- ev:
		default:
			h.onDrop()
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close stops every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	h.closed = true
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
	h.onCount(0)
}
