package feed

import (
	"sync"

	"minisocial/cmd/internal/social"
)

// Subscription is one connected feed session.
//
// send is never closed by the hub, so a concurrent Publish cannot panic.
// done signals the session goroutines to stop.
type Subscription struct {
	id     string
	userID string
	send   chan social.Event

	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription(id, userID string, queue int) *Subscription {
	if queue <= 0 {
		queue = DefaultSendQueue
	}
	return &Subscription{
		id:     id,
		userID: userID,
		send:   make(chan social.Event, queue),
		done:   make(chan struct{}),
	}
}

func (s *Subscription) ID() string { return s.id }

// Events delivers published events in order. It is never closed; select on
// Done as well.
func (s *Subscription) Events() <-chan social.Event { return s.send }

func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close is idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
