// Package feed streams social events to connected websocket clients.
//
// Hub fans events out to subscribers without blocking: a subscriber whose
// queue is full misses the event. Gateway upgrades authenticated requests and
// runs one writer and one heartbeat goroutine per connection.
package feed
