// Package events allows goroutines to subscribe to the stream of messages
// the node produces while it processes blocks.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is how many messages a subscriber can fall behind before
// messages are dropped for it. A websocket write can take a while.
const messageBuffer = 100

// Events maintains a mapping of subscriber id to channel.
type Events struct {
	mu sync.RWMutex
	m  map[string]chan string
}

// New constructs an events value for subscribing and receiving messages.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes every subscriber channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that receives every
// message sent after the call. The channel is closed by Release or Shutdown.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	ch = make(chan string, messageBuffer)
	evt.m[id] = ch

	return ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Send delivers the message to every subscriber that has room for it and
// returns how many received it. Send never blocks on a slow subscriber.
func (evt *Events) Send(s string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	var sent int
	for _, ch := range evt.m {
		select {
		case ch <- s:
			sent++
		default:
		}
	}

	return sent
}
