package passgage

import "sync"

// Event notifies subscribers of a session lifecycle transition.
type Event struct {
	State State
	// Forced is true when the session was cleared without the caller asking,
	// e.g. the server rejected the refresh token.
	Forced bool
}

// events fans state transitions out to subscribers. Sends never block; a
// subscriber that stops draining misses events instead of stalling calls.
type events struct {
	mu   sync.Mutex
	subs []chan Event
}

// Subscribe returns a channel of session lifecycle events. The channel is
// buffered; slow consumers drop events rather than blocking operations.
func (e *events) Subscribe() <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, 8)
	e.subs = append(e.subs, ch)

	return ch
}

func (e *events) publish(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
