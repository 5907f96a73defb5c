package notify

import (
	"encoding/json"
	"sync"
)

// Subscription is one client's bounded FIFO queue of pending notification
// payloads. It is created by Hub.Subscribe, owned by the hub until
// Unsubscribe, and drained by exactly one stream session.
type Subscription struct {
	project string
	ch      chan []byte
}

// Events returns the channel the session drains. Each element is a
// JSON-encoded Event, serialized once at broadcast time.
func (s *Subscription) Events() <-chan []byte {
	return s.ch
}

// Project returns the project this subscription is attached to.
func (s *Subscription) Project() string {
	return s.project
}

// Hub fans broadcast events out to all subscribers of a project. Enqueue is
// non-blocking: a subscriber whose queue is full misses that message while
// other subscribers are unaffected. A stalled subscriber is never removed by
// the hub itself; cleanup happens only through Unsubscribe when its session
// observes the disconnect.
type Hub struct {
	queueSize int

	mu          sync.Mutex
	subscribers map[string]map[*Subscription]struct{}
}

// NewHub creates a hub whose subscriber queues hold up to queueSize pending
// messages each.
func NewHub(queueSize int) *Hub {
	if queueSize < 1 {
		queueSize = 16
	}
	return &Hub{
		queueSize:   queueSize,
		subscribers: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber queue under the given project.
func (h *Hub) Subscribe(project string) *Subscription {
	sub := &Subscription{
		project: project,
		ch:      make(chan []byte, h.queueSize),
	}

	h.mu.Lock()
	set, ok := h.subscribers[project]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subscribers[project] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Unsubscribe detaches the subscription from its project. Removing an
// already-removed subscription is a no-op. When the last subscriber for a
// project detaches, the project's registry entry is removed entirely.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[sub.project]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subscribers, sub.project)
	}
}

// Broadcast serializes the event once and enqueues it onto every subscriber
// queue for the project. With no subscribers it is a cheap no-op that leaves
// no registry entry behind. Returns the marshal error, if any; delivery
// itself cannot fail, only drop.
func (h *Hub) Broadcast(project string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Enqueue under the lock so a concurrent Unsubscribe cannot close a
	// queue mid-send. Sends never block, so the critical section stays short.
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[project] {
		select {
		case sub.ch <- payload:
		default:
			// Queue full; drop for this subscriber only.
		}
	}

	return nil
}

// SubscriberCount reports the number of active subscribers for a project.
func (h *Hub) SubscriberCount(project string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[project])
}

// HasProject reports whether any subscriber is registered for the project.
func (h *Hub) HasProject(project string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.subscribers[project]
	return ok
}
