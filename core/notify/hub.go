package notify

import (
	"sync"
	"time"
)

// subscriberBuffer bounds how many undelivered messages one subscriber
// may hold before further messages are dropped for it.
const subscriberBuffer = 16

// Message is one ephemeral progress notification. Messages are never
// persisted or replayed.
type Message struct {
	JobID     string    `json:"jobId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscriber is one live listener registered for a single job id.
type Subscriber struct {
	jobID string
	ch    chan Message
	done  chan struct{}
	once  sync.Once
}

// Messages returns the delivery channel. It is never closed; callers
// select on Done to detect removal.
func (s *Subscriber) Messages() <-chan Message {
	return s.ch
}

// Done is closed when the subscriber is unsubscribed.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Hub is the in-memory registry fanning out progress messages to the
// current subscribers of each job.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a new listener for jobID. The subscriber only
// receives messages published after this call.
func (h *Hub) Subscribe(jobID string) *Subscriber {
	sub := &Subscriber{
		jobID: jobID,
		ch:    make(chan Message, subscriberBuffer),
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[*Subscriber]struct{})
	}
	h.subs[jobID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber. Safe to call multiple times.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	if set, ok := h.subs[sub.jobID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.jobID)
		}
	}
	h.mu.Unlock()

	sub.once.Do(func() { close(sub.done) })
}

// Publish delivers text to every current subscriber of jobID. Delivery
// is non-blocking: a subscriber with a full buffer misses the message
// and the publisher moves on. The registry lock is only held to snapshot
// the subscriber set, so one job's subscribers never stall another's.
func (h *Hub) Publish(jobID, text string) {
	msg := Message{
		JobID:     jobID,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}

	h.mu.Lock()
	targets := make([]*Subscriber, 0, len(h.subs[jobID]))
	for sub := range h.subs[jobID] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- msg:
		default:
		}
	}
}
