// Package eventlog keeps the append-only history of protocol traffic:
// every outbound message, inbound reply, and system transition, in
// insertion order, for consumption by an observer such as a UI.
package eventlog

import (
	"sync"
	"time"
)

// Direction classifies which side of the wire produced an event.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
	DirectionSystem   Direction = "system"
)

// Status classifies the outcome attached to an event at record time.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Event is one immutable history entry. Never mutated after Record.
type Event struct {
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer receives each event synchronously as it is recorded.
type Observer func(Event)

// Recorder is an unbounded, insertion-ordered event log. Appends come
// from the owning protocol client only; History snapshots are safe for
// concurrent readers. Callers needing bounds impose them externally.
type Recorder struct {
	mu       sync.Mutex
	events   []Event
	observer Observer
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Subscribe registers the single observer, replacing any previous one.
// A nil observer unsubscribes.
func (r *Recorder) Subscribe(fn Observer) {
	r.mu.Lock()
	r.observer = fn
	r.mu.Unlock()
}

// Record stamps the event if unstamped, appends it, and invokes the
// observer synchronously.
func (r *Recorder) Record(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	observer := r.observer
	r.mu.Unlock()
	if observer != nil {
		observer(ev)
	}
}

// History returns a snapshot copy of all recorded events in order.
func (r *Recorder) History() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len reports the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
