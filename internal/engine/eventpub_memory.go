package engine

import "sync"

// MemoryPublisher retains events in memory. Intended for tests and for the
// in-process status page; it keeps at most max events, dropping the oldest.
type MemoryPublisher struct {
	mu     sync.Mutex
	max    int
	events []Event
}

// NewMemoryPublisher creates a publisher retaining up to max events.
// max <= 0 means a default of 256.
func NewMemoryPublisher(max int) *MemoryPublisher {
	if max <= 0 {
		max = 256
	}
	return &MemoryPublisher{max: max}
}

func (p *MemoryPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	if len(p.events) > p.max {
		p.events = p.events[len(p.events)-p.max:]
	}
}

// Events returns a copy of the retained events in publish order.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
