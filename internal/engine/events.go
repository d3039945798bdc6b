package engine

import "time"

// Event is a lifecycle notification emitted by the engine: base model
// loaded, adapter applied/removed, rollback, classification.
type Event struct {
	Name      string
	AdapterID string
	At        time.Time
	Fields    map[string]any
}

// EventPublisher receives engine lifecycle events. Publish must not block;
// implementations drop or buffer as they see fit.
type EventPublisher interface {
	Publish(ev Event)
}

// noopPublisher is the default when no publisher is configured.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

func (e *Engine) publish(name, adapterID string, fields map[string]any) {
	e.pub.Publish(Event{Name: name, AdapterID: adapterID, At: time.Now(), Fields: fields})
}
