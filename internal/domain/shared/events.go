// Package shared holds the domain types used by more than one aggregate.
package shared

import "time"

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventRecorder buffers domain events until the application layer drains them
type EventRecorder struct {
	events []DomainEvent
}

// Record adds a domain event to be dispatched
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// Events returns and clears pending domain events
func (r *EventRecorder) Events() []DomainEvent {
	events := r.events
	r.events = nil
	return events
}

// Pending reports how many events are buffered
func (r *EventRecorder) Pending() int {
	return len(r.events)
}
