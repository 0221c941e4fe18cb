// Package annotations provides a low-overhead event system for tracking
// how a database is built and how queries are answered.
package annotations

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Database construction
	BuildInvoked  = "build/invoked"
	BuildComplete = "build/completed"

	// Fixpoint passes
	PassBegin    = "pass/begin"
	PassComplete = "pass/complete"

	// Rule application
	RuleApplied   = "rule/applied"
	GoalEvaluated = "goal/evaluated"
	JoinBindings  = "join/bindings"

	// Query lifecycle
	QueryInvoked  = "query/invoked"
	QueryComplete = "query/completed"

	// Errors
	ErrorUnsafeRule = "error/unsafe-rule"
	ErrorPassLimit  = "error/pass-limit"
)

// Event represents a single annotation event
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Additional event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Tee returns a handler that forwards every event to each non-nil handler
// in order. It returns nil when no handler is given.
func Tee(handlers ...Handler) Handler {
	var active []Handler
	for _, h := range handlers {
		if h != nil {
			active = append(active, h)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return func(event Event) {
		for _, h := range active {
			h(event)
		}
	}
}

// Collector accumulates events and forwards them to a handler.
type Collector struct {
	enabled bool
	handler Handler
	events  []Event
	mu      sync.Mutex
	emit    sync.Mutex // serializes handler calls
}

// NewCollector creates a new annotation collector.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 64),
	}
}

// Handler returns the underlying event handler.
func (c *Collector) Handler() Handler {
	return c.handler
}

// Add records a new event.
// Thread-safe for concurrent access.
func (c *Collector) Add(event Event) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// Call handler outside the events lock to avoid deadlocks
	c.emit.Lock()
	defer c.emit.Unlock()
	c.handler(event)
}

// AddTiming records an event that started at start and ends now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.enabled {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns all collected events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	eventsCopy := make([]Event, len(c.events))
	copy(eventsCopy, c.events)
	return eventsCopy
}

// Count returns how many events with the given name were collected
func (c *Collector) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// Reset clears the collected events but keeps the handler.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
