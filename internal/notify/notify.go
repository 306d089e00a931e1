// Package notify defines the notification sink the engines publish to.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Event is a single notification emitted by an engine.
type Event struct {
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes for transport.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event from JSON bytes.
func EventFromJSON(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Sink receives notification events. Implementations must be safe for
// concurrent use. Engines tolerate a nil Sink (notifications become no-ops).
type Sink interface {
	Notify(ctx context.Context, ev Event)
}

// SlogSink writes events to structured logs. It is the default sink when no
// message broker is configured.
type SlogSink struct{}

func (SlogSink) Notify(ctx context.Context, ev Event) {
	slog.InfoContext(ctx, "Notification",
		"component", "notify",
		"kind", ev.Kind,
		"title", ev.Title,
		"message", ev.Message,
		"severity", ev.Severity)
}

// MemorySink records events for inspection in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *MemorySink) Notify(_ context.Context, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of the recorded events in arrival order.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// ByKind returns the recorded events matching kind.
func (s *MemorySink) ByKind(kind string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Reset discards all recorded events.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
