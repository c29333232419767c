// Package events publishes domain events (course created, enrollment
// cancelled, ...) to an MQTT broker. Publishing is best-effort: failures are
// logged and never reach the caller.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	CourseCreated       = "course/created"
	CourseDeleted       = "course/deleted"
	EnrollmentCreated   = "enrollment/created"
	EnrollmentCancelled = "enrollment/cancelled"
	UserRegistered      = "user/registered"
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, event string, data any)
	Close()
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) {}
func (NopPublisher) Close()                               {}

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

func (r *Recorder) Publish(_ context.Context, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Envelope{Event: event, OccurredAt: time.Now().UTC(), Data: data})
}

func (r *Recorder) Close() {}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.events...)
}

// Names lists the published event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Event)
	}
	return names
}
