// Package notify keeps the queue of active user-facing notifications.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"brandpulse/internal/domain"
)

// Sink receives every notification as it is emitted.
type Sink interface {
	Deliver(n domain.Notification)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(n domain.Notification)

func (f SinkFunc) Deliver(n domain.Notification) { f(n) }

type Config struct {
	// TTL is how long a notification stays active. Zero keeps it until
	// dismissed.
	TTL       time.Duration
	MaxActive int
}

// Emitter holds the active notifications. It is safe for concurrent use.
type Emitter struct {
	mu     sync.Mutex
	active []domain.Notification
	ttl    time.Duration
	max    int
	sinks  []Sink
	now    func() time.Time
	logger *slog.Logger
}

func NewEmitter(cfg Config, logger *slog.Logger, sinks ...Sink) *Emitter {
	return &Emitter{
		ttl:    cfg.TTL,
		max:    cfg.MaxActive,
		sinks:  sinks,
		now:    time.Now,
		logger: logger.With("component", "notify"),
	}
}

// AddSink registers an extra sink for notifications emitted from now on.
func (e *Emitter) AddSink(s Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, s)
}

// Notify emits a notification and discards the result.
func (e *Emitter) Notify(title, message string, severity domain.Severity) {
	e.Push(title, message, severity)
}

// Push appends a notification to the queue and hands it to every sink. When
// the queue is full the oldest entry is dropped.
func (e *Emitter) Push(title, message string, severity domain.Severity) domain.Notification {
	now := e.now()
	n := domain.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
	}
	if e.ttl > 0 {
		n.ExpiresAt = now.Add(e.ttl)
	}

	e.mu.Lock()
	e.active = append(e.active, n)
	if e.max > 0 && len(e.active) > e.max {
		e.active = append([]domain.Notification(nil), e.active[len(e.active)-e.max:]...)
	}
	sinks := append([]Sink(nil), e.sinks...)
	e.mu.Unlock()

	e.logger.Debug("notification emitted",
		"id", n.ID,
		"severity", n.Severity,
		"title", n.Title,
	)

	for _, s := range sinks {
		s.Deliver(n)
	}

	return n
}

// Dismiss removes one notification. It reports false if id is not active.
func (e *Emitter) Dismiss(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, n := range e.active {
		if n.ID == id {
			e.active = append(e.active[:i:i], e.active[i+1:]...)
			return true
		}
	}
	return false
}

// DismissAll clears the queue and returns how many were removed.
func (e *Emitter) DismissAll() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.active)
	e.active = nil
	return n
}

// Sweep drops notifications that expired at now.
func (e *Emitter) Sweep(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.active[:0:0]
	for _, n := range e.active {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}

	removed := len(e.active) - len(kept)
	e.active = kept
	return removed
}

// Active returns the queue, oldest first.
func (e *Emitter) Active() []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Notification(nil), e.active...)
}
