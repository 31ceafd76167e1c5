// Package notify delivers customer lifecycle notifications. Delivery is
// fire-and-forget from the caller's point of view: Async runs dispatchers in
// the background and only logs their failures.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeCreated = "created"
	TypeUpdated = "updated"
)

// Event tells downstream consumers that a customer changed.
type Event struct {
	CustomerID uuid.UUID `json:"customerId"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(customerID uuid.UUID, typ string) Event {
	return Event{CustomerID: customerID, Type: typ, OccurredAt: time.Now().UTC()}
}

func (e Event) payload() ([]byte, error) {
	return json.Marshal(e)
}

// Dispatcher delivers one event.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// LogDispatcher writes events to a structured logger.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger.With("component", "notify")}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event Event) error {
	d.logger.InfoContext(ctx, "customer notification",
		"customer_id", event.CustomerID.String(),
		"type", event.Type,
	)
	return nil
}

// Async hands events to a Dispatcher on a background goroutine.
type Async struct {
	next    Dispatcher
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsync wraps next. Each delivery gets its own timeout detached from the
// caller's context so a finished request does not cancel it.
func NewAsync(next Dispatcher, logger *slog.Logger, timeout time.Duration) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, logger: logger.With("component", "notify"), timeout: timeout}
}

// Notify schedules delivery and returns immediately. Events arriving after
// Close are dropped with a warning.
func (a *Async) Notify(ctx context.Context, event Event) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.WarnContext(ctx, "notification dropped after shutdown",
			"customer_id", event.CustomerID.String(),
			"type", event.Type,
		)
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		if err := a.next.Dispatch(dctx, event); err != nil {
			a.logger.WarnContext(dctx, "notification dispatch failed",
				"customer_id", event.CustomerID.String(),
				"type", event.Type,
				"error", err,
			)
		}
	}()
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events, then waits like Wait. It is safe to call more
// than once.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Wait(ctx)
}
