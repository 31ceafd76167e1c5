package stats

import (
	"context"
	"sync"
)

// Lazy is an int64 that is either already known (resolved) or computed on first
// read (pending). A successful evaluation is kept for the lifetime of the value;
// a failed one leaves it pending so the next read retries.
type Lazy struct {
	mu       sync.Mutex
	fn       func(ctx context.Context) (int64, error)
	value    int64
	resolved bool
}

// Pending defers fn until the first Value call.
func Pending(fn func(ctx context.Context) (int64, error)) *Lazy {
	return &Lazy{fn: fn}
}

// Resolved wraps a value that is already known.
func Resolved(v int64) *Lazy {
	return &Lazy{value: v, resolved: true}
}

// Value returns the resolved value, evaluating the pending computation once.
func (l *Lazy) Value(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.resolved {
		return l.value, nil
	}
	if l.fn == nil {
		l.resolved = true
		return 0, nil
	}
	v, err := l.fn(ctx)
	if err != nil {
		return 0, err
	}
	l.value, l.resolved, l.fn = v, true, nil
	return v, nil
}

// IsResolved reports whether reading Value would skip evaluation.
func (l *Lazy) IsResolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved
}
