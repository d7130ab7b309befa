package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Intent is a queued persistence action. Do must be safe to retry: every
// server-side write it targets is either append-only or idempotent.
type Intent struct {
	Name string
	Do   func(ctx context.Context) error
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 250 * time.Millisecond
)

// Outbox is a bounded FIFO of persistence intents with retry. Enqueue never
// blocks: when the queue is full the oldest intent is dropped with a log
// line, keeping the UI responsive at the accepted cost of data loss.
type Outbox struct {
	mu      sync.Mutex
	pending []Intent

	capacity    int
	maxAttempts int
	baseDelay   time.Duration
}

// OutboxOption configures an Outbox.
type OutboxOption func(*Outbox)

// WithRetry sets the per-intent attempt count and initial backoff delay.
// The delay doubles after each failed attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) OutboxOption {
	return func(o *Outbox) {
		o.maxAttempts = maxAttempts
		o.baseDelay = baseDelay
	}
}

// NewOutbox creates an outbox holding at most capacity intents.
func NewOutbox(capacity int, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		capacity:    capacity,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enqueue appends an intent, evicting the oldest when full.
func (o *Outbox) Enqueue(intent Intent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.pending) >= o.capacity {
		dropped := o.pending[0]
		o.pending = o.pending[1:]
		slog.Warn("outbox full, dropping oldest intent", "dropped", dropped.Name, "enqueued", intent.Name)
	}
	o.pending = append(o.pending, intent)
}

// Pending returns the number of queued intents.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Flush processes intents in order, retrying each with exponential backoff
// up to the attempt limit. An intent that exhausts its attempts is dropped
// (logged) so it cannot wedge the queue. When ctx expires mid-drain the
// remaining intents stay queued and the context error is returned; a
// dropped intent is reported as an error too, so callers can tell a clean
// drain from a lossy one.
func (o *Outbox) Flush(ctx context.Context) error {
	var dropped []string

	for {
		o.mu.Lock()
		if len(o.pending) == 0 {
			o.mu.Unlock()
			break
		}
		intent := o.pending[0]
		o.mu.Unlock()

		if err := o.attempt(ctx, intent); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("flush interrupted with %d pending: %w", o.Pending(), ctx.Err())
			}
			slog.Error("dropping intent after retries", "intent", intent.Name, "error", err)
			dropped = append(dropped, intent.Name)
		}

		o.mu.Lock()
		// Head may have rotated if Enqueue evicted during the attempt;
		// only remove the intent we actually processed.
		if len(o.pending) > 0 && o.pending[0].Name == intent.Name {
			o.pending = o.pending[1:]
		}
		o.mu.Unlock()
	}

	if len(dropped) > 0 {
		return fmt.Errorf("dropped %d intent(s) after retries: %v", len(dropped), dropped)
	}
	return nil
}

func (o *Outbox) attempt(ctx context.Context, intent Intent) error {
	var lastErr error
	delay := o.baseDelay

	for i := 0; i < o.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = intent.Do(ctx)
		if lastErr == nil {
			return nil
		}

		if i < o.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return lastErr
}
