package flow

import (
	"context"
	"fmt"
	"sync"
)

// KindPracticeFinished is the discriminator a practice view sends when the
// participant has finished the embedded exercise.
const KindPracticeFinished = "practice-finished"

// CompletionSignal is the typed cross-context message that replaces the
// raw window message the legacy pages relied on: a fixed discriminator
// plus an optional exercise name.
type CompletionSignal struct {
	Kind     string `json:"kind"`
	Exercise string `json:"exercise,omitempty"`
}

// Envelope pairs a signal with a delivery acknowledgement.
type Envelope struct {
	Signal CompletionSignal

	ackOnce sync.Once
	ack     chan struct{}
}

// Ack confirms delivery to the publisher. Safe to call more than once.
func (e *Envelope) Ack() {
	e.ackOnce.Do(func() { close(e.ack) })
}

// Bus carries completion envelopes from practice views to the controller.
// Publish blocks until the consumer acknowledges delivery or ctx ends, so
// a practice view knows its completion was seen. Acknowledgement means
// delivered, not accepted: signals with a foreign discriminator are acked
// and then dropped by the consumer.
type Bus struct {
	ch chan *Envelope
}

// NewBus creates a bus with the given channel buffer.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan *Envelope, buffer)}
}

// Publish delivers a signal and waits for its acknowledgement.
func (b *Bus) Publish(ctx context.Context, sig CompletionSignal) error {
	env := &Envelope{Signal: sig, ack: make(chan struct{})}

	select {
	case b.ch <- env:
	case <-ctx.Done():
		return fmt.Errorf("publish completion signal: %w", ctx.Err())
	}

	select {
	case <-env.ack:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("await completion ack: %w", ctx.Err())
	}
}

// Signals returns the consumer side of the bus.
func (b *Bus) Signals() <-chan *Envelope {
	return b.ch
}
