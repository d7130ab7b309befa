package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blesslab/bless-server/models"
)

// State is the position of a daily-task cycle in its linear flow.
type State int

const (
	StateIdle State = iota
	StateGated
	StateBlocked // terminal: gate hit, nothing further reachable
	StatePreAssessment
	StatePractice
	StatePostAssessment
	StateCompleted // terminal
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateGated:          "gated",
	StateBlocked:        "blocked",
	StatePreAssessment:  "pre-assessment",
	StatePractice:       "practice",
	StatePostAssessment: "post-assessment",
	StateCompleted:      "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateBlocked || s == StateCompleted
}

var (
	// ErrBadTransition reports a transition method called out of order.
	ErrBadTransition = errors.New("transition not allowed from current state")

	// ErrUnknownSignal reports a completion signal whose discriminator is
	// not the practice-finished marker.
	ErrUnknownSignal = errors.New("unknown completion signal")
)

// DefaultFlushTimeout caps the wait for draining the outbox before the
// terminal transition. The participant sees the thank-you view no later
// than this after submitting the post-test.
const DefaultFlushTimeout = 5 * time.Second

// Controller drives one daily-task cycle for one participant. All flow
// state lives here, constructed fresh per cycle; there are no ambient
// globals. Methods are safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	backend Backend
	userID  string

	state   State
	trial   int
	task    string
	cycleID string

	outbox       *Outbox
	flushTimeout time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithOutbox replaces the default outbox.
func WithOutbox(o *Outbox) Option {
	return func(c *Controller) { c.outbox = o }
}

// WithFlushTimeout caps the pre-terminal outbox drain.
func WithFlushTimeout(d time.Duration) Option {
	return func(c *Controller) { c.flushTimeout = d }
}

// WithCycleID pins the cycle identifier (tests; normally a fresh UUID).
func WithCycleID(id string) Option {
	return func(c *Controller) { c.cycleID = id }
}

// NewController creates a controller in StateIdle for one cycle.
func NewController(backend Backend, userID string, opts ...Option) *Controller {
	c := &Controller{
		backend:      backend,
		userID:       userID,
		state:        StateIdle,
		cycleID:      uuid.NewString(),
		flushTimeout: DefaultFlushTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.outbox == nil {
		c.outbox = NewOutbox(16)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) CycleID() string { return c.cycleID }

// Trial returns the trial number resolved by BeginAssessment.
func (c *Controller) Trial() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trial
}

// Task returns the assigned task resolved by BeginAssessment.
func (c *Controller) Task() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.task
}

// Start runs the daily gate: Idle -> Gated, or Idle -> Blocked when a
// completed cycle already exists for today. The gate is advisory-safe: if
// the check itself fails the participant is allowed through, never locked
// out by a backend hiccup.
func (c *Controller) Start(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return c.state, fmt.Errorf("%w: start from %s", ErrBadTransition, c.state)
	}

	blocked, err := c.backend.CheckDailyUsage(ctx, c.userID)
	if err != nil {
		slog.Warn("daily gate check failed, allowing through", "userid", c.userID, "error", err)
		blocked = false
	}

	if blocked {
		c.state = StateBlocked
	} else {
		c.state = StateGated
	}
	return c.state, nil
}

// BeginAssessment resolves this cycle's trial and task and reveals the
// pre-test: Gated -> PreAssessment. A missing task assignment is fatal for
// the session (ErrTaskNotFound, state unchanged): the caller shows an
// operator-contact message rather than guessing a default task.
func (c *Controller) BeginAssessment(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateGated {
		return fmt.Errorf("%w: begin assessment from %s", ErrBadTransition, c.state)
	}

	trial, err := c.backend.GetProgress(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("resolve trial: %w", err)
	}

	task, err := c.backend.GetTask(ctx, c.userID, trial)
	if err != nil {
		return fmt.Errorf("resolve task for trial %d: %w", trial, err)
	}

	c.trial = trial
	c.task = task

	userID, featureType := c.userID, c.task
	c.outbox.Enqueue(Intent{
		Name: "mark-started",
		Do: func(ctx context.Context) error {
			return c.backend.MarkStarted(ctx, userID, featureType)
		},
	})

	c.state = StatePreAssessment
	return nil
}

// SubmitPreAssessment queues the pre-test responses and reveals the
// practice view: PreAssessment -> Practice. Persistence never blocks the
// visual transition; a failed save is retried from the outbox and at worst
// logged as lost.
func (c *Controller) SubmitPreAssessment(ctx context.Context, responses map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePreAssessment {
		return fmt.Errorf("%w: submit pre-assessment from %s", ErrBadTransition, c.state)
	}

	c.enqueueSave(models.PhasePre, responses)
	c.state = StatePractice
	return nil
}

// CompletePractice consumes a completion signal from the embedded practice
// view: Practice -> PostAssessment. Any well-formed practice-finished
// signal counts, regardless of which exercise page sent it; anything else
// is ErrUnknownSignal and leaves the state alone.
func (c *Controller) CompletePractice(sig CompletionSignal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sig.Kind != KindPracticeFinished {
		return fmt.Errorf("%w: %q", ErrUnknownSignal, sig.Kind)
	}
	if c.state != StatePractice {
		return fmt.Errorf("%w: complete practice from %s", ErrBadTransition, c.state)
	}

	c.state = StatePostAssessment
	return nil
}

// SubmitPostAssessment queues the post-test responses and the combined
// completion (mark finished + advance trial, idempotent on the cycle ID),
// drains the outbox under the flush cap, and enters Completed. The terminal
// transition happens even when the drain comes up short: the participant is
// never trapped on a spinner by a transient backend failure, at the
// accepted cost of possible data loss (logged).
func (c *Controller) SubmitPostAssessment(ctx context.Context, responses map[string]string) error {
	c.mu.Lock()

	if c.state != StatePostAssessment {
		c.mu.Unlock()
		return fmt.Errorf("%w: submit post-assessment from %s", ErrBadTransition, c.state)
	}

	c.enqueueSave(models.PhasePost, responses)

	userID, cycleID, featureType, newTrial := c.userID, c.cycleID, c.task, c.trial+1
	c.outbox.Enqueue(Intent{
		Name: "complete-cycle",
		Do: func(ctx context.Context) error {
			return c.backend.CompleteCycle(ctx, userID, cycleID, featureType, newTrial)
		},
	})
	outbox, flushTimeout := c.outbox, c.flushTimeout
	c.mu.Unlock()

	// Flush outside the lock; state readers must not wait on the network.
	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := outbox.Flush(flushCtx); err != nil {
		slog.Warn("outbox not fully drained before completion",
			"userid", userID, "cycle_id", cycleID, "pending", outbox.Pending(), "error", err)
	}

	c.mu.Lock()
	c.state = StateCompleted
	c.mu.Unlock()
	return nil
}

// ServeSignals consumes completion envelopes from the bus until ctx ends.
// Every received envelope is acknowledged (delivery receipt); only signals
// carrying the practice-finished discriminator advance the flow, the rest
// are dropped with a log line.
func (c *Controller) ServeSignals(ctx context.Context, bus *Bus) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-bus.Signals():
			if !ok {
				return
			}
			if err := c.CompletePractice(env.Signal); err != nil {
				slog.Warn("ignoring completion signal", "kind", env.Signal.Kind, "error", err)
			}
			env.Ack()
		}
	}
}

// enqueueSave must be called with c.mu held.
func (c *Controller) enqueueSave(phase string, responses map[string]string) {
	userID, featureType := c.userID, c.task
	copied := make(map[string]string, len(responses))
	for k, v := range responses {
		copied[k] = v
	}
	c.outbox.Enqueue(Intent{
		Name: "save-" + phase + "-assessment",
		Do: func(ctx context.Context) error {
			return c.backend.SaveAssessment(ctx, userID, phase, featureType, copied)
		},
	})
}
