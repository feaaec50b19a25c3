package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// State is the lifecycle position of the request controller.
type State int

// Controller states. The terminal states are transient: the controller
// passes through one of them on every exit and then settles in StateIdle.
const (
	StateIdle State = iota
	StateRequesting
	StateCompleted
	StateAborted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is what one Compute call amounted to.
type Outcome int

// Compute outcomes.
const (
	OutcomeSkipped Outcome = iota // another request was in flight
	OutcomeCompleted
	OutcomeAborted
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCompleted:
		return "completed"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Controller runs at most one stat-weights request at a time against an
// engine and records completed results in a session.
type Controller struct {
	engine  contract.Engine
	session *Session

	mu           sync.Mutex
	state        State
	abortPending bool
	lastOutcome  Outcome
	lastErr      error

	// Changed fires on every state or abort-pending transition.
	Changed Notifier
}

// NewController wires a controller to engine and session.
func NewController(engine contract.Engine, session *Session) *Controller {
	return &Controller{engine: engine, session: session}
}

// Session returns the session results are stored in.
func (c *Controller) Session() *Session {
	return c.session
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a request or an abort is still in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateRequesting || c.abortPending
}

// LastOutcome returns the outcome and error of the most recent finished Compute.
func (c *Controller) LastOutcome() (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutcome, c.lastErr
}

// Compute runs one request unless another is in flight, in which case it
// returns OutcomeSkipped without touching the engine. Aborted runs return a
// nil error; engine failures are logged and wrapped in ErrRequestFailed.
// onProgress may be nil and is only used for display.
func (c *Controller) Compute(ctx context.Context, onProgress func(schema.ProgressMetrics)) (Outcome, error) {
	return c.ComputePrepared(ctx, nil, onProgress)
}

// ComputePrepared is Compute with a prepare hook that runs only once the
// request slot is claimed, before the request is snapshotted. A skipped call
// never runs prepare.
func (c *Controller) ComputePrepared(ctx context.Context, prepare func(), onProgress func(schema.ProgressMetrics)) (Outcome, error) {
	if !c.claim() {
		return OutcomeSkipped, nil
	}
	if prepare != nil {
		prepare()
	}
	return c.execute(ctx, onProgress)
}

// Start claims the request slot before returning and runs the request on a
// new goroutine. When another request is in flight it returns false and
// neither prepare nor the engine is called. prepare runs after the claim and
// before the request is snapshotted from the session. done may be nil.
func (c *Controller) Start(ctx context.Context, prepare func(), onProgress func(schema.ProgressMetrics), done func(Outcome, error)) bool {
	if !c.claim() {
		return false
	}
	if prepare != nil {
		prepare()
	}
	go func() {
		outcome, err := c.execute(ctx, onProgress)
		if done != nil {
			done(outcome, err)
		}
	}()
	return true
}

// claim moves an idle controller to StateRequesting.
func (c *Controller) claim() bool {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return false
	}
	c.state = StateRequesting
	c.mu.Unlock()
	c.Changed.Emit()
	return true
}

func (c *Controller) execute(ctx context.Context, onProgress func(schema.ProgressMetrics)) (outcome Outcome, err error) {
	outcome = OutcomeFailed
	defer func() { c.finish(outcome, err) }()

	outcome, err = c.run(ctx, onProgress)
	if err != nil {
		contract.LogWarn("stat weights request", err)
	}
	return outcome, err
}

func (c *Controller) run(ctx context.Context, onProgress func(schema.ProgressMetrics)) (Outcome, error) {
	if err := c.engine.AbortType(ctx, schema.AllRequests); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: abort previous requests: %w", contract.ErrRequestFailed, err)
	}

	req := c.session.Request()
	req.RequestID = uuid.NewString()
	if onProgress == nil {
		onProgress = func(schema.ProgressMetrics) {}
	}

	result, err := c.engine.ComputeStatWeights(ctx, req, onProgress)
	switch {
	case errors.Is(err, contract.ErrRequestAborted), errors.Is(err, context.Canceled):
		return OutcomeAborted, nil
	case err != nil:
		return OutcomeFailed, fmt.Errorf("%w: %w", contract.ErrRequestFailed, err)
	case result == nil:
		return OutcomeAborted, nil
	}

	c.session.StoreResult(*result, req.Iterations)
	return OutcomeCompleted, nil
}

// finish passes through the terminal state and settles in StateIdle.
func (c *Controller) finish(outcome Outcome, err error) {
	terminal := StateFailed
	switch outcome {
	case OutcomeCompleted:
		terminal = StateCompleted
	case OutcomeAborted:
		terminal = StateAborted
	}

	c.mu.Lock()
	c.state = terminal
	c.lastOutcome = outcome
	c.lastErr = err
	c.mu.Unlock()
	c.Changed.Emit()

	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
	c.Changed.Emit()
}

// Abort cancels the in-flight stat-weights request. It does nothing when no
// request is running or another abort is still pending.
func (c *Controller) Abort(ctx context.Context) error {
	c.mu.Lock()
	requesting := c.state == StateRequesting
	c.mu.Unlock()
	if !requesting {
		return nil
	}
	return c.abort(ctx)
}

// Hide is the view-closing trigger: it always issues the scoped abort.
// Failures are logged and swallowed.
func (c *Controller) Hide(ctx context.Context) {
	if err := c.abort(ctx); err != nil {
		contract.LogWarn("abort on hide", err)
	}
}

func (c *Controller) abort(ctx context.Context) error {
	c.mu.Lock()
	if c.abortPending {
		c.mu.Unlock()
		return nil
	}
	c.abortPending = true
	c.mu.Unlock()
	c.Changed.Emit()

	err := c.engine.AbortType(ctx, schema.StatWeightsRequests)

	c.mu.Lock()
	c.abortPending = false
	c.mu.Unlock()
	c.Changed.Emit()

	if err != nil {
		return fmt.Errorf("abort %s requests: %w", schema.StatWeightsRequests, err)
	}
	return nil
}
