// Package orchestrator sequences a security check: position fix, then the
// configuration gate, then the remote assessment, then normalization.
//
// The Orchestrator owns the loading and error state exposed to views.
// At most one check runs at a time, and the position request always
// completes before the remote request starts.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nao1215/zonecheck/internal/locate"
	"github.com/nao1215/zonecheck/internal/model"
	"github.com/nao1215/zonecheck/internal/normalize"
	"github.com/nao1215/zonecheck/internal/observability"
)

// ConfigSource provides the user configuration used by the gate.
// configstore.Store implements it.
type ConfigSource interface {
	Load(ctx context.Context) (model.UserConfig, error)
}

// Checker performs the remote security assessment.
// client.Client implements it.
type Checker interface {
	CheckSecurity(ctx context.Context, req model.CheckRequest) (*model.RawResponse, error)
}

// Snapshot is a copy of the orchestrator state.
type Snapshot struct {
	State State
	// Position is set once a fix was obtained.
	Position *locate.Position
	// Result is set in StateSucceeded.
	Result *model.CheckResult
	// Err is set in StateFailed.
	Err error
	// StartedAt is the start time of the current or last check.
	StartedAt time.Time
}

// Analysis returns the analysis of a succeeded check.
func (s Snapshot) Analysis() (model.Analysis, bool) {
	if s.Result == nil {
		return model.Analysis{}, false
	}
	return s.Result.Analysis, true
}

// StateListener is notified of every state transition, in order.
type StateListener func(Snapshot)

// Orchestrator runs security checks.
type Orchestrator struct {
	locator    locate.Locator
	config     ConfigSource
	checker    Checker
	locateOpts locate.Options
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	listeners  []StateListener

	mu   sync.Mutex
	snap Snapshot
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStateListener adds a listener for state transitions. Listeners run
// synchronously on the goroutine that caused the transition.
func WithStateListener(l StateListener) Option {
	return func(o *Orchestrator) {
		o.listeners = append(o.listeners, l)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics records check outcomes and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock sets the clock used for timestamps and durations.
func WithClock(c clockwork.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithLocateOptions overrides locate.DefaultOptions.
func WithLocateOptions(opts locate.Options) Option {
	return func(o *Orchestrator) {
		o.locateOpts = opts
	}
}

// New creates an Orchestrator in StateIdle.
func New(locator locate.Locator, config ConfigSource, checker Checker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		locator:    locator,
		config:     config,
		checker:    checker,
		locateOpts: locate.DefaultOptions(),
		clock:      clockwork.NewRealClock(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// RunCheck runs one security check and returns the terminal snapshot.
//
// It only starts from StateIdle. Otherwise it performs no position or
// network request and returns the current snapshot and false.
func (o *Orchestrator) RunCheck(ctx context.Context) (Snapshot, bool) {
	o.mu.Lock()
	if o.snap.State != StateIdle {
		current := o.snap
		o.mu.Unlock()
		o.logger.Debug("check already in progress or not reset", "state", current.State.String())
		return current, false
	}
	o.snap = Snapshot{State: StateLocating, StartedAt: o.clock.Now()}
	started := o.snap
	o.mu.Unlock()
	o.notify(started)

	o.metrics.SetCheckInFlight(true)
	defer o.metrics.SetCheckInFlight(false)

	pos, err := o.locator.CurrentPosition(ctx, o.locateOpts)
	if err != nil {
		if !model.IsLocationError(err) {
			err = fmt.Errorf("%w: %w", model.ErrPositionUnavailable, err)
		}
		return o.fail(err, observability.OutcomeLocation), true
	}

	cfg, err := o.config.Load(ctx)
	if err != nil {
		return o.fail(fmt.Errorf("%w: %w", model.ErrConfigIncomplete, err), observability.OutcomeConfig), true
	}
	req, err := model.NewCheckRequest(pos.Latitude, pos.Longitude, cfg)
	if err != nil {
		o.setPosition(pos)
		return o.fail(err, observability.OutcomeConfig), true
	}

	o.transition(func(s *Snapshot) {
		s.State = StateChecking
		s.Position = &pos
	})

	resp, err := o.checker.CheckSecurity(ctx, req)
	if err != nil {
		return o.fail(err, checkOutcome(err)), true
	}
	if resp == nil {
		return o.fail(model.ErrMalformedResponse, observability.OutcomeMalformed), true
	}

	result := model.NewCheckResult(o.clock.Now(), pos.Latitude, pos.Longitude, *resp, normalize.Normalize(resp))
	final := o.transition(func(s *Snapshot) {
		s.State = StateSucceeded
		s.Result = &result
	})
	o.metrics.RecordCheck(observability.OutcomeSucceeded, o.clock.Since(final.StartedAt))
	o.logger.Debug("security check succeeded",
		"zone", result.Zone().String(),
		"reasons", len(result.Analysis.Reasons),
		"actions", len(result.Analysis.Actions))
	return final, true
}

// Reset returns to StateIdle from a terminal state, discarding the result
// or error. It reports whether a transition happened.
func (o *Orchestrator) Reset() bool {
	o.mu.Lock()
	if !o.snap.State.Terminal() {
		o.mu.Unlock()
		return false
	}
	o.snap = Snapshot{State: StateIdle}
	idle := o.snap
	o.mu.Unlock()
	o.notify(idle)
	return true
}

func (o *Orchestrator) fail(err error, outcome string) Snapshot {
	final := o.transition(func(s *Snapshot) {
		s.State = StateFailed
		s.Err = err
	})
	o.metrics.RecordCheck(outcome, o.clock.Since(final.StartedAt))
	o.logger.Debug("security check failed", "outcome", outcome, "error", err)
	return final
}

func (o *Orchestrator) setPosition(pos locate.Position) {
	o.mu.Lock()
	o.snap.Position = &pos
	o.mu.Unlock()
}

func (o *Orchestrator) transition(mutate func(*Snapshot)) Snapshot {
	o.mu.Lock()
	mutate(&o.snap)
	snap := o.snap
	o.mu.Unlock()
	o.notify(snap)
	return snap
}

func (o *Orchestrator) notify(snap Snapshot) {
	for _, l := range o.listeners {
		l(snap)
	}
}

func checkOutcome(err error) string {
	var httpErr *model.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return observability.OutcomeHTTP
	case model.IsNetworkError(err):
		return observability.OutcomeNetwork
	case errors.Is(err, model.ErrMalformedResponse):
		return observability.OutcomeMalformed
	default:
		return observability.OutcomeUnexpected
	}
}
