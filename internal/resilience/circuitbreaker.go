// Package resilience guards calls to external collaborators: the semantic
// agent, summariser, classifiers and the text corpus.
//
// [CircuitBreaker] is a three-state breaker (closed, open, half-open).
// [FallbackGroup] tries several backends of one kind in order, each behind
// its own breaker and a per-attempt timeout, so that a slow or failing agent
// never stalls a pipeline run.
//
// All types are safe for concurrent use.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Execute] while the breaker
// rejects calls.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards every call.
	StateClosed State = iota

	// StateOpen rejects calls with [ErrCircuitOpen] until the cool-down has
	// passed.
	StateOpen

	// StateHalfOpen lets a bounded number of probe calls through. Enough
	// successes close the breaker; any failure opens it again.
	StateHalfOpen
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Defaults applied by [NewCircuitBreaker] to zero config fields.
const (
	DefaultMaxFailures  = 5
	DefaultResetTimeout = 30 * time.Second
	DefaultHalfOpenMax  = 3
)

// CircuitBreakerConfig holds tuning knobs for a [CircuitBreaker].
type CircuitBreakerConfig struct {
	// Name labels the breaker in logs and transition callbacks.
	Name string

	// Logger receives state transitions. Defaults to slog.Default().
	Logger *slog.Logger

	// MaxFailures is the number of consecutive counted failures that opens a
	// closed breaker.
	MaxFailures int

	// ResetTimeout is the cool-down before an open breaker admits probes.
	ResetTimeout time.Duration

	// HalfOpenMax is both the probe budget and the number of successful
	// probes needed to close again.
	HalfOpenMax int

	// Counts decides whether an error counts against the backend. Defaults to
	// [CountsAsFailure].
	Counts func(error) bool

	// OnTransition, when set, is called after every state change with the
	// breaker's mutex released.
	OnTransition func(name string, from, to State)

	// Now overrides the clock.
	Now func() time.Time
}

// CountsAsFailure reports whether err should count against a backend. A run
// cancelled by its caller says nothing about the backend's health.
func CountsAsFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// Stats is a point-in-time view of a breaker.
type Stats struct {
	State               State
	ConsecutiveFailures int
	Rejected            int
}

// CircuitBreaker implements the three-state circuit breaker pattern.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu        sync.Mutex
	state     State
	failures  int
	openedAt  time.Time
	probes    int
	probeWins int
	rejected  int
}

// NewCircuitBreaker creates a [CircuitBreaker]. Zero config fields take the
// package defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultResetTimeout
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = DefaultHalfOpenMax
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Counts == nil {
		cfg.Counts = CountsAsFailure
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CircuitBreaker{cfg: cfg}
}

// Name returns the configured label.
func (cb *CircuitBreaker) Name() string { return cb.cfg.Name }

// Execute runs fn unless the breaker rejects the call or ctx is already done.
// The error returned by fn is passed through unchanged.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	probe, transition, err := cb.admit()
	cb.notify(transition)
	if err != nil {
		return err
	}

	callErr := fn(ctx)
	cb.notify(cb.settle(probe, callErr))
	return callErr
}

type transition struct {
	from, to State
}

// admit decides whether a call may proceed and whether it is a probe.
func (cb *CircuitBreaker) admit() (probe bool, t *transition, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.cfg.Now().Sub(cb.openedAt) < cb.cfg.ResetTimeout {
			cb.rejected++
			return false, nil, ErrCircuitOpen
		}
		t = cb.move(StateHalfOpen)
		cb.probes, cb.probeWins = 0, 0
	}
	if cb.state == StateHalfOpen {
		if cb.probes >= cb.cfg.HalfOpenMax {
			cb.rejected++
			return false, t, ErrCircuitOpen
		}
		cb.probes++
		return true, t, nil
	}
	return false, t, nil
}

// settle records the outcome of an admitted call.
func (cb *CircuitBreaker) settle(probe bool, err error) *transition {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.cfg.Counts(err) {
		if err != nil {
			// Uncounted errors release the probe slot without a verdict.
			if probe {
				cb.probes--
			}
			return nil
		}
		if probe {
			cb.probeWins++
			if cb.probeWins >= cb.cfg.HalfOpenMax {
				cb.failures = 0
				return cb.move(StateClosed)
			}
			return nil
		}
		cb.failures = 0
		return nil
	}

	cb.failures++
	if probe || cb.failures >= cb.cfg.MaxFailures {
		cb.openedAt = cb.cfg.Now()
		if cb.state != StateOpen {
			return cb.move(StateOpen)
		}
	}
	return nil
}

// move changes state and logs. Must be called with cb.mu held.
func (cb *CircuitBreaker) move(to State) *transition {
	from := cb.state
	cb.state = to
	level := slog.LevelInfo
	if to == StateOpen {
		level = slog.LevelWarn
	}
	cb.cfg.Logger.Log(context.Background(), level, "circuit breaker state change",
		"name", cb.cfg.Name,
		"from", from.String(),
		"to", to.String(),
		"consecutive_failures", cb.failures,
	)
	return &transition{from: from, to: to}
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t != nil && cb.cfg.OnTransition != nil {
		cb.cfg.OnTransition(cb.cfg.Name, t.from, t.to)
	}
}

// State returns the current state. An open breaker whose cool-down has
// passed reports [StateHalfOpen]; the transition itself happens on the next
// [CircuitBreaker.Execute].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.cfg.Now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Stats returns a snapshot of the breaker counters.
func (cb *CircuitBreaker) Stats() Stats {
	st := cb.State()
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Stats{State: st, ConsecutiveFailures: cb.failures, Rejected: cb.rejected}
}

// Reset forces the breaker closed and clears its failure counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	t := cb.move(StateClosed)
	cb.failures, cb.probes, cb.probeWins = 0, 0, 0
	cb.mu.Unlock()
	cb.notify(t)
}
