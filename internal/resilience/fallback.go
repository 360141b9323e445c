package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrAllFailed is returned when every entry in a [FallbackGroup] fails or has
// an open circuit breaker. The last entry's error stays in the chain, so
// errors.Is(err, context.DeadlineExceeded) reports a final timeout.
var ErrAllFailed = errors.New("all backends failed")

// FallbackConfig configures a [FallbackGroup].
type FallbackConfig struct {
	CircuitBreaker CircuitBreakerConfig

	// Timeout bounds each attempt. Zero leaves ctx untouched.
	Timeout time.Duration
}

type fallbackEntry[T any] struct {
	name    string
	value   T
	breaker *CircuitBreaker
}

// FallbackGroup holds a primary backend and optional fallbacks of the same
// type. Entries are tried in registration order; entries whose breaker is
// open are skipped.
type FallbackGroup[T any] struct {
	entries []fallbackEntry[T]
	cfg     FallbackConfig
	log     *slog.Logger
}

// NewFallbackGroup creates a group with primary as the first entry.
func NewFallbackGroup[T any](primary T, primaryName string, cfg FallbackConfig) *FallbackGroup[T] {
	log := cfg.CircuitBreaker.Logger
	if log == nil {
		log = slog.Default()
	}
	fg := &FallbackGroup[T]{cfg: cfg, log: log}
	fg.AddFallback(primaryName, primary)
	return fg
}

// AddFallback appends a backend tried after all earlier ones.
func (fg *FallbackGroup[T]) AddFallback(name string, fallback T) {
	cbCfg := fg.cfg.CircuitBreaker
	cbCfg.Name = name
	fg.entries = append(fg.entries, fallbackEntry[T]{
		name:    name,
		value:   fallback,
		breaker: NewCircuitBreaker(cbCfg),
	})
}

// Names returns the entry names in try order.
func (fg *FallbackGroup[T]) Names() []string {
	out := make([]string, len(fg.entries))
	for i, e := range fg.entries {
		out[i] = e.name
	}
	return out
}

// Execute runs fn against each entry until one succeeds.
func (fg *FallbackGroup[T]) Execute(ctx context.Context, fn func(context.Context, T) error) error {
	_, err := ExecuteWithResult(ctx, fg, func(ctx context.Context, v T) (struct{}, error) {
		return struct{}{}, fn(ctx, v)
	})
	return err
}

// ExecuteWithResult runs fn against each entry of fg until one succeeds and
// returns its result. Each attempt gets its own timeout derived from ctx.
// Once ctx itself is done no further entries are tried.
func ExecuteWithResult[T, R any](ctx context.Context, fg *FallbackGroup[T], fn func(context.Context, T) (R, error)) (R, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range fg.entries {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		entry := &fg.entries[i]
		var result R
		err := entry.breaker.Execute(ctx, func(ctx context.Context) error {
			attemptCtx, cancel := fg.attemptContext(ctx)
			defer cancel()
			var inner error
			result, inner = fn(attemptCtx, entry.value)
			return inner
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrCircuitOpen) {
			fg.log.Debug("skipping backend (circuit open)", "backend", entry.name)
			continue
		}
		fg.log.Warn("backend failed, trying next", "backend", entry.name, "err", err)
	}
	return zero, fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
}

func (fg *FallbackGroup[T]) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if fg.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, fg.cfg.Timeout)
}
