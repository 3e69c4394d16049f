package retry

import (
	"context"
	"time"

	"wallet_portfolio/internal/domain/entity"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 500 * time.Millisecond
)

// Sleeper blocks for d or until ctx is done, returning ctx.Err() in the latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy retries transient failures with exponential backoff.
// Delay before attempt n+1 is initialDelay * 2^n; nothing is slept after the last attempt.
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	retryIf      func(error) bool
	sleep        Sleeper
	onRetry      func(attempt int, delay time.Duration, err error)
}

// Option defines a function to configure the Policy.
type Option func(*Policy)

// WithMaxAttempts sets the total number of attempts, the first one included.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithInitialDelay sets the delay before the second attempt.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.initialDelay = d
		}
	}
}

// WithRetryIf replaces the transient-error predicate.
func WithRetryIf(fn func(error) bool) Option {
	return func(p *Policy) {
		if fn != nil {
			p.retryIf = fn
		}
	}
}

// WithSleeper replaces the clock used between attempts.
func WithSleeper(s Sleeper) Option {
	return func(p *Policy) {
		if s != nil {
			p.sleep = s
		}
	}
}

// WithOnRetry registers a hook called before each backoff sleep.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(p *Policy) {
		p.onRetry = fn
	}
}

// New creates a Policy with defaults (3 attempts, 500ms) and optional overrides.
// By default only entity.ErrRequestFailed is retried.
func New(opts ...Option) *Policy {
	p := &Policy{
		maxAttempts:  defaultMaxAttempts,
		initialDelay: defaultInitialDelay,
		retryIf:      entity.IsTransient,
		sleep:        SleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxAttempts returns the configured number of attempts.
func (p *Policy) MaxAttempts() int {
	return p.maxAttempts
}

// Do runs op until it succeeds, fails with a non-transient error, attempts run out or ctx is cancelled.
// Cancellation is reported as the context error, never as the operation's last failure.
func Do[T any](ctx context.Context, p *Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !p.retryIf(err) {
			return zero, err
		}
		lastErr = err

		if attempt == p.maxAttempts-1 {
			break
		}
		delay := p.initialDelay << attempt
		if p.onRetry != nil {
			p.onRetry(attempt+1, delay, err)
		}
		if err := p.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
