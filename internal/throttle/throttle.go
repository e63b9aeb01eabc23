// Package throttle paces calls against remote services with a randomized
// courtesy delay.
package throttle

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"mediakeeper/internal/logging"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Pacer is the contract consumed by callers that only need to wait.
type Pacer interface {
	Pause(ctx context.Context, reason string) error
}

// Throttle sleeps a uniformly random duration within [min, max] on each Pause.
type Throttle struct {
	min    time.Duration
	max    time.Duration
	sleep  Sleeper
	jitter func() float64
	logger *slog.Logger
}

// Option configures a Throttle.
type Option func(*Throttle)

// WithSleeper replaces the wall-clock sleeper.
func WithSleeper(s Sleeper) Option {
	return func(t *Throttle) {
		if s != nil {
			t.sleep = s
		}
	}
}

// WithJitter replaces the random source. fn must return values in [0, 1).
func WithJitter(fn func() float64) Option {
	return func(t *Throttle) {
		if fn != nil {
			t.jitter = fn
		}
	}
}

// WithLogger attaches a logger that records every pause.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Throttle) {
		t.logger = logging.NewComponentLogger(logger, "throttle")
	}
}

// New builds a throttle. Bounds are swapped if given in the wrong order and
// negative values are clamped to zero.
func New(lower, upper time.Duration, opts ...Option) *Throttle {
	lower = max(lower, 0)
	upper = max(upper, 0)
	if upper < lower {
		lower, upper = upper, lower
	}
	t := &Throttle{
		min:    lower,
		max:    upper,
		sleep:  SleepWithContext,
		jitter: rand.Float64,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Next returns the duration the following Pause would wait.
func (t *Throttle) Next() time.Duration {
	span := t.max - t.min
	if span <= 0 {
		return t.min
	}
	return t.min + time.Duration(t.jitter()*float64(span))
}

// Pause waits for a random duration and returns ctx.Err() if interrupted.
func (t *Throttle) Pause(ctx context.Context, reason string) error {
	d := t.Next()
	if d <= 0 {
		return nil
	}
	t.logger.Debug("courtesy pause",
		logging.String("reason", reason),
		logging.Duration("delay", d.Round(time.Millisecond)),
	)
	return t.sleep(ctx, d)
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// Nop never waits.
type Nop struct{}

func (Nop) Pause(context.Context, string) error { return nil }
