// Package readiness reconciles the asynchronous startup of the
// orchestrated services with the strictly sequential provisioning
// pipeline. Starting the stack returns before any service accepts
// traffic; the poller here is the one synchronization point between
// the two worlds.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimedOut indicates the health predicate never succeeded within the
// configured attempt budget. The provisioning run aborts on this error.
var ErrTimedOut = errors.New("readiness timed out")

// State is the poller state. Polling transitions to exactly one of
// Ready or TimedOut, both terminal.
type State int

const (
	Polling State = iota
	Ready
	TimedOut
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Ready:
		return "ready"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Predicate reports whether the dependent service can accept requests.
type Predicate func(ctx context.Context) bool

// Policy bounds the poll loop. The interval is constant; service
// startup time is short and bounded, so fixed-interval polling is
// simpler than backoff and sufficient.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Clock abstracts time so the poller is testable without real delays.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is cancelled, returning ctx.Err()
	// in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result describes a finished poll.
type Result struct {
	State    State
	Attempts int
	Elapsed  time.Duration
}

// Poller evaluates a health predicate on a fixed interval.
type Poller struct {
	policy    Policy
	predicate Predicate
	clock     Clock
}

// NewPoller creates a poller with the real clock.
func NewPoller(policy Policy, predicate Predicate) *Poller {
	return &Poller{policy: policy, predicate: predicate, clock: realClock{}}
}

// WithClock replaces the clock. Used by tests.
func (p *Poller) WithClock(c Clock) *Poller {
	p.clock = c
	return p
}

// Wait polls the predicate until it succeeds or the attempt budget is
// exhausted. The first successful evaluation terminates the loop, so an
// immediately healthy service costs exactly one attempt.
func (p *Poller) Wait(ctx context.Context) (Result, error) {
	start := p.clock.Now()

	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		if p.predicate(ctx) {
			return Result{
				State:    Ready,
				Attempts: attempt,
				Elapsed:  p.clock.Now().Sub(start),
			}, nil
		}

		if err := p.clock.Sleep(ctx, p.policy.Interval); err != nil {
			return Result{State: Polling, Attempts: attempt, Elapsed: p.clock.Now().Sub(start)}, err
		}
	}

	res := Result{
		State:    TimedOut,
		Attempts: p.policy.MaxAttempts,
		Elapsed:  p.clock.Now().Sub(start),
	}
	return res, fmt.Errorf("%w after %d attempts (%s elapsed)",
		ErrTimedOut, res.Attempts, res.Elapsed.Round(time.Millisecond))
}

// Execer runs a command inside a named service container.
type Execer interface {
	Exec(ctx context.Context, service string, cmd ...string) (string, error)
}

// DatabasePing returns the predicate used during setup: the database
// service answers a mysqladmin ping from inside its own container.
func DatabasePing(x Execer, service string) Predicate {
	return func(ctx context.Context) bool {
		_, err := x.Exec(ctx, service, "mysqladmin", "ping", "--silent")
		return err == nil
	}
}
