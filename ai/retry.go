package ai

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries is the default maximum number of retry attempts.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the default base delay for exponential backoff.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay is the default cap on a single retry delay.
	DefaultMaxDelay = 60 * time.Second
	// JitterFraction is the fraction of the computed delay added as random
	// jitter to avoid thundering herds.
	JitterFraction = 0.1
)

// Policy defines exponential backoff for transient generation failures.
// It is a pure value: no state is shared between invocations, so a single
// Policy may wrap any number of concurrent operations.
//
// Attempt numbering starts at zero. The delay before re-attempting after
// attempt i is min(BaseDelay*2^i, MaxDelay); when Jitter is enabled a
// uniformly random amount in [0, JitterFraction*delay) is added on top.
// With MaxRetries = r there are at most r+1 total attempts, after which the
// original error is returned unchanged.
type Policy struct {
	MaxRetries uint
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     bool
}

// DefaultPolicy is the retry policy used when callers have no special needs.
var DefaultPolicy = Policy{
	MaxRetries: DefaultMaxRetries,
	BaseDelay:  DefaultBaseDelay,
	MaxDelay:   DefaultMaxDelay,
	Jitter:     true,
}

// Operation is a retryable unit of work, typically a closure over a
// Provider.Generate call.
type Operation func(ctx context.Context) (*Response, error)

// Do runs op, re-attempting on retryable failures per the policy.
// Non-retryable failures propagate on the first occurrence with zero delay,
// and cancellation of ctx aborts the in-flight attempt without triggering a
// retry.
func (p Policy) Do(ctx context.Context, op Operation) (*Response, error) {
	return p.run(ctx, op, nil)
}

// DoSync is the blocking twin of Do with a background context.
func (p Policy) DoSync(op Operation) (*Response, error) {
	return p.run(context.Background(), op, nil)
}

// run executes the retry loop. The timer is injectable for tests; nil means
// real time.
func (p Policy) run(ctx context.Context, op Operation, timer backoff.Timer) (*Response, error) {
	var resp *Response
	attempt := func() error {
		r, err := op(ctx)
		if err != nil {
			if ctx.Err() != nil || !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	sched := backoff.WithContext(&schedule{policy: p}, ctx)
	if err := backoff.RetryNotifyWithTimer(attempt, sched, nil, timer); err != nil {
		return nil, err
	}
	return resp, nil
}

// schedule implements backoff.BackOff over a Policy. A fresh instance is
// created per run, so no counters survive a call.
type schedule struct {
	policy  Policy
	attempt uint
}

// NextBackOff returns the delay before the next attempt, or backoff.Stop
// once the retry budget is exhausted.
func (s *schedule) NextBackOff() time.Duration {
	if s.attempt >= s.policy.MaxRetries {
		return backoff.Stop
	}

	delay := s.policy.BaseDelay
	for i := uint(0); i < s.attempt && delay < s.policy.MaxDelay; i++ {
		delay *= 2
	}
	if delay > s.policy.MaxDelay {
		delay = s.policy.MaxDelay
	}
	s.attempt++

	if s.policy.Jitter {
		delay += time.Duration(rand.Float64() * JitterFraction * float64(delay))
	}
	return delay
}

// Reset restarts the schedule from the first attempt.
func (s *schedule) Reset() {
	s.attempt = 0
}

var _ backoff.BackOff = (*schedule)(nil)
