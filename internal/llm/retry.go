package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

// RetryPolicy controls the retrying client. Zero values fall back to the
// defaults below.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 8 * time.Second
)

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// RetryingClient wraps a Client with bounded exponential backoff on
// retryable failures. Exhaustion surfaces as a *Failure.
type RetryingClient struct {
	inner  Client
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryingClient wraps inner with the given policy.
func NewRetryingClient(inner Client, policy RetryPolicy) *RetryingClient {
	return &RetryingClient{
		inner:  inner,
		policy: policy.withDefaults(),
		sleep:  sleepCtx,
	}
}

func (c *RetryingClient) Model() string { return c.inner.Model() }

func (c *RetryingClient) Complete(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		res, err := c.inner.Complete(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return nil, &Failure{Provider: c.inner.Model(), Attempts: attempt, Cause: err}
		}
		if attempt == c.policy.MaxAttempts {
			break
		}
		delay := c.backoff(attempt)
		log.Warn("completion attempt failed, retrying", "model", c.inner.Model(), "attempt", attempt, "delay", delay, "err", err)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, &Failure{Provider: c.inner.Model(), Attempts: attempt, Cause: err}
		}
	}
	return nil, &Failure{Provider: c.inner.Model(), Attempts: c.policy.MaxAttempts, Cause: lastErr}
}

// backoff doubles the base delay per attempt, capped, with up to 25%
// jitter.
func (c *RetryingClient) backoff(attempt int) time.Duration {
	delay := c.policy.BaseDelay << (attempt - 1)
	if delay > c.policy.MaxDelay {
		delay = c.policy.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
