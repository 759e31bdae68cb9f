// Package retry re-runs operations that fail with transient errors.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, back off and try again
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	OnRetry     func(attempt int, err error, backoff time.Duration)
}

type Classify func(err error) Action

// Once retries a transient failure a single time after a short pause.
var Once = Policy{MaxAttempts: 2, Backoff: 10 * time.Millisecond}

// ErrExhausted marks an error returned after every attempt failed transiently.
var ErrExhausted = errors.New("retries exhausted")

func Do[T any](ctx context.Context, p Policy, classify Classify, op func() (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	backoff := p.Backoff

	for attempt := 1; ; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		if classify(err) == Stop {
			return zero, err
		}

		if attempt >= p.MaxAttempts {
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

func DoVoid(ctx context.Context, p Policy, classify Classify, op func() error) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}
