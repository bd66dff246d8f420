// Package retry runs an operation a bounded number of times with a fixed
// delay between attempts, aborting early on context cancellation or on
// errors marked permanent.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Policy bounds a retried operation. Attempts counts the first try, so
// Attempts of 1 disables retrying.
type Policy struct {
	Attempts int           `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

// None runs an operation exactly once.
var None = Policy{Attempts: 1}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. A nil err stays nil.
func Permanent(err error) error {
	if err == nil || IsPermanent(err) {
		return err
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, was marked with
// Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, the context ends
// or the policy's attempts are exhausted. The last error is returned wrapped
// with op.
func Do(ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(context.Context) error) error {
	_, err := Value(ctx, p, logger, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, cancelled(op, err, lastErr)
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if IsPermanent(err) {
			logger.Error("Operation failed permanently.", "op", op, "attempt", i+1, "error", err)
			return zero, fmt.Errorf("%s: %w", op, err)
		}
		if i == attempts-1 {
			break
		}

		logger.Warn(
			"Operation failed, will retry.",
			"op", op,
			"attempt", i+1,
			"maxAttempts", attempts,
			"delay", p.Delay.String(),
			"error", err,
		)

		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			logger.Error("Context cancelled during retry delay. Aborting retries.", "op", op, "error", ctx.Err())
			return zero, cancelled(op, ctx.Err(), lastErr)
		}
	}

	logger.Error("Operation failed after all retries.", "op", op, "attempts", attempts, "error", lastErr)
	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}

// cancelled wraps a context error with the operation and, when an attempt
// already failed, that failure.
func cancelled(op string, ctxErr, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w (last error: %v)", op, ctxErr, lastErr)
}
