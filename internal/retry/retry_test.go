package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3}, quiet, "flaky", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 2}, quiet, "always", func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "always failed after 2 attempts")
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	boom := errors.New("contract")
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 5}, quiet, "fatal", func(context.Context) error {
		calls++
		return Permanent(boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 3, Delay: time.Hour}, quiet, "slow", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "slow:")
	assert.Contains(t, err.Error(), "last error: transient")
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 3}, quiet, "upload", func(context.Context) error {
		calls++
		cancel()
		return errors.New("connection reset")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "upload:")
	assert.Contains(t, err.Error(), "last error: connection reset")
}

func TestDo_ContextDoneBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Policy{Attempts: 3}, quiet, "noop", func(context.Context) error {
		t.Fatal("must not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, err.Error(), "last error")
}

func TestValue_ReturnsResult(t *testing.T) {
	v, err := Value(context.Background(), None, nil, "once", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPermanent_Nil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("x")))
}
