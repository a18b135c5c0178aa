package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingUntil(n int, attempts *int) func() error {
	return func() error {
		*attempts++
		if *attempts < n {
			return errors.New("temporary error")
		}
		return nil
	}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("first attempt succeeds", func(t *testing.T) {
		attempts := 0
		require.NoError(t, RetryWithBackoff(context.Background(), failingUntil(1, &attempts), 3, time.Millisecond))
		assert.Equal(t, 1, attempts)
	})

	t.Run("eventual success", func(t *testing.T) {
		attempts := 0
		require.NoError(t, RetryWithBackoff(context.Background(), failingUntil(3, &attempts), 5, time.Millisecond))
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error", func(t *testing.T) {
		attempts := 0
		persistent := errors.New("persistent error")
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return persistent
		}, 3, time.Millisecond)
		assert.Equal(t, persistent, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("invalid attempts", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			attempts := 0
			err := RetryWithBackoff(context.Background(), failingUntil(1, &attempts), n, time.Millisecond)
			assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
			assert.Zero(t, attempts)
		}
	})
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_DelaysGrow(t *testing.T) {
	var stamps []time.Time
	err := RetryWithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 4 {
			return errors.New("error")
		}
		return nil
	}, 5, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, stamps, 4)

	// 10ms, 20ms, 40ms
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 10*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[3].Sub(stamps[2]), 40*time.Millisecond)
}
