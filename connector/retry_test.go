package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryConnect(t *testing.T) {
	errDown := errors.New("down")
	opts := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := retryConnect(t.Context(), opts, zerolog.Nop(), func(context.Context) (int, error) {
			calls++
			return 0, errDown
		})
		assert.ErrorIs(t, err, errDown)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns first success", func(t *testing.T) {
		calls := 0
		got, err := retryConnect(t.Context(), opts, zerolog.Nop(), func(context.Context) (int, error) {
			calls++
			if calls < 2 {
				return 0, errDown
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("single attempt without retries", func(t *testing.T) {
		calls := 0
		_, err := retryConnect(t.Context(), RetryConfig{}, zerolog.Nop(), func(context.Context) (int, error) {
			calls++
			return 0, errDown
		})
		assert.ErrorIs(t, err, errDown)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0
		_, err := retryConnect(ctx, RetryConfig{MaxRetries: 5, BaseDelay: time.Hour}, zerolog.Nop(), func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errDown
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
