package connector

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// retryConnect calls connectFn until it succeeds, the context ends, or
// 1+MaxRetries attempts have failed. Delays grow by Backoff up to MaxDelay.
func retryConnect[T any](ctx context.Context, opts RetryConfig, logger zerolog.Logger, connectFn func(context.Context) (T, error)) (T, error) {
	delay := opts.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	backoff := opts.Backoff
	if backoff < 1 {
		backoff = 2
	}

	var zero T
	for attempt := 0; ; attempt++ {
		conn, err := connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if attempt >= opts.MaxRetries {
			return zero, err
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("connector: connect failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * backoff)
		if opts.MaxDelay > 0 && delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}
}
