package llm

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryProvider wraps a Provider with bounded retries on transient failures.
// Permanent failures (auth errors, malformed requests) are returned as-is.
type RetryProvider struct {
	provider   Provider
	maxRetries int
	delay      time.Duration
}

// NewRetryProvider wraps the given provider so each Complete call is attempted
// up to maxRetries times, sleeping delay between attempts.
func NewRetryProvider(provider Provider, maxRetries int, delay time.Duration) Provider {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryProvider{
		provider:   provider,
		maxRetries: maxRetries,
		delay:      delay,
	}
}

func (r *RetryProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		resp, err := r.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isTransient(err) {
			return nil, err
		}
		if attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return nil, lastErr
}

// isTransient reports whether an error is worth retrying: rate limits,
// server-side failures, timeouts, and network errors. Context cancellation
// from the caller is not retried.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == 408, statusErr.Code == 429:
			return true
		case statusErr.Code >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}
