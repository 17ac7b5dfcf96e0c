package batch

import (
	"context"
	"strings"
	"time"
)

// nonRetryableKeywords marks a failure as permanent when any of them
// appears in the error message (case-insensitive). The match is a plain
// substring check, so a transient failure whose message happens to
// contain a keyword (say, a proxy answering "invalid upstream response")
// is treated as permanent too. That is intentional for compatibility
// with how the service's errors have always been classified.
var nonRetryableKeywords = []string{
	"authentication",
	"authorization",
	"validation",
	"invalid",
	"unauthorized",
	"forbidden",
}

// isNonRetryable reports whether err should fail immediately without
// consuming further attempts.
func isNonRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, keyword := range nonRetryableKeywords {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}

// executeWithRetry runs op up to retryAttempts+1 times. Before retry k
// it waits retryDelay * 2^(k-1). Non-retryable errors propagate
// immediately; otherwise the last error is returned once attempts are
// exhausted. A nil result with a nil error is passed through to the
// caller, which records it as a failed item.
func executeWithRetry[Req, Res any](ctx context.Context, req Req, op Operation[Req, Res], retryAttempts int, retryDelay time.Duration) (*Res, error) {
	var lastErr error

	for attempt := 0; attempt <= retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := retryDelay * time.Duration(1<<uint(attempt-1))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		res, err := op(ctx, req)
		if err == nil {
			return res, nil
		}

		lastErr = err

		if isNonRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// normalizeError wraps an operation failure into the ItemError recorded
// on the item.
func normalizeError(err error, permanent bool) *ItemError {
	return &ItemError{
		Message:   err.Error(),
		Permanent: permanent,
	}
}
