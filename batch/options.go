package batch

import (
	"fmt"
	"time"
)

// Limits on batch submissions.
const (
	MaxRequests      = 1000
	MaxConcurrency   = 100
	MaxRetryAttempts = 5
)

// Defaults applied when no option overrides them.
const (
	DefaultMaxConcurrent = 100
	DefaultRetryAttempts = 2
	DefaultRetryDelay    = time.Second
	DefaultTimeout       = 5 * time.Minute
)

type options struct {
	maxConcurrent int
	retryAttempts int
	retryDelay    time.Duration
	timeout       time.Duration
}

// Option overrides a batch setting.
type Option func(o *options)

// WithMaxConcurrent caps how many items may be in progress at once.
// Must be between 1 and 100.
func WithMaxConcurrent(n int) Option {
	return func(o *options) {
		o.maxConcurrent = n
	}
}

// WithRetryAttempts sets how many times a retryable failure is retried
// after the initial attempt. Must be between 0 and 5.
func WithRetryAttempts(n int) Option {
	return func(o *options) {
		o.retryAttempts = n
	}
}

// WithRetryDelay sets the base backoff delay. The wait before retry k
// is delay * 2^(k-1). Must not be negative.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		o.retryDelay = d
	}
}

// WithTimeout sets the overall batch timeout. The value is validated
// and stored but not currently enforced.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func buildOptions(overrides []Option) (options, error) {
	o := options{
		maxConcurrent: DefaultMaxConcurrent,
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
		timeout:       DefaultTimeout,
	}

	for _, override := range overrides {
		override(&o)
	}

	if o.maxConcurrent < 1 || o.maxConcurrent > MaxConcurrency {
		return o, fmt.Errorf("maxConcurrent must be between 1 and %d, got %d", MaxConcurrency, o.maxConcurrent)
	}
	if o.retryAttempts < 0 || o.retryAttempts > MaxRetryAttempts {
		return o, fmt.Errorf("retryAttempts must be between 0 and %d, got %d", MaxRetryAttempts, o.retryAttempts)
	}
	if o.retryDelay < 0 {
		return o, fmt.Errorf("retryDelay must not be negative, got %v", o.retryDelay)
	}
	if o.timeout <= 0 {
		return o, fmt.Errorf("timeout must be positive, got %v", o.timeout)
	}

	return o, nil
}
