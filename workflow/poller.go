package workflow

import (
	"context"
	"fmt"
	"time"
)

// Poll defaults. 150 attempts at 2s cover the service's documented
// 5-minute worst case for rewrite workflows.
const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 150
)

// FetchFunc retrieves the current state of a workflow.
type FetchFunc func(ctx context.Context) (*State, error)

type pollOptions struct {
	interval    time.Duration
	maxAttempts int
}

// PollOption overrides a polling setting.
type PollOption func(o *pollOptions)

// WithInterval sets the wait between polls.
func WithInterval(d time.Duration) PollOption {
	return func(o *pollOptions) {
		o.interval = d
	}
}

// WithMaxAttempts bounds how many times the workflow is fetched.
func WithMaxAttempts(n int) PollOption {
	return func(o *pollOptions) {
		o.maxAttempts = n
	}
}

// Poll fetches the workflow state until it is terminal, the attempt
// budget is exhausted, or ctx is done. It is a plain bounded loop; each
// iteration fetches once and sleeps once.
//
// A succeeded workflow returns its final state. Failed and canceled
// workflows return the state together with an error carrying the
// service's failure message.
func Poll(ctx context.Context, fetch FetchFunc, overrides ...PollOption) (*State, error) {
	o := pollOptions{
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, override := range overrides {
		override(&o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}

	var state *State

	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.interval):
			}
		}

		s, err := fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch workflow: %w", err)
		}
		state = s

		switch s.Status {
		case StatusSucceeded:
			return s, nil
		case StatusFailed:
			return s, fmt.Errorf("workflow %s failed: %s", s.ID, s.Error)
		case StatusCanceled:
			return s, fmt.Errorf("workflow %s was canceled", s.ID)
		}
	}

	return state, fmt.Errorf("polling attempts exhausted after %d tries, last status %q", o.maxAttempts, state.Status)
}
