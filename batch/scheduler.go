// Package batch runs many analysis requests through a single-item
// operation with a concurrency cap, retrying failures with exponential
// backoff and exposing a live progress view.
//
// A batch never fails because of its items: every item reaches a
// terminal status on its own and Wait resolves with the final counts
// even when all items failed. The only way a batch itself fails is an
// explicit Cancel.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCancelled settles Wait when Cancel is called before the batch
// completes naturally. The message is part of the API contract.
var ErrCancelled = errors.New("Batch operation cancelled")

// undefinedResultMessage is recorded when the operation returns a nil
// result with a nil error.
const undefinedResultMessage = "Batch operation returned undefined result"

// Batch drives a fixed list of requests to terminal status. All fields
// behind mu are owned by this instance; nothing is shared across
// batches.
type Batch[Req, Res any] struct {
	id   string
	op   Operation[Req, Res]
	opts options
	ctx  context.Context

	mu        sync.Mutex
	items     []Item[Req, Res]
	inFlight  int
	cancelled bool
	settled   bool
	err       error
	startedAt time.Time
	done      chan struct{}
}

// Submit validates the requests and options, admits up to maxConcurrent
// items and returns immediately. Validation failures return an error
// synchronously and no batch is created.
//
// ctx covers the operations themselves (it is passed to every op call
// and backoff sleep). Cancelling it fails remaining items; it is
// distinct from Cancel, which rejects the batch as a whole.
func Submit[Req, Res any](ctx context.Context, requests []Req, op Operation[Req, Res], overrides ...Option) (*Batch[Req, Res], error) {
	if op == nil {
		return nil, errors.New("operation is required")
	}
	if len(requests) == 0 || len(requests) > MaxRequests {
		return nil, fmt.Errorf("requests must contain between 1 and %d items, got %d", MaxRequests, len(requests))
	}

	opts, err := buildOptions(overrides)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	b := &Batch[Req, Res]{
		id:        uuid.New().String(),
		op:        op,
		opts:      opts,
		ctx:       ctx,
		items:     make([]Item[Req, Res], len(requests)),
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
	for i, req := range requests {
		b.items[i] = Item[Req, Res]{
			Index:   i,
			Request: req,
			Status:  StatusPending,
		}
	}

	b.mu.Lock()
	b.admitLocked()
	b.mu.Unlock()

	return b, nil
}

// ID identifies the batch, for logging.
func (b *Batch[Req, Res]) ID() string { return b.id }

// Done is closed once Wait would no longer block.
func (b *Batch[Req, Res]) Done() <-chan struct{} { return b.done }

// Cancel stops admission of pending items and settles Wait with
// ErrCancelled. Items already in progress run to their natural terminal
// status in the background; their outcomes are not surfaced through
// Wait. Calling Cancel again has no further effect.
func (b *Batch[Req, Res]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return
	}
	b.cancelled = true
	b.settleLocked(ErrCancelled)
}

// Wait blocks until every item is terminal or the batch is cancelled.
// It returns the final progress snapshot, or ErrCancelled if Cancel won
// the race. A resolved batch does not imply all items succeeded; check
// Progress.Failed and the per-item status.
func (b *Batch[Req, Res]) Wait(ctx context.Context) (*Progress[Req, Res], error) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return nil, b.err
	}
	p := b.progressLocked()
	return &p, nil
}

// Progress returns a snapshot computed from the current item states.
// It is recomputed on every call and safe to call from any goroutine.
func (b *Batch[Req, Res]) Progress() Progress[Req, Res] {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.progressLocked()
}

// admitLocked admits pending items in index order while capacity
// remains. Caller holds b.mu.
func (b *Batch[Req, Res]) admitLocked() {
	if b.cancelled {
		return
	}

	for i := range b.items {
		if b.inFlight >= b.opts.maxConcurrent {
			return
		}
		if b.items[i].Status != StatusPending {
			continue
		}

		now := time.Now()
		b.items[i].Status = StatusInProgress
		b.items[i].StartedAt = &now
		b.inFlight++

		go b.run(i, b.items[i].Request)
	}
}

// run drives one admitted item to a terminal status.
func (b *Batch[Req, Res]) run(index int, req Req) {
	res, err := executeWithRetry(b.ctx, req, b.op, b.opts.retryAttempts, b.opts.retryDelay)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	item := &b.items[index]
	item.FinishedAt = &now

	switch {
	case err != nil:
		item.Status = StatusFailed
		item.Err = normalizeError(err, isNonRetryable(err))
	case res == nil:
		item.Status = StatusFailed
		item.Err = &ItemError{Message: undefinedResultMessage}
	default:
		item.Status = StatusCompleted
		item.Result = res
	}

	b.inFlight--

	if b.cancelled {
		// Wait has already settled; the record above is kept only for
		// anyone still holding the handle and reading Progress.
		return
	}

	b.admitLocked()

	if b.inFlight == 0 && !b.hasPendingLocked() {
		b.settleLocked(nil)
	}
}

func (b *Batch[Req, Res]) hasPendingLocked() bool {
	for i := range b.items {
		if b.items[i].Status == StatusPending {
			return true
		}
	}
	return false
}

// settleLocked resolves or rejects the batch exactly once. Caller holds
// b.mu.
func (b *Batch[Req, Res]) settleLocked(err error) {
	if b.settled {
		return
	}
	b.settled = true
	b.err = err
	close(b.done)
}

// progressLocked recomputes counts from the item list and deep-copies
// the records so callers cannot corrupt internal state. Caller holds
// b.mu.
func (b *Batch[Req, Res]) progressLocked() Progress[Req, Res] {
	p := Progress[Req, Res]{
		Total:     len(b.items),
		StartedAt: b.startedAt,
		Results:   make([]Item[Req, Res], len(b.items)),
	}
	copy(p.Results, b.items)

	for i := range p.Results {
		switch p.Results[i].Status {
		case StatusPending:
			p.Pending++
		case StatusInProgress:
			p.InProgress++
		case StatusCompleted:
			p.Completed++
		case StatusFailed:
			p.Failed++
		}

		if p.Results[i].Result != nil {
			clone := *p.Results[i].Result
			p.Results[i].Result = &clone
		}
		if p.Results[i].Err != nil {
			clone := *p.Results[i].Err
			p.Results[i].Err = &clone
		}
		if p.Results[i].StartedAt != nil {
			t := *p.Results[i].StartedAt
			p.Results[i].StartedAt = &t
		}
		if p.Results[i].FinishedAt != nil {
			t := *p.Results[i].FinishedAt
			p.Results[i].FinishedAt = &t
		}
	}

	terminal := p.Completed + p.Failed
	remaining := p.Pending + p.InProgress
	if terminal > 0 && remaining > 0 {
		perItem := time.Since(b.startedAt) / time.Duration(terminal)
		eta := time.Now().Add(perItem * time.Duration(remaining))
		p.EstimatedCompletion = &eta
	}

	return p
}
