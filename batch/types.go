package batch

import (
	"context"
	"time"
)

// Status is the lifecycle state of a single batch item.
type Status string

const (
	// StatusPending means the item has not been admitted yet.
	StatusPending Status = "pending"
	// StatusInProgress means the item occupies a concurrency slot.
	StatusInProgress Status = "in-progress"
	// StatusCompleted is terminal: the operation produced a result.
	StatusCompleted Status = "completed"
	// StatusFailed is terminal: the operation failed after all attempts.
	StatusFailed Status = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Operation processes a single request. A nil result with a nil error is
// recorded as a failure ("Batch operation returned undefined result").
type Operation[Req, Res any] func(ctx context.Context, req Req) (*Res, error)

// ItemError is the normalized failure recorded on a failed item.
type ItemError struct {
	// Message is the human-readable failure description.
	Message string
	// Permanent is true when the failure was classified non-retryable
	// and therefore consumed only a single attempt.
	Permanent bool
}

func (e *ItemError) Error() string { return e.Message }

// Item tracks one request through its lifecycle. Index is the position
// in the original request list and is stable for the life of the batch.
//
// Exactly one of Result/Err is set once the item is terminal; both are
// nil while the item is pending or in progress.
type Item[Req, Res any] struct {
	Index      int
	Request    Req
	Status     Status
	Result     *Res
	Err        *ItemError
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// Progress is a point-in-time snapshot of a batch. Counts always sum to
// Total. Results is a copy ordered by item index; mutating it does not
// affect the batch.
type Progress[Req, Res any] struct {
	Total      int
	Completed  int
	Failed     int
	InProgress int
	Pending    int
	Results    []Item[Req, Res]
	StartedAt  time.Time
	// EstimatedCompletion is a naive projection from the average time
	// per terminal item. Nil until at least one item is terminal, and
	// nil again once no work remains.
	EstimatedCompletion *time.Time
}
