package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCancelRejectsWait(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	var calls int64

	b, err := Submit(context.Background(), []int{0, 1, 2}, blockingOperation(gate, &calls), WithMaxConcurrent(2))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	b.Cancel()

	_, err = waitWithTimeout(t, b)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait() error = %v, want ErrCancelled", err)
	}
	if err.Error() != "Batch operation cancelled" {
		t.Errorf("error message = %q, want %q", err.Error(), "Batch operation cancelled")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	var calls int64

	b, err := Submit(context.Background(), []int{0}, blockingOperation(gate, &calls))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	b.Cancel()
	b.Cancel()
	b.Cancel()

	if _, err := waitWithTimeout(t, b); !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() error = %v, want ErrCancelled", err)
	}
}

func TestCancelStopsFurtherAdmission(t *testing.T) {
	gate := make(chan struct{})
	var calls int64

	// Only item 0 is admitted; 1 and 2 wait for capacity.
	b, err := Submit(context.Background(), []int{0, 1, 2}, blockingOperation(gate, &calls), WithMaxConcurrent(1))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	b.Cancel()
	close(gate)

	if _, err := waitWithTimeout(t, b); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait() error = %v, want ErrCancelled", err)
	}

	// The in-flight item finishes in the background; pending items are
	// never admitted.
	deadline := time.After(2 * time.Second)
	for {
		p := b.Progress()
		if p.InProgress == 0 {
			if p.Completed != 1 {
				t.Errorf("Completed = %d, want 1 (in-flight item runs to completion)", p.Completed)
			}
			if p.Pending != 2 {
				t.Errorf("Pending = %d, want 2 (no admission after cancel)", p.Pending)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("in-flight item never reached a terminal status")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("operation called %d times, want 1", got)
	}
}

func TestCancelAfterCompletionHasNoEffect(t *testing.T) {
	op := func(ctx context.Context, req int) (*string, error) {
		s := "ok"
		return &s, nil
	}

	b, err := Submit(context.Background(), []int{0}, op)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := waitWithTimeout(t, b); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// Cancelling a settled batch must not flip the outcome.
	b.Cancel()

	p, err := b.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() after late Cancel error = %v", err)
	}
	if p.Completed != 1 {
		t.Errorf("Completed = %d, want 1", p.Completed)
	}
}

func TestCancelDoesNotAlterTerminalItems(t *testing.T) {
	gate := make(chan struct{})
	var calls int64

	b, err := Submit(context.Background(), []int{0, 1}, blockingOperation(gate, &calls), WithMaxConcurrent(1))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	close(gate)

	deadline := time.After(2 * time.Second)
	for b.Progress().Completed < 2 {
		select {
		case <-deadline:
			t.Fatal("batch never completed")
		case <-time.After(time.Millisecond):
		}
	}

	b.Cancel()

	p := b.Progress()
	if p.Completed != 2 {
		t.Errorf("Completed = %d, want 2 (terminal items untouched by cancel)", p.Completed)
	}
}

func TestWaitHonorsCallerContext(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	var calls int64

	b, err := Submit(context.Background(), []int{0}, blockingOperation(gate, &calls))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := b.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}
