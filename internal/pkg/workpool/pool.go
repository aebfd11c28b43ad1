// Package workpool caps how many calculations run at once and how long each may take.
//
// A Pool is shared by every request of the process. Acquiring a slot waits at
// most the configured wait time and then fails with errs.ErrConcurrencyLimitReached,
// so a flood of bulk requests is rejected instead of queued without bound.
// Each task runs under its own timeout; a task that overruns it is reported as
// an errs.TimeoutError while its goroutine drains in the background and keeps
// its slot until it finishes.
package workpool

import (
	"context"
	"fmt"
	"time"

	"shipcalc/internal/pkg/errs"

	"golang.org/x/sync/semaphore"
)

// Pool is a counting semaphore with a bounded acquire wait and a per-task timeout.
type Pool struct {
	sem     *semaphore.Weighted
	limit   int64
	wait    time.Duration
	timeout time.Duration
}

// New returns a pool running at most limit tasks at once. A non-positive wait
// fails immediately when the pool is full; a non-positive timeout disables it.
func New(limit int, wait, timeout time.Duration) (*Pool, error) {
	if limit < 1 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(limit)),
		limit:   int64(limit),
		wait:    wait,
		timeout: timeout,
	}, nil
}

func (p *Pool) Limit() int { return int(p.limit) }

// Do runs fn in a slot of the pool and returns its result.
func Do[T any](ctx context.Context, p *Pool, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if err := p.acquire(ctx); err != nil {
		return zero, err
	}

	type outcome struct {
		value T
		err   error
	}

	taskCtx := ctx
	cancel := context.CancelFunc(func() {})
	if p.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		v, err := fn(taskCtx)
		// The slot is free before the caller can observe the result.
		p.sem.Release(1)
		done <- outcome{value: v, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-taskCtx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, errs.NewTimeoutError(operation, p.timeout)
	}
}

func (p *Pool) acquire(ctx context.Context) error {
	if p.wait <= 0 {
		if !p.sem.TryAcquire(1) {
			return fmt.Errorf("%w: %d calculations in flight", errs.ErrConcurrencyLimitReached, p.limit)
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.wait)
	defer cancel()
	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: no slot free after %s (limit %d)", errs.ErrConcurrencyLimitReached, p.wait, p.limit)
	}
	return nil
}
