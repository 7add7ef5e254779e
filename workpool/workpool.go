// SPDX-License-Identifier: MIT

// Package workpool runs per-key jobs on one long-lived, bounded pool.
//
// A Pool is created once and reused for every call; its semaphore bounds
// the number of jobs running across all concurrent Run calls. Within one
// Run the first error cancels the remaining jobs and is returned.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent jobs.
type Pool struct {
	size int64
	sem  *semaphore.Weighted
}

// New creates a Pool running at most size jobs at once.
// size <= 0 selects GOMAXPROCS.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	return &Pool{size: int64(size), sem: semaphore.NewWeighted(int64(size))}
}

// Size reports the concurrency bound.
func (p *Pool) Size() int { return int(p.size) }

// Run calls fn once per key and waits for all calls to finish. Keys are
// started in order; completion order is unspecified.
func (p *Pool) Run(ctx context.Context, keys []string, fn func(ctx context.Context, key string) error) error {
	eg, gCtx := errgroup.WithContext(ctx)
	var key string
	for _, key = range keys {
		if err := p.sem.Acquire(gCtx, 1); err != nil {
			// a sibling failed or the caller cancelled; Wait reports the cause
			break
		}
		k := key
		eg.Go(func() error {
			defer p.sem.Release(1)

			return fn(gCtx, k)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}
