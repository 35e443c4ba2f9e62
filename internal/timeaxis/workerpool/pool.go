// Package workerpool executes conflict-group resolution tasks across a
// fixed number of workers and waits for every task to finish before a
// tick may commit. A single task's failure never aborts its siblings.
package workerpool

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/axisruntime/timeaxis/internal/platform/errors"
)

const defaultThreadCount = 4

// Pool runs a fixed-size batch of independent tasks to completion.
type Pool struct {
	threads int
}

// New constructs a Pool with the given thread count. A count of zero or
// less selects the host CPU count, falling back to defaultThreadCount if
// that cannot be determined.
func New(threads int) (*Pool, error) {
	if threads <= 0 {
		threads = runtime.NumCPU()
		if threads <= 0 {
			threads = defaultThreadCount
		}
	}
	return &Pool{threads: threads}, nil
}

// Threads reports the configured worker count.
func (p *Pool) Threads() int {
	return p.threads
}

// Task is one unit of work submitted to a Pool. It must report its own
// failure rather than relying on context cancellation, since the pool
// never cancels sibling tasks on error.
type Task func(ctx context.Context) error

// RunAll runs every task to completion, using up to the pool's thread
// count concurrently. Unlike errgroup's default behavior, a failing task
// does not cancel or skip the others — every task always runs, a panicking
// task is recovered and recorded as that task's error, and RunAll returns
// the first error encountered (by task index) after all tasks have
// finished.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.threads)

	results := make([]error, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = fmt.Errorf("workerpool: task %d panicked: %v", i, r)
				}
			}()
			results[i] = task(groupCtx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Wrap(errors.CodeThreadPoolFailed, "worker pool scheduling failed", err)
	}

	for _, err := range results {
		if err != nil {
			return err
		}
	}
	return nil
}
