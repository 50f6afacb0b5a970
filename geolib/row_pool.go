package geolib

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const rowPoolExpireTime = time.Minute

type rowTask struct {
	row     []string
	ipIndex int
	number  int
	stats   *runStats

	result []string
	err    error
}

type rowCallback func(context.Context, *rowTask)

// rowPool runs row enrichment on a bounded worker pool. Tasks are kept
// in the order of submission so results can be written in the order of
// input rows whatever order workers finish in.
type rowPool struct {
	ctx   context.Context
	pool  *ants.PoolWithFunc
	wg    sync.WaitGroup
	tasks []*rowTask
}

func (r *rowPool) Do(task *rowTask) error {
	select {
	case <-r.ctx.Done():
		return fmt.Errorf("run was interrupted: %w", r.ctx.Err())
	default:
	}

	r.wg.Add(1)

	if err := r.pool.Invoke(task); err != nil {
		r.wg.Done()

		return fmt.Errorf("cannot schedule a row: %w", err)
	}

	r.tasks = append(r.tasks, task)

	return nil
}

// Wait blocks until all scheduled rows are processed and returns them
// in the order of scheduling.
func (r *rowPool) Wait() []*rowTask {
	r.wg.Wait()

	return r.tasks
}

func (r *rowPool) Release() {
	r.pool.Release()
}

func newRowPool(ctx context.Context, size int, callback rowCallback) (*rowPool, error) {
	rv := &rowPool{
		ctx: ctx,
	}

	pool, err := ants.NewPoolWithFunc(size, func(arg interface{}) {
		task := arg.(*rowTask)

		defer rv.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				task.err = fmt.Errorf("row %d has crashed: %v", task.number, rec)
			}
		}()

		callback(ctx, task)
	}, ants.WithExpiryDuration(rowPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.pool = pool

	return rv, nil
}
