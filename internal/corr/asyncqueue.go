package corr

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// SyncQueue is the async-handle sentinel meaning "do this work now,
// synchronously" -- the acc_async_sync value from the public surface.
const SyncQueue = -1

// asyncQueues hands out one ordered worker per async handle on first use and
// remembers it for the lifetime of the device, so work queued on the same
// handle always completes in issue order, while distinct handles run
// concurrently. Each worker is a single-goroutine errgroup.Group so its
// queued closures execute one at a time without an explicit channel-based
// queue.
type asyncQueues struct {
	dev *Device

	mut     sync.Mutex
	workers map[int]*queueWorker
}

type queueWorker struct {
	mut sync.Mutex
	grp *errgroup.Group
	ctx context.Context
}

func newAsyncQueues(dev *Device) *asyncQueues {
	return &asyncQueues{dev: dev, workers: make(map[int]*queueWorker)}
}

func (q *asyncQueues) worker(handle int) *queueWorker {
	q.mut.Lock()
	defer q.mut.Unlock()

	w, ok := q.workers[handle]
	if !ok {
		grp, ctx := errgroup.WithContext(context.Background())
		grp.SetLimit(1)
		w = &queueWorker{grp: grp, ctx: ctx}
		q.workers[handle] = w
	}

	return w
}

// submit runs fn, synchronously if handle is SyncQueue, otherwise enqueued
// on the ordered worker for that handle. Errors from synchronous work are
// logged; errors from queued work are not logged here but returned by the
// next wait on the same handle.
func (q *asyncQueues) submit(handle int, fn func() error) {
	if handle == SyncQueue {
		if err := fn(); err != nil {
			q.dev.log.Error("sync queue op failed", "err", err)
		}

		return
	}

	w := q.worker(handle)

	w.mut.Lock()
	defer w.mut.Unlock()

	w.grp.Go(fn)
}

// wait blocks until every operation previously submitted to handle has
// completed. GOACC_enter_exit_data calls this before dispatching so that
// cross-handle dependencies observe the map state the caller expects.
func (q *asyncQueues) wait(handle int) error {
	if handle == SyncQueue {
		return nil
	}

	w := q.worker(handle)

	w.mut.Lock()
	grp := w.grp
	w.grp, w.ctx = errgroup.WithContext(context.Background())
	w.grp.SetLimit(1)
	w.mut.Unlock()

	return grp.Wait()
}
