package sweeper

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Deleter removes a stored file by reference.
type Deleter interface {
	Delete(ctx context.Context, ref string) error
}

type job struct {
	ref  string
	done func(error)
}

// WorkerPool deletes files on a fixed number of goroutines.
type WorkerPool struct {
	size    int
	jobs    chan job
	deleter Deleter
	log     logrus.FieldLogger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, deleter Deleter, log logrus.FieldLogger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan job, size),
		deleter: deleter,
		log:     log,
	}
}

// Start launches the worker goroutines. Jobs dequeued after ctx is cancelled are
// reported with ctx.Err() instead of being run. A pool is started once and then stopped.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Stop closes the queue and waits until every queued job has reported and the
// workers have exited.
func (wp *WorkerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log := wp.log.WithField("worker", id)
	log.Debug("worker started")
	for j := range wp.jobs {
		if err := ctx.Err(); err != nil {
			j.done(err)
			continue
		}
		err := wp.deleter.Delete(ctx, j.ref)
		if err != nil {
			log.WithError(err).WithField("photo", j.ref).Warn("failed to delete orphaned photo")
		} else {
			log.WithField("photo", j.ref).Info("deleted orphaned photo")
		}
		j.done(err)
	}
	log.Debug("worker shutting down")
}

// Dispatch queues ref for deletion; done is called with the outcome. It returns
// ctx.Err() without queueing if ctx ends first. Dispatch must not be called after Stop.
func (wp *WorkerPool) Dispatch(ctx context.Context, ref string, done func(error)) error {
	select {
	case wp.jobs <- job{ref: ref, done: done}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
