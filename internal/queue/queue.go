package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/logger"
)

// ErrClosed is returned for jobs submitted after Close.
var ErrClosed = errors.New("queue closed")

// Job is a unit of work run on the queue's worker goroutine.
type Job func(ctx context.Context) error

type task struct {
	job  Job
	done chan error
}

// Queue runs jobs one at a time in submission order. A job's completion
// signal fires only after the job has returned.
type Queue struct {
	tasks chan task
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts a queue with a single worker.
func New() *Queue {
	q := &Queue{tasks: make(chan task, constants.QueueBufferSize)}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for t := range q.tasks {
		t.done <- q.execute(t.job)
		close(t.done)
	}
}

func (q *Queue) execute(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("queued job panicked", "panic", r)
			err = errors.New("queued job panicked")
		}
	}()
	// jobs are not cancellable once started
	return job(context.Background())
}

// Submit enqueues job and returns a channel that receives its result.
func (q *Queue) Submit(job Job) <-chan error {
	done := make(chan error, 1)

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		done <- ErrClosed
		close(done)
		return done
	}
	q.tasks <- task{job: job, done: done}
	return done
}

// Do submits job and waits for it. If ctx ends first, Do stops waiting and
// returns ctx.Err(); the job still runs.
func (q *Queue) Do(ctx context.Context, job Job) error {
	done := q.Submit(job)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for pending ones to finish, up to
// the configured timeout.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-time.After(constants.QueueCloseTimeout):
		logger.Warn("timed out waiting for queue to drain")
		return errors.New("timed out waiting for queue to drain")
	}
}
