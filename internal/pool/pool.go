package pool

import (
	"sync"

	"go.uber.org/zap"

	"github.com/nordgate/relay/internal/job"
	"github.com/nordgate/relay/internal/queue"
)

// Pool owns a single JobQueue and a resizable set of ThreadQueues that
// all dequeue from it, the way a worker pool shares one work channel
// across many goroutines.
type Pool struct {
	mu      sync.Mutex
	q       *queue.Queue
	workers []*ThreadQueue

	log *zap.Logger
}

// New constructs a Pool with n workers sharing a fresh JobQueue.
func New(n int, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{
		q:   queue.New(log),
		log: log,
	}
	p.SetNumberOfThreads(n)
	return p
}

// JobQueue returns the queue shared by every worker in the pool.
func (p *Pool) JobQueue() *queue.Queue {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.q
}

// SetJobQueue swaps every worker onto a new shared queue.
func (p *Pool) SetJobQueue(q *queue.Queue) {
	p.mu.Lock()
	p.q = q
	workers := append([]*ThreadQueue(nil), p.workers...)
	p.mu.Unlock()

	for _, w := range workers {
		w.SetJobQueue(q)
	}
}

// AddJob appends j to the pool's shared queue.
func (p *Pool) AddJob(j *job.Job, unique bool) {
	p.JobQueue().Add(j, unique)
}

// SetNumberOfThreads grows or shrinks the worker set to n, canceling
// and dropping workers when shrinking and starting fresh ones bound
// to the shared queue when growing.
func (p *Pool) SetNumberOfThreads(n int) {
	if n < 0 {
		n = 0
	}

	p.mu.Lock()
	q := p.q
	current := len(p.workers)

	if n < current {
		removed := p.workers[n:]
		p.workers = p.workers[:n]
		p.mu.Unlock()

		for _, w := range removed {
			w.Cancel()
		}
		return
	}

	for i := current; i < n; i++ {
		w := NewThreadQueue(q, p.log)
		p.workers = append(p.workers, w)
	}
	workers := append([]*ThreadQueue(nil), p.workers[current:]...)
	p.mu.Unlock()

	for _, w := range workers {
		if err := w.Start(); err != nil {
			p.log.Warn("worker failed to start", zap.Error(err))
		}
	}
}

// NumberOfThreads reports the current worker count.
func (p *Pool) NumberOfThreads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Cancel stops every worker in the pool, waiting for each to exit.
func (p *Pool) Cancel() {
	p.mu.Lock()
	workers := append([]*ThreadQueue(nil), p.workers...)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *ThreadQueue) {
			defer wg.Done()
			w.Cancel()
		}(w)
	}
	wg.Wait()
}

// WaitForCompletion joins every worker: it blocks until each worker's
// goroutine has exited. Since a worker's dequeue-and-run loop only
// exits after it observes a cancellation, this is meant to be called
// after Cancel, mirroring the teacher's run-to-completion shutdown
// order (cancel, then join).
func (p *Pool) WaitForCompletion() {
	p.mu.Lock()
	workers := append([]*ThreadQueue(nil), p.workers...)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *ThreadQueue) {
			defer wg.Done()
			w.WaitForCompletion()
		}(w)
	}
	wg.Wait()
}

// HasJobsToProcess reports whether any worker currently owns work —
// either a job pinned as current or a non-empty bound queue. With no
// workers, this is always false: jobs can still accumulate on the
// shared queue, but nothing owns them, so there is nothing "to
// process" in the sense this method reports.
func (p *Pool) HasJobsToProcess() bool {
	p.mu.Lock()
	workers := append([]*ThreadQueue(nil), p.workers...)
	p.mu.Unlock()

	for _, w := range workers {
		if w.HasJobsToProcess() {
			return true
		}
	}
	return false
}
