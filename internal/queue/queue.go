// Package queue implements JobQueue: a thread-safe FIFO of jobs with
// a blocking dequeue, used to hand work from producers to the workers
// in a JobPool.
package queue

import (
	"sync"

	"go.uber.org/zap"

	"github.com/nordgate/relay/internal/job"
	"github.com/nordgate/relay/internal/sync2"
)

// Callback observes additions and removals. It has no event for the
// queue's empty/non-empty latch state.
type Callback interface {
	Adding(q *Queue, j *job.Job)
	Added(q *Queue, j *job.Job)
	Removed(q *Queue, j *job.Job)
}

// NopCallback forwards to Next, or does nothing if nil.
type NopCallback struct {
	Next Callback
}

func (c *NopCallback) Adding(q *Queue, j *job.Job) {
	if c.Next != nil {
		c.Next.Adding(q, j)
	}
}

func (c *NopCallback) Added(q *Queue, j *job.Job) {
	if c.Next != nil {
		c.Next.Added(q, j)
	}
}

func (c *NopCallback) Removed(q *Queue, j *job.Job) {
	if c.Next != nil {
		c.Next.Removed(q, j)
	}
}

var _ Callback = (*NopCallback)(nil)

// Queue is a FIFO of jobs. NextJob can block the caller until a job
// arrives, via an internal Block latch that tracks "queue non-empty".
type Queue struct {
	mu    sync.Mutex
	items []*job.Job

	notEmpty *sync2.Block
	callback Callback

	log *zap.Logger
}

// New constructs an empty Queue.
func New(log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	return &Queue{
		notEmpty: sync2.NewBlock(false),
		log:      log,
	}
}

// SetCallback attaches (or replaces) the queue's callback.
func (q *Queue) SetCallback(cb Callback) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.callback = cb
}

// Callback returns the queue's current callback, or nil.
func (q *Queue) Callback() Callback {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.callback
}

// Add appends j to the tail of the queue. If unique is true and j is
// already present (by pointer identity), Add is a no-op.
func (q *Queue) Add(j *job.Job, unique bool) {
	q.mu.Lock()
	if unique {
		for _, existing := range q.items {
			if existing == j {
				// Already queued: still signal the latch so a blocked
				// worker re-checks, matching the original's
				// m_block.set(true) on the duplicate path.
				q.notEmpty.Release()
				q.mu.Unlock()
				return
			}
		}
	}
	cb := q.callback
	q.mu.Unlock()

	if cb != nil {
		cb.Adding(q, j)
	}
	j.Ready()

	q.mu.Lock()
	q.items = append(q.items, j)
	q.notEmpty.Release()
	q.mu.Unlock()

	if cb != nil {
		cb.Added(q, j)
	}
}

// NextJob pops and returns the first non-canceled job at the head of
// the queue, finishing (but not firing Removed for) any canceled jobs
// it skips along the way — dequeue is not one of the callback's
// documented events; only the explicit remove* methods and clear fire
// it. If the queue is empty and blockIfEmpty is true, it suspends the
// caller until a job arrives (a single wait, not a retry loop) and
// then makes one attempt; if the queue is still empty on wake — or
// blockIfEmpty is false — it returns nil.
func (q *Queue) NextJob(blockIfEmpty bool) *job.Job {
	if blockIfEmpty {
		q.notEmpty.Block()
	}

	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.notEmpty.Reset()
			q.mu.Unlock()
			return nil
		}

		head := q.items[0]
		q.items = q.items[1:]
		if len(q.items) == 0 {
			q.notEmpty.Reset()
		}
		q.mu.Unlock()

		if head.IsCanceled() {
			head.Finished()
			continue
		}
		return head
	}
}

func (q *Queue) fireRemoved(j *job.Job) {
	q.mu.Lock()
	cb := q.callback
	q.mu.Unlock()
	if cb != nil {
		cb.Removed(q, j)
	}
}

// remove deletes the first job matching pred and returns it, or nil
// if none matched. It takes q.mu itself; callers must not hold it.
func (q *Queue) remove(pred func(*job.Job) bool) *job.Job {
	q.mu.Lock()
	var found *job.Job
	for i, it := range q.items {
		if pred(it) {
			found = it
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	if len(q.items) == 0 {
		q.notEmpty.Reset()
	}
	q.mu.Unlock()
	return found
}

// Remove deletes j from the queue, if present.
func (q *Queue) Remove(j *job.Job) bool {
	found := q.remove(func(it *job.Job) bool { return it == j })
	if found != nil {
		q.fireRemoved(found)
		return true
	}
	return false
}

// RemoveByName deletes the first job whose Name matches.
func (q *Queue) RemoveByName(name string) bool {
	found := q.remove(func(it *job.Job) bool { return it.Name() == name })
	if found != nil {
		q.fireRemoved(found)
		return true
	}
	return false
}

// RemoveByID deletes the first job whose ID matches.
func (q *Queue) RemoveByID(id string) bool {
	found := q.remove(func(it *job.Job) bool { return it.ID() == id })
	if found != nil {
		q.fireRemoved(found)
		return true
	}
	return false
}

// RemoveStoppedJobs drops every queued job whose FINISHED bit is
// already set, firing Removed for each.
func (q *Queue) RemoveStoppedJobs() {
	q.mu.Lock()
	kept := q.items[:0:0]
	var removed []*job.Job
	for _, it := range q.items {
		if it.IsStopped() {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	q.items = kept
	if len(q.items) == 0 {
		q.notEmpty.Reset()
	}
	cb := q.callback
	q.mu.Unlock()

	if cb != nil {
		for _, it := range removed {
			cb.Removed(q, it)
		}
	}
}

// Clear drains the queue, firing Removed for each job that was in it.
func (q *Queue) Clear() {
	q.mu.Lock()
	drained := q.items
	q.items = nil
	q.notEmpty.Reset()
	cb := q.callback
	q.mu.Unlock()

	if cb != nil {
		for _, it := range drained {
			cb.Removed(q, it)
		}
	}
}

// ReleaseBlock wakes every caller currently suspended in NextJob
// without adding a job — used to unstick workers during shutdown.
func (q *Queue) ReleaseBlock() {
	q.notEmpty.Release()
}

// Size reports the number of jobs currently queued.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue currently holds no jobs.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}
