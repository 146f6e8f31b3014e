// Package pool implements JobThreadQueue (one managed Thread bound to
// a shared JobQueue) and JobPool (many JobThreadQueues sharing one
// JobQueue).
package pool

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nordgate/relay/internal/job"
	"github.com/nordgate/relay/internal/queue"
	"github.com/nordgate/relay/internal/thread"
)

// ThreadQueue binds one managed Thread permanently to one JobQueue:
// the thread's body is a dequeue-and-run loop. SetJobQueue can swap
// the bound queue at runtime, pausing the worker for the swap so it
// never dequeues from a queue mid-detach.
type ThreadQueue struct {
	t *thread.Thread
	q *queue.Queue

	curMu sync.Mutex
	cur   *job.Job

	log *zap.Logger
}

// NewThreadQueue constructs a ThreadQueue bound to q. q may be nil;
// the worker simply has nothing to dequeue from until SetJobQueue
// attaches one.
func NewThreadQueue(q *queue.Queue, log *zap.Logger) *ThreadQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &ThreadQueue{
		t:   thread.New(log),
		q:   q,
		log: log,
	}
}

// Start begins the dequeue-and-run loop on a managed goroutine.
func (tq *ThreadQueue) Start() error {
	return tq.t.Start(tq.run)
}

func (tq *ThreadQueue) run(t *thread.Thread) {
	var pending *job.Job
	for {
		t.Interrupt()

		q := tq.q
		if q == nil {
			t.Sleep(50 * time.Millisecond)
			continue
		}

		pending = q.NextJob(true)
		if pending != nil && !t.IsCanceled() {
			tq.setCurrent(pending)
			if pending.IsReady() {
				tq.runJob(pending, t)
			}
			tq.setCurrent(nil)
			pending = nil
		}

		if t.IsCanceled() {
			break
		}
	}

	// pending is non-nil only if it was dequeued in the exact window
	// where cancellation landed between NextJob returning and the
	// check above: it was never pinned as current and never started,
	// and nothing else will ever touch it again.
	if pending != nil && pending.IsReady() {
		pending.Cancel()
	}
}

// runJob runs j to completion, marking it Canceled before the
// interrupt unwind continues past this frame. Without this, a job
// whose RunFunc panics via interrupt() would be left stuck Running
// forever: Job.Start never reaches its own Finished check, and
// nothing else on the cancel path touches the job itself.
func (tq *ThreadQueue) runJob(j *job.Job, t *thread.Thread) {
	defer func() {
		if r := recover(); r != nil {
			j.Cancel()
			panic(r)
		}
	}()
	j.Start(t.Interrupt)
}

func (tq *ThreadQueue) setCurrent(j *job.Job) {
	tq.curMu.Lock()
	tq.cur = j
	tq.curMu.Unlock()
}

// CurrentJob returns the job the worker is presently running, or nil
// if it is idle.
func (tq *ThreadQueue) CurrentJob() *job.Job {
	tq.curMu.Lock()
	defer tq.curMu.Unlock()
	return tq.cur
}

// SetJobQueue detaches from the current queue (if any) and attaches
// q, pausing the worker for the swap so a dequeue is never in flight
// against the old queue when the new one takes its place.
func (tq *ThreadQueue) SetJobQueue(q *queue.Queue) {
	tq.t.Pause()
	for tq.t.IsRunning() && !tq.t.IsPaused() {
		if tq.q != nil {
			tq.q.ReleaseBlock()
		}
		thread.Yield()
	}
	tq.q = q
	tq.t.Resume()
}

// JobQueue returns the currently bound queue, or nil.
func (tq *ThreadQueue) JobQueue() *queue.Queue {
	return tq.q
}

// HasJobsToProcess reports whether the bound queue currently holds
// work, or whether a job is currently pinned as the worker's current
// job (it counts as outstanding work even once the queue that handed
// it out has gone empty).
func (tq *ThreadQueue) HasJobsToProcess() bool {
	if tq.q != nil && !tq.q.IsEmpty() {
		return true
	}
	return tq.CurrentJob() != nil
}

// Cancel asks the worker to stop at its next interrupt point (inside
// the current job's body, if it calls one), directly sets CANCEL on
// the job pinned as current (if any), then waits for the worker to
// actually exit, periodically releasing the queue's block so a worker
// parked in NextJob wakes up to observe the cancellation instead of
// waiting indefinitely for a job that may never arrive.
func (tq *ThreadQueue) Cancel() {
	tq.t.Cancel()
	if cur := tq.CurrentJob(); cur != nil {
		cur.Cancel()
	}
	for !tq.t.WaitForCompletionTimeout(10 * time.Millisecond) {
		if tq.q != nil {
			tq.q.ReleaseBlock()
		}
	}
}

// Pause parks the worker at its next interrupt point.
func (tq *ThreadQueue) Pause() {
	tq.t.Pause()
}

// Resume releases a paused worker.
func (tq *ThreadQueue) Resume() {
	tq.t.Resume()
}

// IsPaused reports whether the worker is currently parked.
func (tq *ThreadQueue) IsPaused() bool {
	return tq.t.IsPaused()
}

// IsRunning reports whether the worker's goroutine is alive.
func (tq *ThreadQueue) IsRunning() bool {
	return tq.t.IsRunning()
}

// WaitForCompletion joins the worker's goroutine: it blocks until the
// worker's dequeue-and-run loop has actually exited, which only
// happens after Cancel. Calling it without a prior Cancel blocks
// forever, since the loop has no other exit.
func (tq *ThreadQueue) WaitForCompletion() {
	tq.t.WaitForCompletion()
}

