// Package relay implements a managed job execution engine: worker
// threads consuming jobs from an observable, thread-safe queue, with
// cooperative interruption, pause/resume, and lifecycle callbacks.
//
// It exposes a user-friendly API for creating worker pools, queuing
// jobs with a custom run function, and observing job lifecycle
// transitions via callbacks or a pluggable Monitoring backend.
//
// Example usage:
//
//	p := relay.NewPool(relay.Config{MaxWorkers: 4}, nil, nil)
//	j := relay.NewJob("report", func(j *relay.Job, interrupt func()) {
//		interrupt()
//		// do work...
//	}, nil)
//	p.AddJob(j, false)
//	p.Cancel()
//	p.WaitForCompletion()
package relay

import (
	"go.uber.org/zap"

	"github.com/nordgate/relay/internal/job"
	"github.com/nordgate/relay/internal/pool"
	"github.com/nordgate/relay/internal/queue"
	"github.com/nordgate/relay/internal/sync2"
	"github.com/nordgate/relay/internal/thread"
	"github.com/nordgate/relay/monitoring/memmon"
)

// Barrier is an N-party resettable rendezvous: every party blocks
// until the Nth arrives, then all are released together.
type Barrier = sync2.Barrier

// NewBarrier constructs a Barrier for maxCount parties.
func NewBarrier(maxCount int) *Barrier { return sync2.NewBarrier(maxCount) }

// Block is a manual-reset latch.
type Block = sync2.Block

// NewBlock constructs a Block in the given initial state.
func NewBlock(released bool) *Block { return sync2.NewBlock(released) }

// Thread is a managed goroutine with cooperative cancellation and
// pause/resume.
type Thread = thread.Thread

// NewThread constructs a Thread. log may be nil.
func NewThread(log *zap.Logger) *Thread { return thread.New(log) }

// Job is an observable unit of work with a bit-set state machine.
type Job = job.Job

// RunFunc is a job's body; see job.RunFunc.
type RunFunc = job.RunFunc

// NewJob constructs a Job. log may be nil.
func NewJob(id string, run RunFunc, log *zap.Logger) *Job { return job.New(id, run, log) }

// JobCallback observes a Job's lifecycle.
type JobCallback = job.Callback

// NopJobCallback forwards every event to Next, or does nothing.
type NopJobCallback = job.NopCallback

// FuncJobCallback lets a caller attach individual closures.
type FuncJobCallback = job.FuncCallback

// JobQueue is a thread-safe FIFO of jobs with a blocking dequeue.
type JobQueue = queue.Queue

// NewJobQueue constructs an empty JobQueue. log may be nil.
func NewJobQueue(log *zap.Logger) *JobQueue { return queue.New(log) }

// QueueCallback observes additions and removals on a JobQueue.
type QueueCallback = queue.Callback

// NopQueueCallback forwards every event to Next, or does nothing.
type NopQueueCallback = queue.NopCallback

// JobThreadQueue binds one managed Thread to one JobQueue.
type JobThreadQueue = pool.ThreadQueue

// NewJobThreadQueue constructs a JobThreadQueue bound to q. q may be
// nil. log may be nil.
func NewJobThreadQueue(q *JobQueue, log *zap.Logger) *JobThreadQueue {
	return pool.NewThreadQueue(q, log)
}

// JobPool owns a shared JobQueue and a resizable set of workers that
// dequeue from it, feeding every finished job's snapshot to mon.
type JobPool struct {
	inner *pool.Pool
	mon   Monitoring
	log   *zap.Logger
}

// NewPool constructs a JobPool per cfg, defaulting unset fields the
// way the teacher's CreatePool defaults a zero-value PoolConfig. mon
// defaults to an in-memory monitor (monitoring/memmon) when nil, and
// log defaults to a no-op logger when nil.
func NewPool(cfg Config, log *zap.Logger, mon Monitoring) *JobPool {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	if mon == nil {
		mon = memmon.New()
	}
	return &JobPool{
		inner: pool.New(cfg.MaxWorkers, log),
		mon:   mon,
		log:   log,
	}
}

// JobQueue returns the queue shared by every worker in the pool.
func (p *JobPool) JobQueue() *JobQueue { return p.inner.JobQueue() }

// SetJobQueue swaps every worker onto a new shared queue.
func (p *JobPool) SetJobQueue(q *JobQueue) { p.inner.SetJobQueue(q) }

// AddJob attaches a Monitoring-feeding callback to j (chained ahead
// of any callback j already carries, so embedder observers still
// fire) and appends it to the pool's shared queue.
func (p *JobPool) AddJob(j *Job, unique bool) {
	j.SetCallback(&monitoringCallback{mon: p.mon, next: j.Callback()})
	p.inner.AddJob(j, unique)
}

// SetNumberOfThreads grows or shrinks the worker set to n.
func (p *JobPool) SetNumberOfThreads(n int) { p.inner.SetNumberOfThreads(n) }

// NumberOfThreads reports the current worker count.
func (p *JobPool) NumberOfThreads() int { return p.inner.NumberOfThreads() }

// Cancel stops every worker in the pool and waits for each to exit.
func (p *JobPool) Cancel() { p.inner.Cancel() }

// WaitForCompletion joins every worker; call it after Cancel.
func (p *JobPool) WaitForCompletion() { p.inner.WaitForCompletion() }

// HasJobsToProcess reports whether any worker has work: its bound
// queue still holds jobs or it is currently running one. A pool with
// no workers reports false even while jobs sit in the shared queue.
func (p *JobPool) HasJobsToProcess() bool { return p.inner.HasJobsToProcess() }

// Monitoring returns the pool's metrics sink.
func (p *JobPool) Monitoring() Monitoring { return p.mon }

// monitoringCallback feeds Started/Finished/Canceled job lifecycle
// events into a Monitoring sink as a JobSnapshot, and forwards every
// event (observed or not) to next so an embedder's own callback chain
// keeps firing.
type monitoringCallback struct {
	mon  Monitoring
	next JobCallback
}

func (c *monitoringCallback) snapshot(j *Job) JobSnapshot {
	s := j.Snapshot()
	return JobSnapshot{
		JobID:           s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Priority:        s.Priority,
		StateBits:       uint32(s.State),
		PercentComplete: s.PercentComplete,
		StartedAt:       s.StartedAt,
		FinishedAt:      s.FinishedAt,
		Err:             s.Err,
	}
}

func (c *monitoringCallback) Ready(j *Job) {
	if c.next != nil {
		c.next.Ready(j)
	}
}

func (c *monitoringCallback) Started(j *Job) {
	c.mon.SaveMetrics(c.snapshot(j))
	if c.next != nil {
		c.next.Started(j)
	}
}

func (c *monitoringCallback) Finished(j *Job) {
	c.mon.SaveMetrics(c.snapshot(j))
	if c.next != nil {
		c.next.Finished(j)
	}
}

func (c *monitoringCallback) Canceled(j *Job) {
	c.mon.SaveMetrics(c.snapshot(j))
	if c.next != nil {
		c.next.Canceled(j)
	}
}

func (c *monitoringCallback) NameChanged(j *Job, old, new string) {
	if c.next != nil {
		c.next.NameChanged(j, old, new)
	}
}

func (c *monitoringCallback) DescriptionChanged(j *Job, old, new string) {
	if c.next != nil {
		c.next.DescriptionChanged(j, old, new)
	}
}

func (c *monitoringCallback) IDChanged(j *Job, old, new string) {
	if c.next != nil {
		c.next.IDChanged(j, old, new)
	}
}

func (c *monitoringCallback) PercentCompleteChanged(j *Job, old, new float64) {
	if c.next != nil {
		c.next.PercentCompleteChanged(j, old, new)
	}
}

var _ JobCallback = (*monitoringCallback)(nil)
