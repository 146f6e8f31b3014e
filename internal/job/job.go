// Package job implements the observable, bit-set job state machine:
// the unit of work a JobQueue carries and a JobThreadQueue executes.
package job

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunFunc is the job's abstract body. interrupt is the owning
// worker's cooperative cancellation/pause point; a well-behaved
// RunFunc calls it periodically at safe points and returns promptly
// once it unwinds the call stack (interrupt never returns normally
// when it unwinds — see internal/thread).
type RunFunc func(j *Job, interrupt func())

// Snapshot is a read-only copy of a Job's observable fields, handed to
// Monitoring implementations so they never need to reach into Job's
// locked internals.
type Snapshot struct {
	ID              string
	Name            string
	Description     string
	Priority        float64
	State           State
	PercentComplete float64
	StartedAt       time.Time
	FinishedAt      time.Time
	Err             error
}

// Job is an observable unit of work with a bit-set state machine over
// {Ready, Running, Cancel, Finished}. Exactly one of Ready/Running can
// be set at a time; Cancel is orthogonal and sticky; Finished is
// terminal.
type Job struct {
	mu sync.Mutex

	name            string
	id              string
	description     string
	priority        float64
	percentComplete float64
	state           State
	startedAt       time.Time
	finishedAt      time.Time
	err             error

	callback Callback
	runFn    RunFunc

	log *zap.Logger
}

// New constructs a Job in the initial Ready state. runFn is the job's
// body; it may be nil for jobs that exist purely to be observed in
// tests, in which case Start immediately finishes the job.
func New(id string, runFn RunFunc, log *zap.Logger) *Job {
	if log == nil {
		log = zap.NewNop()
	}
	return &Job{
		id:    id,
		state: Ready,
		runFn: runFn,
		log:   log,
	}
}

// SetCallback attaches (or replaces) the job's callback chain.
func (j *Job) SetCallback(cb Callback) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.callback = cb
}

// Callback returns the job's current callback chain, or nil.
func (j *Job) Callback() Callback {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.callback
}

// State returns the current state bit-set.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// IsReady, IsRunning, IsCanceled, IsFinished and IsStopped test
// individual bits. IsStopped tests FINISHED alone — a job that ran to
// completion after being canceled is stopped the same as one that
// never was; callers that care about cancellation check IsCanceled
// directly.
func (j *Job) IsReady() bool    { return j.State().Has(Ready) }
func (j *Job) IsRunning() bool  { return j.State().Has(Running) }
func (j *Job) IsCanceled() bool { return j.State().Has(Cancel) }
func (j *Job) IsFinished() bool { return j.State().Has(Finished) }
func (j *Job) IsStopped() bool  { return j.State().Has(Finished) }

// SetState computes new = (current OR bits) AND maskAll if on, else
// new = (current AND NOT bits) AND maskAll, swaps it in under the
// lock, and — outside the lock — fires at most one edge callback for
// the highest-priority lifecycle bit that went 0->1, checked in the
// order Ready, Running, Cancel, Finished.
func (j *Job) SetState(bits State, on bool) {
	j.mu.Lock()
	old := j.state
	var next State
	if on {
		next = (old | bits) & maskAll
	} else {
		next = (old &^ bits) & maskAll
	}
	j.state = next
	cb := j.callback
	j.mu.Unlock()

	j.emitEdges(cb, old, next)
}

func (j *Job) emitEdges(cb Callback, old, next State) {
	edge := func(bit State) bool {
		return old&bit == 0 && next&bit != 0
	}
	switch {
	case edge(Ready):
		j.log.Debug("job ready", zap.String("id", j.id))
		if cb != nil {
			cb.Ready(j)
		}
	case edge(Running):
		j.log.Debug("job started", zap.String("id", j.id))
		if cb != nil {
			cb.Started(j)
		}
	case edge(Cancel):
		j.log.Debug("job canceled", zap.String("id", j.id))
		if cb != nil {
			cb.Canceled(j)
		}
	case edge(Finished):
		j.log.Debug("job finished", zap.String("id", j.id))
		if cb != nil {
			cb.Finished(j)
		}
	}
}

// ResetState clears the state to 0 if bits differs from the current
// state, then sets bits. This is how Ready/Running/Finished collapse
// orthogonal bits while Finished additionally preserves CANCEL.
func (j *Job) ResetState(bits State) {
	j.mu.Lock()
	current := j.state
	if bits == current {
		j.mu.Unlock()
		return
	}
	j.state = 0
	j.mu.Unlock()
	j.SetState(bits, true)
}

// Ready puts the job back into the Ready state, clearing Running but
// preserving nothing else (Ready is a fresh round, per spec).
func (j *Job) Ready() {
	j.ResetState(Ready)
}

// Running transitions the job into the Running state and stamps
// StartedAt, so Monitoring implementations can later compute duration
// from the Snapshot alone.
func (j *Job) Running() {
	j.mu.Lock()
	j.startedAt = time.Now()
	j.mu.Unlock()
	j.ResetState(Running)
}

// Finished marks the job terminal, preserving CANCEL if it was set,
// and stamps FinishedAt.
func (j *Job) Finished() {
	j.mu.Lock()
	next := (j.state & Cancel) | Finished
	j.finishedAt = time.Now()
	j.mu.Unlock()
	j.ResetState(next)
}

// Cancel sets the CANCEL bit; it is orthogonal to Ready/Running and
// sticky until Ready or Running resets the state (Finished keeps it).
func (j *Job) Cancel() {
	j.SetState(Cancel, true)
}

// Start runs the job's body to completion on the caller's goroutine:
// mark Running, invoke RunFunc (which may call interrupt to unwind on
// cancellation), then mark Finished only if CANCEL was not observed.
// Cancellation observed during Run remains signaled to the outside
// even though Start itself returns normally — the job's body unwinds
// via the interrupt point's own panic/recover, not by Start catching
// anything here.
func (j *Job) Start(interrupt func()) {
	j.Running()
	if j.runFn != nil {
		j.runFn(j, interrupt)
	}
	if !j.IsCanceled() {
		j.Finished()
	}
}

// Name, ID, Description and PercentComplete are observable
// properties: each setter fires the matching *Changed callback with
// the old and new values, outside the lock, when the value changes.
// Priority has an accessor pair too, but SetPriority fires no callback.
func (j *Job) Name() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.name
}

func (j *Job) SetName(name string) {
	j.mu.Lock()
	old := j.name
	j.name = name
	cb := j.callback
	j.mu.Unlock()
	if cb != nil && old != name {
		cb.NameChanged(j, old, name)
	}
}

func (j *Job) ID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.id
}

func (j *Job) SetID(id string) {
	j.mu.Lock()
	old := j.id
	j.id = id
	cb := j.callback
	j.mu.Unlock()
	if cb != nil && old != id {
		cb.IDChanged(j, old, id)
	}
}

func (j *Job) Description() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.description
}

func (j *Job) SetDescription(desc string) {
	j.mu.Lock()
	old := j.description
	j.description = desc
	cb := j.callback
	j.mu.Unlock()
	if cb != nil && old != desc {
		cb.DescriptionChanged(j, old, desc)
	}
}

func (j *Job) Priority() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.priority
}

// SetPriority stores the priority field. It is never consulted by
// JobQueue ordering — the core queue is strictly FIFO — this field
// exists only so embedders and UIs can display or sort on it
// themselves.
func (j *Job) SetPriority(p float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.priority = p
}

func (j *Job) PercentComplete() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.percentComplete
}

// Err returns the outcome error recorded via SetErr, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// SetErr records the outcome of a job-body failure. Per the error
// handling design, a user run failure is unspecified by the core —
// nothing here calls SetErr automatically. A RunFunc that wants its
// failure visible in Snapshot/Monitoring must call j.SetErr itself
// before returning, the side channel the design points implementers
// at instead of a run() return value.
func (j *Job) SetErr(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
}

func (j *Job) SetPercentComplete(pct float64) {
	j.mu.Lock()
	old := j.percentComplete
	j.percentComplete = pct
	cb := j.callback
	j.mu.Unlock()
	if cb != nil && old != pct {
		cb.PercentCompleteChanged(j, old, pct)
	}
}

// Snapshot returns a read-only copy of the job's observable fields.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:              j.id,
		Name:            j.name,
		Description:     j.description,
		Priority:        j.priority,
		State:           j.state,
		PercentComplete: j.percentComplete,
		StartedAt:       j.startedAt,
		FinishedAt:      j.finishedAt,
		Err:             j.err,
	}
}
