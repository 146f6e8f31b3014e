package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordgate/relay/internal/job"
)

func TestAddThenNextJobReturnsSameJob(t *testing.T) {
	q := New(nil)
	j := job.New("j1", nil, nil)

	q.Add(j, false)
	assert.Equal(t, 1, q.Size())

	got := q.NextJob(false)
	assert.Same(t, j, got)
	assert.Equal(t, 0, q.Size())
}

func TestDuplicateAddIsSuppressedWhenUnique(t *testing.T) {
	q := New(nil)
	j := job.New("j1", nil, nil)

	q.Add(j, false)
	q.Add(j, true)
	assert.Equal(t, 1, q.Size())

	first := q.NextJob(false)
	second := q.NextJob(false)
	assert.Same(t, j, first)
	assert.Nil(t, second)
}

func TestAddMarksJobReady(t *testing.T) {
	q := New(nil)
	j := job.New("j1", func(j *job.Job, interrupt func()) {}, nil)
	j.Start(func() {}) // leaves it FINISHED

	var readyFired bool
	j.SetCallback(&job.FuncCallback{OnReady: func(*job.Job) { readyFired = true }})

	q.Add(j, false)
	assert.True(t, readyFired)
	assert.True(t, j.IsReady())
}

func TestNextJobBlocksUntilAdd(t *testing.T) {
	q := New(nil)
	j := job.New("j1", nil, nil)
	got := make(chan *job.Job)

	go func() {
		got <- q.NextJob(true)
	}()

	select {
	case <-got:
		t.Fatal("NextJob returned before any job was added")
	case <-time.After(50 * time.Millisecond):
	}

	q.Add(j, false)
	select {
	case g := <-got:
		assert.Same(t, j, g)
	case <-time.After(time.Second):
		t.Fatal("NextJob never returned after Add")
	}
}

func TestNextJobSkipsCanceledHeads(t *testing.T) {
	q := New(nil)
	canceled := job.New("canceled", nil, nil)
	live := job.New("live", nil, nil)

	q.Add(canceled, false)
	canceled.Cancel() // canceled while still sitting in the queue
	q.Add(live, false)

	got := q.NextJob(false)
	require.NotNil(t, got)
	assert.Same(t, live, got)
	assert.True(t, canceled.IsFinished(), "skipped canceled job must be finished")
}

func TestRemoveByID(t *testing.T) {
	q := New(nil)
	j := job.New("j1", nil, nil)
	q.Add(j, false)

	assert.True(t, q.RemoveByID("j1"))
	assert.Equal(t, 0, q.Size())
	assert.False(t, q.RemoveByID("j1"))
}

func TestRemoveStoppedJobs(t *testing.T) {
	q := New(nil)
	finished := job.New("finished", nil, nil)
	canceledAndFinished := job.New("canceled-and-finished", nil, nil)
	alive := job.New("alive", nil, nil)

	q.Add(finished, false)
	q.Add(canceledAndFinished, false)
	q.Add(alive, false)

	// Mark these after they're queued — Add itself calls Ready, which
	// would otherwise wipe any bits set beforehand.
	finished.SetState(job.Finished, true)
	canceledAndFinished.Cancel()
	canceledAndFinished.SetState(job.Finished, true)
	q.RemoveStoppedJobs()

	assert.Equal(t, 1, q.Size())
	got := q.NextJob(false)
	assert.Same(t, alive, got)
}
