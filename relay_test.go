package relay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrierTwoRoundRendezvous(t *testing.T) {
	start := NewBarrier(2)
	finished := NewBarrier(3)

	worker := func() {
		start.Block()
		time.Sleep(50 * time.Millisecond)
		finished.Block()
	}

	round := func() {
		go worker()
		go worker()
		finished.Block()
	}

	begin := time.Now()
	round()
	start.Reset()
	finished.Reset()
	round()
	assert.GreaterOrEqual(t, time.Since(begin), 100*time.Millisecond)
}

func TestBlockGatesWorkerUntilReleased(t *testing.T) {
	block := NewBlock(false)
	started := make(chan time.Time, 1)
	begin := time.Now()

	go func() {
		block.Block()
		started <- time.Now()
	}()

	time.Sleep(100 * time.Millisecond)
	block.Release()

	select {
	case when := <-started:
		assert.GreaterOrEqual(t, when.Sub(begin), 100*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("worker never observed the release")
	}
}

func TestPoolOfFiveDrainsTenJobs(t *testing.T) {
	p := NewPool(Config{MaxWorkers: 5}, nil, nil)
	for i := 0; i < 10; i++ {
		j := NewJob("", func(j *Job, interrupt func()) {
			interrupt()
			time.Sleep(50 * time.Millisecond)
		}, nil)
		p.AddJob(j, false)
	}

	require.Eventually(t, func() bool { return !p.HasJobsToProcess() }, 2*time.Second, time.Millisecond)
	p.Cancel()
	p.WaitForCompletion()
}

func TestJobCallbackOrdering(t *testing.T) {
	var mu sync.Mutex
	var events []string
	log := func(name string) {
		mu.Lock()
		events = append(events, name)
		mu.Unlock()
	}

	j := NewJob("order", func(j *Job, interrupt func()) {}, nil)
	j.SetCallback(&FuncJobCallback{
		OnStarted:  func(*Job) { log("started") },
		OnFinished: func(*Job) { log("finished") },
	})

	j.Start(func() {})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"started", "finished"}, events)
}

func TestJobCancelDuringRunSkipsFinished(t *testing.T) {
	var mu sync.Mutex
	canceledFired := false
	finishedFired := false

	j := NewJob("cancel-demo", func(j *Job, interrupt func()) {
		for i := 0; i < 1000; i++ {
			time.Sleep(10 * time.Millisecond)
			interrupt()
		}
	}, nil)
	j.SetCallback(&FuncJobCallback{
		OnCanceled: func(*Job) {
			mu.Lock()
			canceledFired = true
			mu.Unlock()
		},
		OnFinished: func(*Job) {
			mu.Lock()
			finishedFired = true
			mu.Unlock()
		},
	})

	q := NewJobQueue(nil)
	tq := NewJobThreadQueue(q, nil)
	require.NoError(t, tq.Start())
	q.Add(j, false)

	time.Sleep(50 * time.Millisecond)
	tq.Cancel()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, canceledFired)
	assert.False(t, finishedFired)
}

func TestDuplicateAddToQueue(t *testing.T) {
	q := NewJobQueue(nil)
	j := NewJob("dup", nil, nil)

	q.Add(j, false)
	q.Add(j, true)
	assert.Equal(t, 1, q.Size())

	first := q.NextJob(false)
	second := q.NextJob(false)
	assert.Same(t, j, first)
	assert.Nil(t, second)
}
