package pool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordgate/relay/internal/job"
)

func TestPoolRunsEveryJob(t *testing.T) {
	p := New(3, nil)
	var ran atomic.Int32

	for i := 0; i < 9; i++ {
		j := job.New("", func(j *job.Job, interrupt func()) {
			ran.Add(1)
		}, nil)
		p.AddJob(j, false)
	}

	require.Eventually(t, func() bool { return !p.HasJobsToProcess() }, time.Second, time.Millisecond)
	assert.Equal(t, int32(9), ran.Load())

	p.Cancel()
	p.WaitForCompletion()
}

func TestPoolDrainsFiveWorkersTenJobs(t *testing.T) {
	p := New(5, nil)
	begin := time.Now()

	for i := 0; i < 10; i++ {
		j := job.New("", func(j *job.Job, interrupt func()) {
			interrupt()
			time.Sleep(200 * time.Millisecond)
		}, nil)
		p.AddJob(j, false)
	}

	for p.HasJobsToProcess() {
		time.Sleep(5 * time.Millisecond)
	}
	elapsed := time.Since(begin)
	assert.GreaterOrEqual(t, elapsed, 350*time.Millisecond)
	assert.Less(t, elapsed, 1200*time.Millisecond)

	p.Cancel()
	p.WaitForCompletion()
}

func TestPoolCancelThenWaitForCompletionReturnsPromptly(t *testing.T) {
	p := New(2, nil)
	j := job.New("", func(j *job.Job, interrupt func()) {
		for i := 0; i < 1000; i++ {
			time.Sleep(5 * time.Millisecond)
			interrupt()
		}
	}, nil)
	p.AddJob(j, false)

	time.Sleep(20 * time.Millisecond)
	p.Cancel()

	done := make(chan struct{})
	go func() {
		p.WaitForCompletion()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForCompletion did not return promptly after Cancel")
	}
}

func TestSetNumberOfThreadsGrowsAndShrinks(t *testing.T) {
	p := New(2, nil)
	require.Equal(t, 2, p.NumberOfThreads())

	p.SetNumberOfThreads(5)
	assert.Equal(t, 5, p.NumberOfThreads())

	p.SetNumberOfThreads(1)
	assert.Equal(t, 1, p.NumberOfThreads())

	p.Cancel()
	p.WaitForCompletion()
}
