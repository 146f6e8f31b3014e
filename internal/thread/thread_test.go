package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadRunsBodyToCompletion(t *testing.T) {
	tr := New(nil)
	ran := make(chan struct{})

	require.NoError(t, tr.Start(func(t *Thread) {
		close(ran)
	}))

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("body never ran")
	}
	assert.True(t, tr.WaitForCompletionTimeout(time.Second))
}

func TestThreadStartTwiceFails(t *testing.T) {
	tr := New(nil)
	block := make(chan struct{})
	require.NoError(t, tr.Start(func(t *Thread) {
		<-block
	}))

	err := tr.Start(func(t *Thread) {})
	assert.Error(t, err)
	close(block)
	tr.WaitForCompletion()
}

func TestThreadInterruptIsNoOpUntilCanceled(t *testing.T) {
	tr := New(nil)
	survived := make(chan struct{})
	require.NoError(t, tr.Start(func(t *Thread) {
		t.Interrupt()
		close(survived)
	}))

	select {
	case <-survived:
	case <-time.After(time.Second):
		t.Fatal("Interrupt unwound a non-canceled thread")
	}
	tr.WaitForCompletion()
}

func TestThreadCancelUnwindsAtNextInterrupt(t *testing.T) {
	tr := New(nil)
	iterations := 0
	done := make(chan struct{})

	require.NoError(t, tr.Start(func(t *Thread) {
		defer close(done)
		for i := 0; i < 1000; i++ {
			time.Sleep(5 * time.Millisecond)
			t.Interrupt()
			iterations++
		}
	}))

	time.Sleep(30 * time.Millisecond)
	tr.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("canceled thread never unwound")
	}
	assert.Less(t, iterations, 1000)
}

func TestThreadPauseAndResume(t *testing.T) {
	tr := New(nil)
	progressed := make(chan struct{}, 10)

	require.NoError(t, tr.Start(func(t *Thread) {
		for i := 0; i < 5; i++ {
			t.Interrupt()
			progressed <- struct{}{}
			time.Sleep(10 * time.Millisecond)
		}
	}))

	<-progressed
	tr.Pause()
	require.Eventually(t, tr.IsPaused, time.Second, time.Millisecond)

	select {
	case <-progressed:
		t.Fatal("thread kept progressing while paused")
	case <-time.After(50 * time.Millisecond):
	}

	tr.Resume()
	select {
	case <-progressed:
	case <-time.After(time.Second):
		t.Fatal("thread never resumed")
	}
	tr.Cancel()
	tr.WaitForCompletion()
}

func TestHardwareConcurrencyIsPositive(t *testing.T) {
	assert.Greater(t, HardwareConcurrency(), 0)
}

func TestYieldDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, Yield)
}

func TestCurrentThreadIDIsStableWithinAGoroutine(t *testing.T) {
	id := CurrentThreadID()
	assert.Greater(t, id, uint64(0))
	assert.Equal(t, id, CurrentThreadID(), "calling it twice from the same goroutine must return the same id")
}
