// Package thread provides a managed worker goroutine with cooperative
// cancellation and pause/resume, matching the semantics of an
// OS-thread-per-worker runtime: start/cancel/pause/resume plus a
// running-condition wait for completion.
package thread

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nordgate/relay/internal/errs"
	"github.com/nordgate/relay/internal/sync2"
)

// Body is the function a Thread runs. It receives the Thread so it can
// call Interrupt at safe points.
type Body func(t *Thread)

// interruptSignal is the sentinel panic value an interrupt point
// raises to unwind a canceled worker. Thread's own shim is where it is
// finally recovered; an intermediate frame (such as the pool's job
// runner) may recover it only to re-panic it.
type interruptSignal struct{}

// Thread is a managed goroutine. At most one goroutine runs per Thread
// instance at a time; Start starts nothing if one is already running.
// Thread has no finalizer: dropping it does not cancel its goroutine,
// so a body that never reaches a canceled interrupt point keeps running.
type Thread struct {
	runningMu sync.Mutex
	runningCv *sync.Cond

	running       atomic.Bool
	interruptible atomic.Bool
	canceled      atomic.Bool

	pauseBarrier *sync2.Barrier

	log *zap.Logger
}

// New constructs a Thread. log may be nil, in which case diagnostics
// are discarded.
func New(log *zap.Logger) *Thread {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Thread{
		pauseBarrier: sync2.NewBarrier(1),
		log:          log,
	}
	t.runningCv = sync.NewCond(&t.runningMu)
	return t
}

// Start spawns a fresh goroutine running body, unless the thread is
// already running or has been permanently canceled. Starting a
// canceled thread again does nothing and returns nil; starting a
// thread that is already running does nothing and returns an error
// wrapping errs.ErrAlreadyRunning.
func (t *Thread) Start(body Body) error {
	if t.canceled.Load() {
		return nil
	}
	if !t.running.CompareAndSwap(false, true) {
		return errs.New(errs.ErrAlreadyRunning, "start")
	}

	go func() {
		defer t.finish()
		defer t.recoverInterrupt()
		body(t)
	}()
	return nil
}

func (t *Thread) recoverInterrupt() {
	if r := recover(); r != nil {
		if _, ok := r.(interruptSignal); !ok {
			panic(r) // not ours: propagate, a genuine bug in the job body
		}
		t.log.Debug("thread unwound via cancel")
	}
}

func (t *Thread) finish() {
	t.runningMu.Lock()
	t.running.Store(false)
	t.runningCv.Broadcast()
	t.runningMu.Unlock()
}

// Interrupt is the cooperative safe point. If the thread has been
// asked to cancel, it unwinds the running body immediately. Otherwise,
// if a pause has been requested, it parks on the pause barrier until
// Resume is called — an interrupt point doubles as a pause point.
func (t *Thread) Interrupt() {
	if t.interruptible.Load() {
		panic(interruptSignal{})
	}
	t.pauseBarrier.Block()
}

// SetCancel arms or disarms the cancellation flag. Setting it to true
// additionally releases a paused worker so it can observe the cancel
// at its next interrupt point.
func (t *Thread) SetCancel(flag bool) {
	t.interruptible.Store(flag)
	if flag {
		t.canceled.Store(true)
		t.pauseBarrier.ResetN(1)
	}
}

// Cancel is shorthand for SetCancel(true).
func (t *Thread) Cancel() {
	t.SetCancel(true)
}

// Pause requests that the worker park at its next interrupt point.
func (t *Thread) Pause() {
	t.pauseBarrier.ResetN(2)
}

// Resume releases a paused worker.
func (t *Thread) Resume() {
	t.pauseBarrier.ResetN(1)
}

// IsPaused reports whether a party is currently parked in the pause
// barrier.
func (t *Thread) IsPaused() bool {
	return t.pauseBarrier.BlockedCount() > 0
}

// IsRunning reports whether the worker's goroutine is alive.
func (t *Thread) IsRunning() bool {
	return t.running.Load()
}

// IsInterruptible reports whether the next Interrupt call will unwind
// the worker.
func (t *Thread) IsInterruptible() bool {
	return t.interruptible.Load()
}

// IsCanceled reports whether the thread has been permanently canceled.
// Unlike IsInterruptible, this never goes back to false.
func (t *Thread) IsCanceled() bool {
	return t.canceled.Load()
}

// WaitForCompletion suspends the caller until the worker's goroutine
// has exited.
func (t *Thread) WaitForCompletion() {
	t.runningMu.Lock()
	defer t.runningMu.Unlock()
	for t.running.Load() {
		t.runningCv.Wait()
	}
}

// WaitForCompletionTimeout is WaitForCompletion bounded by a deadline;
// it reports whether the thread finished before the deadline elapsed.
func (t *Thread) WaitForCompletionTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		t.WaitForCompletion()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Yield gives up the calling goroutine's current turn on the
// scheduler, the closest Go analogue to an OS thread's yield.
func Yield() {
	runtime.Gosched()
}

// HardwareConcurrency reports the number of logical CPUs available to
// the process, the closest Go analogue to
// std::thread::hardware_concurrency() — a sizing hint for how many
// worker Threads a Pool should run, not a hard limit.
func HardwareConcurrency() int {
	return runtime.NumCPU()
}

// CurrentThreadID returns a best-effort identifier for the calling
// goroutine, parsed out of its own runtime stack trace the way the
// original's current-thread-id helper reads an OS thread id. Go
// goroutines have no public, stable id and are not pinned to one OS
// thread, so this exists for logging/debugging correlation only —
// never use it as a map key or a lock.
func CurrentThreadID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	fmt.Sscanf(string(buf[:n]), "goroutine %d ", &id)
	return id
}

// Sleep is an interruptible sleep: if the thread is canceled
// mid-sleep it stops early by unwinding through Interrupt, which it
// polls on short ticks instead of blocking for the full duration.
func (t *Thread) Sleep(d time.Duration) {
	const tick = 10 * time.Millisecond
	deadline := time.Now().Add(d)
	for {
		t.Interrupt()
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		if remaining > tick {
			time.Sleep(tick)
		} else {
			time.Sleep(remaining)
			return
		}
	}
}
