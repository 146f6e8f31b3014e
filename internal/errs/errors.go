// Package errs collects the sentinel errors shared across relay's
// internal packages and a small helper for attaching context to them
// without losing errors.Is compatibility.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrBarrierDestroyed names the condition of using a Barrier that
	// is mid-destruction. Barrier's methods return no errors, so nothing
	// in relay returns it.
	ErrBarrierDestroyed = errors.New("barrier is being destroyed")

	// ErrAlreadyRunning is returned by Thread.Start when the thread is
	// already running.
	ErrAlreadyRunning = errors.New("thread already running")

	// ErrNotPaused names the condition of resuming a Thread that is not
	// paused. Thread.Resume returns no error, so nothing in relay
	// returns it.
	ErrNotPaused = errors.New("thread is not paused")

	// ErrQueueDetached names the condition of a JobThreadQueue with no
	// attached JobQueue. A detached worker idles instead of failing, so
	// nothing in relay returns it.
	ErrQueueDetached = errors.New("job thread queue has no attached queue")

	// ErrPoolShutdown names the condition of using a JobPool after
	// Cancel. JobPool's methods return no errors, so nothing in relay
	// returns it.
	ErrPoolShutdown = errors.New("job pool has been shut down")

	// ErrJobNotFound names a failed job lookup by name or id. The
	// queue's Remove* methods report a miss as false instead, so
	// nothing in relay returns it.
	ErrJobNotFound = errors.New("job not found")

	// ErrEmptyConfigPath is returned by LoadConfig when given an empty path.
	ErrEmptyConfigPath = errors.New("config path is empty")
)

// New wraps a sentinel error with additional detail while preserving
// errors.Is compatibility against sentinel.
func New(sentinel error, detail string) error {
	return fmt.Errorf("%w: %s", sentinel, detail)
}
