// Package memmon is the default, in-memory Monitoring implementation:
// a thread-safe map keyed by job ID, grounded directly on the
// teacher's DefaultMon.
package memmon

import (
	"sync"

	"github.com/nordgate/relay"
)

// Mon stores the most recent snapshot per job ID in a concurrent-safe
// map. It is suitable for debugging, tests, and simple runtime
// introspection; it does not persist across process restarts.
type Mon struct {
	data sync.Map
}

// New constructs an empty Mon.
func New() *Mon {
	return &Mon{}
}

// SaveMetrics stores snap, replacing any prior snapshot for the same
// job ID.
func (m *Mon) SaveMetrics(snap relay.JobSnapshot) {
	m.data.Store(snap.JobID, snap)
}

// GetMetrics returns every stored snapshot keyed by job ID.
func (m *Mon) GetMetrics() map[string]relay.JobSnapshot {
	out := make(map[string]relay.JobSnapshot)
	m.data.Range(func(key, value any) bool {
		out[key.(string)] = value.(relay.JobSnapshot)
		return true
	})
	return out
}

var _ relay.Monitoring = (*Mon)(nil)
