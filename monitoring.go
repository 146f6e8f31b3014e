package relay

import "time"

// State bit values, mirroring internal/job.State — exported here so
// Monitoring implementations can decode JobSnapshot.StateBits without
// reaching into the internal package.
const (
	StateReady    uint32 = 1 << 0
	StateRunning  uint32 = 1 << 1
	StateCancel   uint32 = 1 << 2
	StateFinished uint32 = 1 << 3
)

// JobSnapshot is the DTO a Job hands to Monitoring so implementations
// never reach into Job's locked internals directly.
type JobSnapshot struct {
	JobID           string
	Name            string
	Description     string
	Priority        float64
	StateBits       uint32
	PercentComplete float64
	StartedAt       time.Time
	FinishedAt      time.Time
	Err             error
}

// Monitoring is a pluggable metrics sink fed by job lifecycle
// callbacks. A Pool defaults to an in-memory implementation
// (monitoring/memmon) when none is supplied, mirroring the teacher's
// CreatePool defaulting its own mon argument.
type Monitoring interface {
	SaveMetrics(snap JobSnapshot)
	GetMetrics() map[string]JobSnapshot
}
