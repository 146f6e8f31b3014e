package memmon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nordgate/relay"
)

func TestSaveMetricsOverwritesByJobID(t *testing.T) {
	m := New()
	m.SaveMetrics(relay.JobSnapshot{JobID: "a", PercentComplete: 10})
	m.SaveMetrics(relay.JobSnapshot{JobID: "a", PercentComplete: 90})
	m.SaveMetrics(relay.JobSnapshot{JobID: "b", PercentComplete: 50})

	got := m.GetMetrics()
	assert.Len(t, got, 2)
	assert.Equal(t, 90.0, got["a"].PercentComplete)
	assert.Equal(t, 50.0, got["b"].PercentComplete)
}

func TestGetMetricsOnEmptyMonReturnsEmptyMap(t *testing.T) {
	m := New()
	assert.Empty(t, m.GetMetrics())
}
