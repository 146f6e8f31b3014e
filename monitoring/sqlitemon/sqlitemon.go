// Package sqlitemon is a durable Monitoring implementation backed by
// SQLite, grounded on the teacher's example/orbit_db: every
// SaveMetrics call upserts a row into a job_history table so a
// finished job's outcome survives process restarts.
package sqlitemon

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nordgate/relay"
)

// Mon persists job snapshots to a SQLite database.
type Mon struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the job_history table exists.
func Open(path string) (*Mon, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitemon: open %s: %w", path, err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS job_history (
		job_id           TEXT PRIMARY KEY,
		name             TEXT,
		description      TEXT,
		priority         REAL,
		state_bits       INTEGER,
		percent_complete REAL,
		started_at       DATETIME,
		finished_at      DATETIME,
		err              TEXT
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitemon: create schema: %w", err)
	}

	return &Mon{db: db}, nil
}

// SaveMetrics upserts snap's row into job_history.
func (m *Mon) SaveMetrics(snap relay.JobSnapshot) {
	var errText string
	if snap.Err != nil {
		errText = snap.Err.Error()
	}
	_, err := m.db.Exec(`
		INSERT INTO job_history
			(job_id, name, description, priority, state_bits, percent_complete, started_at, finished_at, err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			priority=excluded.priority,
			state_bits=excluded.state_bits,
			percent_complete=excluded.percent_complete,
			started_at=excluded.started_at,
			finished_at=excluded.finished_at,
			err=excluded.err
	`, snap.JobID, snap.Name, snap.Description, snap.Priority, snap.StateBits,
		snap.PercentComplete, snap.StartedAt, snap.FinishedAt, errText)
	if err != nil {
		// Monitoring is a best-effort observer; a write failure here
		// must never interrupt the job that produced the snapshot.
		return
	}
}

// GetMetrics loads every row currently in job_history.
func (m *Mon) GetMetrics() map[string]relay.JobSnapshot {
	out := make(map[string]relay.JobSnapshot)
	rows, err := m.db.Query(`
		SELECT job_id, name, description, priority, state_bits, percent_complete, started_at, finished_at, err
		FROM job_history
	`)
	if err != nil {
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var snap relay.JobSnapshot
		var errText string
		if err := rows.Scan(&snap.JobID, &snap.Name, &snap.Description, &snap.Priority,
			&snap.StateBits, &snap.PercentComplete, &snap.StartedAt, &snap.FinishedAt, &errText); err != nil {
			continue
		}
		if errText != "" {
			snap.Err = fmt.Errorf("%s", errText)
		}
		out[snap.JobID] = snap
	}
	return out
}

// Close releases the underlying database handle.
func (m *Mon) Close() error {
	return m.db.Close()
}

var _ relay.Monitoring = (*Mon)(nil)
