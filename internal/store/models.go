package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Run represents the 'run_history' table.
type Run struct {
	ID             int64          `db:"id" json:"id"`
	Stage          string         `db:"stage" json:"stage"`
	TriggerType    string         `db:"trigger_type" json:"trigger_type"`
	Status         string         `db:"status" json:"status"`
	SourceDir      string         `db:"source_dir" json:"source_dir"`
	ProcessedFiles pq.StringArray `db:"processed_files" json:"processed_files"`
	RowsRead       int            `db:"rows_read" json:"rows_read"`
	RowsKept       int            `db:"rows_kept" json:"rows_kept"`
	Message        string         `db:"message" json:"message,omitempty"`
	StartedAt      time.Time      `db:"started_at" json:"started_at"`
	FinishedAt     sql.NullTime   `db:"finished_at" json:"-"`
}

var (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
)

var (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusFailure    = "failure"
)

var (
	StageIngest    = "ingest"
	StageAggregate = "aggregate"
)

// ParseTrigger validates the -trigger flag value.
func ParseTrigger(s string) (string, error) {
	switch s {
	case TriggerTypeManual, TriggerTypeScheduled:
		return s, nil
	}
	return "", fmt.Errorf("unknown trigger %q (want %s or %s)", s, TriggerTypeManual, TriggerTypeScheduled)
}
