package migration

import (
	"errors"
	"time"
)

var (
	// ErrRunInProgress guards the driver against re-invocation while a run
	// is still executing.
	ErrRunInProgress = errors.New("a migration run is already in progress")

	// ErrNotConfirmed is returned by destructive operations invoked without
	// explicit operator confirmation.
	ErrNotConfirmed = errors.New("operation requires explicit confirmation")
)

// ProgressFunc receives a step label and a completion percentage after each
// of the four migration stages.
type ProgressFunc func(step string, percent int)

// Result is the summary record every migration run produces, whether or not
// it succeeded.
type Result struct {
	Success             bool      `json:"success"`
	UsersMigrated       int       `json:"users_migrated"`
	CollectionsMigrated int       `json:"collections_migrated"`
	CardsMigrated       int       `json:"cards_migrated"`
	Errors              []string  `json:"errors"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

// VerifyReport compares row counts between the two stores.
type VerifyReport struct {
	LocalCards        int   `json:"local_cards"`
	RemoteCards       int64 `json:"remote_cards"`
	LocalCollections  int   `json:"local_collections"`
	RemoteCollections int   `json:"remote_collections"`
	InSync            bool  `json:"in_sync"`
}

// RollbackResult summarizes a reverse transfer.
type RollbackResult struct {
	CardsRestored       int      `json:"cards_restored"`
	CollectionsRestored int      `json:"collections_restored"`
	Errors              []string `json:"errors"`
}

// Stats tracks per-table progress for the run report.
type Stats struct {
	Tables         map[string]*TableStats `json:"tables"`
	StartTime      time.Time              `json:"start_time"`
	EndTime        time.Time              `json:"end_time"`
	TotalErrors    int                    `json:"total_errors"`
	TotalSkipped   int                    `json:"total_skipped"`
	TotalProcessed int                    `json:"total_processed"`
}

// TableStats tracks stats for an individual table.
type TableStats struct {
	TableName    string        `json:"table_name"`
	Processed    int           `json:"processed"`
	Successful   int           `json:"successful"`
	Skipped      int           `json:"skipped"`
	Errors       int           `json:"errors"`
	ErrorRecords []ErrorRecord `json:"error_records,omitempty"`
}

// ErrorRecord captures one failed record for the report.
type ErrorRecord struct {
	Error     string    `json:"error"`
	Data      string    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Stats) table(name string) *TableStats {
	if s.Tables == nil {
		s.Tables = make(map[string]*TableStats)
	}
	ts, ok := s.Tables[name]
	if !ok {
		ts = &TableStats{TableName: name}
		s.Tables[name] = ts
	}
	return ts
}

func (s *Stats) recordError(table, data string, err error) {
	ts := s.table(table)
	ts.Errors++
	ts.ErrorRecords = append(ts.ErrorRecords, ErrorRecord{
		Error:     err.Error(),
		Data:      data,
		Timestamp: time.Now(),
	})
	s.TotalErrors++
}
