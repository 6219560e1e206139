package schema

import "time"

// CacheStatus describes the commit facts cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunsStatus describes the run history store.
type RunsStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      int64            `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalFilesSeen int              `json:"total_files_seen"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RunRecord is one stored attribution run.
type RunRecord struct {
	RunID          int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalFiles     int32
	SucceededFiles int32
	FailedFiles    int32
	DryRun         bool
	ConfigParams   *string
}

// FileOutcomeRecord is one stored per-file outcome.
type FileOutcomeRecord struct {
	RunID       int64
	FilePath    string
	RecordTime  time.Time
	Status      string
	Headers     string // newline-joined rendered headers
	License     string
	HeaderCount int32
	Detail      *string
}
