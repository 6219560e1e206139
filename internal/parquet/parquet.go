// Package parquet exports run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/spdxattr/schema"
	"github.com/parquet-go/parquet-go"
)

// Run is one attribution run. It maps to the spdxattr_runs table.
type Run struct {
	RunID          int64      `parquet:"run_id,snappy"`
	StartTime      time.Time  `parquet:"start_time,snappy"`
	EndTime        *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs  *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalFiles     int32      `parquet:"total_files,snappy"`
	SucceededFiles int32      `parquet:"succeeded_files,snappy"`
	FailedFiles    int32      `parquet:"failed_files,snappy"`
	DryRun         bool       `parquet:"dry_run,snappy"`

	// ConfigParams is the JSON-encoded run configuration
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileOutcome is the outcome of one file within a run.
// It maps to the spdxattr_file_outcomes table.
type FileOutcome struct {
	RunID       int64     `parquet:"run_id,snappy"`
	FilePath    string    `parquet:"file_path,snappy"`
	RecordTime  time.Time `parquet:"record_time,snappy"`
	Status      string    `parquet:"status,dict,snappy"`
	Headers     string    `parquet:"headers,snappy"` // newline-joined SPDX lines
	License     string    `parquet:"license,dict,snappy"`
	HeaderCount int32     `parquet:"header_count,snappy"`
	Detail      *string   `parquet:"detail,optional,snappy"`
}

// RunsFromRecords converts stored runs to their Parquet rows.
func RunsFromRecords(records []schema.RunRecord) []Run {
	rows := make([]Run, len(records))
	for i, r := range records {
		rows[i] = Run{
			RunID:          r.RunID,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			RunDurationMs:  r.RunDurationMs,
			TotalFiles:     r.TotalFiles,
			SucceededFiles: r.SucceededFiles,
			FailedFiles:    r.FailedFiles,
			DryRun:         r.DryRun,
			ConfigParams:   r.ConfigParams,
		}
	}
	return rows
}

// FileOutcomesFromRecords converts stored file outcomes to their Parquet rows.
func FileOutcomesFromRecords(records []schema.FileOutcomeRecord) []FileOutcome {
	rows := make([]FileOutcome, len(records))
	for i, r := range records {
		rows[i] = FileOutcome(r)
	}
	return rows
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileOutcomesParquet writes file outcomes to a Parquet file.
func WriteFileOutcomesParquet(data []FileOutcome, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from T's struct tags and writes every row.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
