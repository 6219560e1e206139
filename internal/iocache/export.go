package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/spdxattr/internal/parquet"
)

// ExecuteRunsExport writes the run history to two Parquet files named after
// outputFile.
func ExecuteRunsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run history is not configured. Set --runs-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total file outcomes: %d\n", status.TableSizes[fileOutcomesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	outcomes, err := store.GetAllFileOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve file outcomes: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.RunsFromRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	outcomesFile := outputFile + ".file_outcomes.parquet"
	if err := parquet.WriteFileOutcomesParquet(parquet.FileOutcomesFromRecords(outcomes), outcomesFile); err != nil {
		return fmt.Errorf("failed to write file outcomes: %w", err)
	}
	fmt.Printf("Exported %d file outcomes to: %s\n", len(outcomes), outcomesFile)

	return nil
}
