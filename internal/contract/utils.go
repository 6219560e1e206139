package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/spdxattr/schema"
)

// Color variables for console output.
var (
	SuccessColor = color.New(color.FgGreen, color.Bold) // SuccessColor marks updated or planned files.
	FailureColor = color.New(color.FgRed, color.Bold)   // FailureColor marks failed files.
	SkipColor    = color.New(color.FgYellow)            // SkipColor marks files with nothing to attribute.
	InfoColor    = color.New(color.FgCyan)              // InfoColor marks excluded files and hints.
)

// GetPlainStatus returns the plain text label for a file status.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainStatus(status schema.FileStatus) string {
	switch status {
	case schema.UpdatedStatus:
		return "Updated"
	case schema.PlannedStatus:
		return "Planned"
	case schema.FailedStatus:
		return "Failed"
	case schema.ExcludedStatus:
		return "Excluded"
	case schema.NoContributorsStatus:
		return "No contributors"
	default:
		return string(status)
	}
}

// GetColorStatus returns a colored status label for console output (table).
func GetColorStatus(status schema.FileStatus) string {
	text := GetPlainStatus(status)

	switch status {
	case schema.UpdatedStatus, schema.PlannedStatus:
		return SuccessColor.Sprint(text)
	case schema.FailedStatus:
		return FailureColor.Sprint(text)
	case schema.NoContributorsStatus:
		return SkipColor.Sprint(text)
	default:
		return InfoColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the commit facts cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".spdxattr_cache.db"
	}
	return filepath.Join(homeDir, ".spdxattr_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".spdxattr_runs.db"
	}
	return filepath.Join(homeDir, ".spdxattr_runs.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ToSlash converts an OS path to the forward-slash form that git reports.
func ToSlash(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "./")
}
