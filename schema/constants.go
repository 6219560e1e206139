package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// BucketKind represents how a contributor is attributed.
	BucketKind string

	// FileStatus represents the outcome of processing one file.
	FileStatus string
)

// CopyrightTag is the SPDX field that attribution lines are written as.
const CopyrightTag = "SPDX-FileCopyrightText:"

// LicenseTag is the SPDX field that carries a file's license expression.
const LicenseTag = "SPDX-License-Identifier:"

// DefaultLicense is used when a file declares no license of its own.
const DefaultLicense = "Apache-2.0"

// UnknownName is the placeholder for a contributor whose name is not recorded.
const UnknownName = "Unknown"

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All bucket kinds.
const (
	OrganizationBucket BucketKind = "organization"
	IndividualBucket   BucketKind = "individual"
	UnresolvedBucket   BucketKind = "unresolved" // individual without an alias entry
)

// All file statuses.
const (
	UpdatedStatus        FileStatus = "updated"
	PlannedStatus        FileStatus = "planned" // dry-run success
	FailedStatus         FileStatus = "failed"
	NoContributorsStatus FileStatus = "no-contributors"
	ExcludedStatus       FileStatus = "excluded"
)

// DefaultSourceExtensions lists the file extensions attribution runs on.
var DefaultSourceExtensions = []string{".rs", ".py", ".go", ".ts", ".js", ".c", ".h", ".cpp", ".hpp", ".sol"}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
