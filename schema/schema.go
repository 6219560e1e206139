// Package schema has models and constants shared by all parts of spdxattr.
package schema

import (
	"fmt"
	"time"
)

// ZeroCommitID is the commit id git blame reports for uncommitted lines.
const ZeroCommitID = "0000000000000000000000000000000000000000"

// BlameLine is one commit header block from git blame porcelain output.
// Blame repeats a commit for every line it authored; only the first block
// for a commit carries the author fields.
type BlameLine struct {
	CommitID    string // Full 40-char commit hash
	AuthorName  string // Raw author name as recorded in history
	AuthorEmail string // Raw author email without angle brackets
}

// CommitFacts holds the immutable facts about one commit that attribution needs.
type CommitFacts struct {
	CommitID  string `json:"commit_id"`
	Year      int    `json:"year"`
	Pollution bool   `json:"pollution"`
}

// ContributionRecord is an authored line reduced to what attribution needs.
type ContributionRecord struct {
	ContributorEmail string
	ContributorName  string
	CommitID         string
	Year             int
}

// CanonicalIdentity is the normalized identity used to dedupe contributors.
type CanonicalIdentity struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Resolved    bool   `json:"resolved"` // false when no alias entry matched
}

// AttributionBucket is the key that contribution years are grouped under.
type AttributionBucket struct {
	Kind         BucketKind        `json:"kind"`
	Organization string            `json:"organization,omitempty"`
	Identity     CanonicalIdentity `json:"identity"`
}

// Key returns a stable string that uniquely identifies the bucket.
func (b AttributionBucket) Key() string {
	if b.Kind == OrganizationBucket {
		return "org:" + b.Organization
	}
	return "email:" + b.Identity.Email
}

// AttributionHeader is one rendered copyright line.
type AttributionHeader struct {
	Kind         BucketKind `json:"kind"`
	HolderLabel  string     `json:"holder"`
	ContactEmail string     `json:"contact_email"`
	YearSpan     string     `json:"year_span"`
}

// String renders the header as an SPDX-FileCopyrightText line.
func (h AttributionHeader) String() string {
	return fmt.Sprintf("%s © %s %s <%s>", CopyrightTag, h.YearSpan, h.HolderLabel, h.ContactEmail)
}

// FileResult is the outcome of attributing a single file.
type FileResult struct {
	Path       string              `json:"path"`
	Status     FileStatus          `json:"status"`
	Headers    []AttributionHeader `json:"headers,omitempty"`
	License    string              `json:"license,omitempty"`
	Stripped   int                 `json:"stripped,omitempty"`
	Command    []string            `json:"command,omitempty"`
	Unresolved []string            `json:"unresolved,omitempty"`
	Detail     string              `json:"detail,omitempty"`
}

// RunSummary aggregates the outcomes of one run.
type RunSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Excluded  int           `json:"excluded"`
	DryRun    bool          `json:"dry_run"`
	Duration  time.Duration `json:"duration"`
}
