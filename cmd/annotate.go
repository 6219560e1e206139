package cmd

import (
	"github.com/huangsam/spdxattr/core"
	"github.com/spf13/cobra"
)

// annotateCmd rewrites the attribution headers of the tree or of one file.
var annotateCmd = &cobra.Command{
	Use:   "annotate [repo-path]",
	Short: "Rewrite SPDX copyright headers from git history",
	Long: `Blame every source file, ignore commits that only maintained license or
attribution text, and replace the file's SPDX lines with one
SPDX-FileCopyrightText line per organization or contributor.

Existing SPDX lines are stripped before the header tool runs. If the tool
fails, the original file content is restored.

Examples:
  # Preview the whole repository
  spdxattr annotate --dry-run

  # Attribute a single file
  spdxattr annotate --file src/lib.rs

  # Use four workers and fail files without an alias entry
  spdxattr annotate --workers 4 --require-aliases`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteAnnotate(rootCtx, cfg, cacheManager)
	},
}
