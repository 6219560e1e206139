package cmd

import (
	"github.com/huangsam/spdxattr/core"
	"github.com/spf13/cobra"
)

// headersCmd reports attribution without touching any file.
var headersCmd = &cobra.Command{
	Use:   "headers [repo-path]",
	Short: "Show the attribution headers each file would get",
	Long: `Compute attribution for the tree or one file without modifying anything
and render it as a table, CSV or JSON.

Examples:
  # Table for the whole repository
  spdxattr headers

  # JSON for one file
  spdxattr headers --file contracts/Vault.sol --output json

  # CSV report written to disk
  spdxattr headers --output csv --output-file attribution.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteHeaders(rootCtx, cfg, cacheManager)
	},
}
