// Package cmd defines the command-line interface for spdxattr.
package cmd

import (
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(headersCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("repo-root", ".", "Repository to attribute (a positional [repo-path] overrides it)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of files attributed concurrently")
	rootCmd.PersistentFlags().String("mailmap", contract.DefaultMailmapFile, "Alias table in git mailmap format, relative to the repo root")
	rootCmd.PersistentFlags().String("exclude-file", contract.DefaultExcludeFile, "Exclusion pattern file, relative to the repo root")
	rootCmd.PersistentFlags().String("default-license", schema.DefaultLicense, "License used when a file declares none")
	rootCmd.PersistentFlags().String("header-tool", contract.DefaultHeaderTool, "Executable that writes the headers (reuse-compatible)")
	rootCmd.PersistentFlags().Bool("require-aliases", false, "Fail files whose contributors have no alias entry")
	rootCmd.PersistentFlags().StringSlice("extensions", schema.DefaultSourceExtensions, "Source file extensions to attribute")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format for headers: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Commit facts cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// annotate and headers flags are bound in sharedSetup for the running command
	annotateCmd.Flags().String("file", "", "Attribute a single file instead of the whole tree")
	annotateCmd.Flags().Bool("dry-run", false, "Show what would be done without modifying files")
	headersCmd.Flags().String("file", "", "Compute headers for a single file instead of the whole tree")

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
