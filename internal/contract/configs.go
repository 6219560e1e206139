package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/spdxattr/schema"
)

// Default values for configuration.
const (
	DefaultWorkers             = 1
	DefaultMailmapFile         = ".mailmap"
	DefaultExcludeFile         = ".spdx-exclude"
	DefaultHeaderTool          = "reuse"
	DefaultMaxSubstantialLines = 2
)

// ErrFileNotFound is returned when a file named for single-file mode does not exist.
var ErrFileNotFound = errors.New("file does not exist")

// DefaultPollutionKeywords are the commit message fragments that suggest a
// license or attribution maintenance commit. Matching is case-insensitive.
var DefaultPollutionKeywords = []string{
	"spdx",
	"license header",
	"copyright header",
	"add license",
	"update license",
	"license annotation",
	"reuse annotate",
	"add spdx",
	"update spdx",
	"copyright attribution",
}

// DefaultPollutionMarkers are the fragments that make a changed diff line
// count as attribution text rather than substance.
var DefaultPollutionMarkers = []string{
	"spdx-",
	"copyright",
	"license-identifier",
	"filepyrighttext", // mangled "filecopyrighttext" seen in real headers
	"©",
	"(c)",
	"all rights reserved",
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// OrganizationConfig describes one organization that owns an email domain.
type OrganizationConfig struct {
	Name    string   `mapstructure:"name"`
	Contact string   `mapstructure:"contact"`
	Domains []string `mapstructure:"domains"`
}

// PollutionRawInput holds the pollution heuristic settings from the YAML config file.
type PollutionRawInput struct {
	Keywords            []string `mapstructure:"keywords"`
	Markers             []string `mapstructure:"markers"`
	MaxSubstantialLines int      `mapstructure:"max-substantial-lines"`
}

// Config holds the runtime configuration for attribution.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath   string // Absolute git top-level
	TargetFile string // Repo-relative slash path; empty processes the whole tree
	DryRun     bool
	Workers    int

	MailmapPath string // Absolute path of the alias table
	ExcludeFile string // Absolute path of the exclusion pattern file
	Excludes    []string

	DefaultLicense string
	HeaderTool     string
	RequireAliases bool
	Extensions     []string

	PollutionKeywords   []string
	PollutionMarkers    []string
	MaxSubstantialLines int

	// Organizations replaces the built-in organization table when non-empty
	Organizations []OrganizationConfig

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	RepoRoot       string   `mapstructure:"repo-root"`
	Workers        int      `mapstructure:"workers"`
	Mailmap        string   `mapstructure:"mailmap"`
	ExcludeFile    string   `mapstructure:"exclude-file"`
	DefaultLicense string   `mapstructure:"default-license"`
	HeaderTool     string   `mapstructure:"header-tool"`
	RequireAliases bool     `mapstructure:"require-aliases"`
	Extensions     []string `mapstructure:"extensions"`
	Output         string   `mapstructure:"output"`
	OutputFile     string   `mapstructure:"output-file"`
	Width          int      `mapstructure:"width"`
	Color          string   `mapstructure:"color"`
	CacheBackend   string   `mapstructure:"cache-backend"`
	CacheDBConnect string   `mapstructure:"cache-db-connect"`
	RunsBackend    string   `mapstructure:"runs-backend"`
	RunsDBConnect  string   `mapstructure:"runs-db-connect"`

	// --- Fields from annotateCmd.Flags() and headersCmd.Flags() ---
	File   string `mapstructure:"file"`
	DryRun bool   `mapstructure:"dry-run"`

	// --- Config file only ---
	Pollution     PollutionRawInput    `mapstructure:"pollution"`
	Organizations []OrganizationConfig `mapstructure:"organizations"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Extensions = slices.Clone(c.Extensions)
	clone.PollutionKeywords = slices.Clone(c.PollutionKeywords)
	clone.PollutionMarkers = slices.Clone(c.PollutionMarkers)
	if c.Organizations != nil {
		clone.Organizations = make([]OrganizationConfig, len(c.Organizations))
		for i, org := range c.Organizations {
			org.Domains = slices.Clone(org.Domains)
			clone.Organizations[i] = org
		}
	}
	return &clone
}

// CloneForFile creates a copy of the Config targeting a single repo-relative file.
func (c *Config) CloneForFile(relPath string, dryRun bool) *Config {
	clone := c.Clone()
	clone.TargetFile = relPath
	clone.DryRun = dryRun
	return clone
}

// HasExtension reports whether the path has one of the configured source extensions.
func (c *Config) HasExtension(path string) bool {
	return slices.Contains(c.Extensions, filepath.Ext(path))
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPollutionRules(cfg, input); err != nil {
		return err
	}
	if err := processOrganizations(cfg, input); err != nil {
		return err
	}
	if err := resolveGitPathAndFile(ctx, cfg, client, input); err != nil {
		return err
	}
	if err := loadRepoFiles(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs-db-connect: %w", err)
	}

	// Cache and run history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if cacheDBPath == runsDBPath {
			return fmt.Errorf("cache and run history must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.DryRun = input.DryRun
	cfg.RequireAliases = input.RequireAliases
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	// --- 3. Header tool and license ---
	cfg.HeaderTool = strings.TrimSpace(input.HeaderTool)
	if cfg.HeaderTool == "" {
		cfg.HeaderTool = DefaultHeaderTool
	}
	cfg.DefaultLicense = strings.TrimSpace(input.DefaultLicense)
	if cfg.DefaultLicense == "" {
		cfg.DefaultLicense = schema.DefaultLicense
	}

	// --- 4. Extensions ---
	cfg.Extensions = nil
	for _, ext := range input.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(cfg.Extensions, ext) {
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = slices.Clone(schema.DefaultSourceExtensions)
	}

	// --- 5. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processPollutionRules fills the pollution heuristic, falling back to the built-in lists.
func processPollutionRules(cfg *Config, input *ConfigRawInput) error {
	cfg.PollutionKeywords = lowerNonEmpty(input.Pollution.Keywords)
	if len(cfg.PollutionKeywords) == 0 {
		cfg.PollutionKeywords = slices.Clone(DefaultPollutionKeywords)
	}
	cfg.PollutionMarkers = lowerNonEmpty(input.Pollution.Markers)
	if len(cfg.PollutionMarkers) == 0 {
		cfg.PollutionMarkers = slices.Clone(DefaultPollutionMarkers)
	}
	if input.Pollution.MaxSubstantialLines < 0 {
		return fmt.Errorf("pollution.max-substantial-lines cannot be negative (received %d)", input.Pollution.MaxSubstantialLines)
	}
	cfg.MaxSubstantialLines = input.Pollution.MaxSubstantialLines
	if cfg.MaxSubstantialLines == 0 {
		cfg.MaxSubstantialLines = DefaultMaxSubstantialLines
	}
	return nil
}

// processOrganizations validates custom organization entries.
func processOrganizations(cfg *Config, input *ConfigRawInput) error {
	cfg.Organizations = nil
	seen := make(map[string]string)
	for i, org := range input.Organizations {
		name := strings.TrimSpace(org.Name)
		if name == "" {
			return fmt.Errorf("organizations[%d]: name is required", i)
		}
		domains := lowerNonEmpty(org.Domains)
		if len(domains) == 0 {
			return fmt.Errorf("organizations[%d] %q: at least one domain is required", i, name)
		}
		for _, d := range domains {
			if owner, dup := seen[d]; dup {
				return fmt.Errorf("domain %q is claimed by both %q and %q", d, owner, name)
			}
			seen[d] = name
		}
		cfg.Organizations = append(cfg.Organizations, OrganizationConfig{
			Name:    name,
			Contact: strings.TrimSpace(org.Contact),
			Domains: domains,
		})
	}
	return nil
}

// resolveGitPathAndFile resolves the Git repository root and the optional single target file.
func resolveGitPathAndFile(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = input.RepoRoot
	}
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	gitRoot, err := client.GetRepoRoot(ctx, absSearchPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot

	cfg.TargetFile = ""
	if input.File == "" {
		return nil
	}

	// A relative file resolves against the working directory
	absFile, err := filepath.Abs(input.File)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(absFile); statErr != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, input.File)
	}
	relPath, err := filepath.Rel(gitRoot, absFile)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("file %s is outside repository %s", input.File, gitRoot)
	}
	cfg.TargetFile = ToSlash(relPath)
	return nil
}

// loadRepoFiles resolves repo-relative config files and reads the exclusion patterns.
func loadRepoFiles(cfg *Config, input *ConfigRawInput) error {
	cfg.MailmapPath = resolveInRepo(cfg.RepoPath, input.Mailmap, DefaultMailmapFile)
	cfg.ExcludeFile = resolveInRepo(cfg.RepoPath, input.ExcludeFile, DefaultExcludeFile)

	patterns, err := LoadExcludeFile(cfg.ExcludeFile)
	if err != nil {
		return fmt.Errorf("reading exclude file %s: %w", cfg.ExcludeFile, err)
	}
	cfg.Excludes = patterns
	return nil
}

func resolveInRepo(repoPath, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(repoPath, value)
}

func lowerNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
