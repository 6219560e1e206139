package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/spdxattr/core/header"
	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
)

// PrintDiscovery announces a whole-tree dry run.
func PrintDiscovery(_ *contract.Config, count int) {
	writeDiscovery(os.Stdout, count)
}

// PrintFileProgress prints the progress line or dry-run plan for one file.
func PrintFileProgress(cfg *contract.Config, result schema.FileResult) {
	writeFileProgress(os.Stdout, cfg, result)
}

// PrintRunSummary prints the closing "Processed X/Y" line.
func PrintRunSummary(cfg *contract.Config, summary schema.RunSummary) {
	writeRunSummary(os.Stdout, cfg, summary)
}

func writeDiscovery(w io.Writer, count int) {
	fmt.Fprintf(w, "Found %d source files to process\n", count)
	fmt.Fprintf(w, "\nDry run - showing what would be done:\n\n")
}

func writeFileProgress(w io.Writer, cfg *contract.Config, r schema.FileResult) {
	paint := func(c *color.Color, s string) string { return colorize(cfg, c, s) }

	switch r.Status {
	case schema.ExcludedStatus:
		// Whole-tree runs only list exclusions when previewing.
		if cfg.DryRun || cfg.TargetFile != "" {
			fmt.Fprintf(w, "%s %s\n", paint(contract.InfoColor, "Excluded:"), r.Path)
		}
	case schema.NoContributorsStatus:
		fmt.Fprintf(w, "%s %s%s\n", paint(contract.SkipColor, "No contributors found for"), r.Path, detailSuffix(r.Detail))
	case schema.UpdatedStatus:
		fmt.Fprintf(w, "%s %s\n", paint(contract.SuccessColor, "✓ Updated:"), r.Path)
	case schema.FailedStatus:
		fmt.Fprintf(w, "%s %s%s\n", paint(contract.FailureColor, "✗ Failed:"), r.Path, detailSuffix(r.Detail))
	case schema.PlannedStatus:
		fmt.Fprintf(w, "\nFile: %s\n", r.Path)
		fmt.Fprintf(w, "Contributors: %d\n", len(r.Headers))
		for _, h := range r.Headers {
			fmt.Fprintf(w, "  %s\n", h.String())
		}
		for _, email := range r.Unresolved {
			fmt.Fprintf(w, "  %s %s\n", paint(contract.SkipColor, "No alias entry:"), email)
		}
		if r.Stripped > 0 {
			fmt.Fprintf(w, "Would strip: %d existing SPDX lines\n", r.Stripped)
		}
		fmt.Fprintf(w, "License: %s\n", r.License)
		fmt.Fprintf(w, "%s %s\n", paint(contract.InfoColor, "Would run:"), header.FormatCommand(r.Command))
	}
}

func writeRunSummary(w io.Writer, cfg *contract.Config, s schema.RunSummary) {
	fmt.Fprintf(w, "\nProcessed %d/%d files successfully", s.Succeeded, s.Total)
	if s.Failed > 0 || s.Skipped > 0 || s.Excluded > 0 {
		fmt.Fprintf(w, " (%d failed, %d without contributors, %d excluded)", s.Failed, s.Skipped, s.Excluded)
	}
	fmt.Fprintf(w, " in %v with %d workers\n", s.Duration.Round(time.Millisecond), cfg.Workers)
}

func detailSuffix(detail string) string {
	if detail == "" {
		return ""
	}
	return " (" + detail + ")"
}

// colorize applies c only when colored output is enabled.
func colorize(cfg *contract.Config, c *color.Color, s string) string {
	if cfg.UseColors {
		return c.Sprint(s)
	}
	return s
}
