package schema

import "strings"

// Succeeded reports whether the status counts toward the success total.
func (s FileStatus) Succeeded() bool {
	return s == UpdatedStatus || s == PlannedStatus
}

// RenderHeaders renders every header as its SPDX line, preserving order.
func RenderHeaders(headers []AttributionHeader) []string {
	lines := make([]string, len(headers))
	for i, h := range headers {
		lines[i] = h.String()
	}
	return lines
}

// FormatHolders joins the holder labels for compact display.
func FormatHolders(headers []AttributionHeader) string {
	if len(headers) == 0 {
		return "-"
	}
	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = h.YearSpan + " " + h.HolderLabel
	}
	return strings.Join(parts, ", ")
}

// Summarize counts outcomes across results.
func Summarize(results []FileResult, dryRun bool) RunSummary {
	summary := RunSummary{DryRun: dryRun}
	for _, r := range results {
		switch {
		case r.Status == ExcludedStatus:
			summary.Excluded++
			continue
		case r.Status.Succeeded():
			summary.Succeeded++
		case r.Status == FailedStatus:
			summary.Failed++
		default:
			summary.Skipped++
		}
		summary.Total++
	}
	return summary
}
