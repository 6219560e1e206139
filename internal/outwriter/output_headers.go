package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/spdxattr/internal/contract"
	"github.com/huangsam/spdxattr/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAttributionResults outputs attribution results, dispatching based on the output format configured.
func PrintAttributionResults(results []schema.FileResult, summary schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResults(w, results, summary)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResults(w, results)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsTable(w, results, summary, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeResultsTable renders one row per file.
func writeResultsTable(w io.Writer, results []schema.FileResult, summary schema.RunSummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Status", "Holders", "License", "Strip"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	data := make([][]string, 0, len(results))
	for _, r := range results {
		status := contract.GetPlainStatus(r.Status)
		if cfg.UseColors {
			status = contract.GetColorStatus(r.Status)
		}
		data = append(data, []string{
			contract.TruncatePath(r.Path, pathWidth),
			status,
			schema.FormatHolders(r.Headers),
			r.License,
			strconv.Itoa(r.Stripped),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d files (%d planned, %d failed, %d without contributors, %d excluded)\n",
		len(results), summary.Succeeded, summary.Failed, summary.Skipped, summary.Excluded); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Attribution computed in %v with %d workers. Cache backend: %s\n",
		summary.Duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeCSVResults writes one row per header; files without headers get a single row.
func writeCSVResults(w io.Writer, results []schema.FileResult) error {
	header := []string{"path", "status", "kind", "holder", "contact_email", "year_span", "license", "stripped", "unresolved", "detail"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			base := func(h schema.AttributionHeader) []string {
				return []string{
					r.Path,
					string(r.Status),
					string(h.Kind),
					h.HolderLabel,
					h.ContactEmail,
					h.YearSpan,
					r.License,
					strconv.Itoa(r.Stripped),
					strings.Join(r.Unresolved, "|"),
					r.Detail,
				}
			}
			if len(r.Headers) == 0 {
				if err := cw.Write(base(schema.AttributionHeader{})); err != nil {
					return err
				}
				continue
			}
			for _, h := range r.Headers {
				if err := cw.Write(base(h)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeJSONResults writes the results together with the run summary.
func writeJSONResults(w io.Writer, results []schema.FileResult, summary schema.RunSummary) error {
	type jsonFileResult struct {
		schema.FileResult
		Lines []string `json:"lines,omitempty"`
	}
	out := struct {
		Files   []jsonFileResult  `json:"files"`
		Summary schema.RunSummary `json:"summary"`
	}{
		Files:   make([]jsonFileResult, len(results)),
		Summary: summary,
	}
	for i, r := range results {
		out.Files[i] = jsonFileResult{FileResult: r, Lines: schema.RenderHeaders(r.Headers)}
	}
	return writeJSON(w, out)
}
