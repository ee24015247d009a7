package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dmaldon/resolutor/internal/model"
)

// Renderer writes parse results. The record JSON is the primary output
// boundary; the audit report and Markdown summary are opt-in artifacts for
// review queues.
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// RenderRecordJSON writes the record to path, or stdout when path is "-"
func (r *Renderer) RenderRecordJSON(record *model.ResolutionRecord, path string) error {
	return writeJSON(record, path)
}

// RenderReportJSON writes the full audit report (per-field provenance and
// confidence) to path
func (r *Renderer) RenderReportJSON(report *model.Report, path string) error {
	return writeJSON(report, path)
}

// RenderMarkdown writes a human-readable review summary
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resolution parse: %s\n\n", report.Source)
	fmt.Fprintf(&b, "Parsed at: %s\n\n", report.ParsedAt.Format("2006-01-02 15:04:05 UTC"))

	if report.Rejected != "" {
		fmt.Fprintf(&b, "**REJECTED**: %s\n\n", report.Rejected)
	} else if report.Record != nil {
		rec := report.Record
		fmt.Fprintf(&b, "- Resolution: **%s**\n", rec.ResolutionNumber)
		fmt.Fprintf(&b, "- Date: %s\n", rec.IssueDate)
		if rec.SessionType != nil {
			fmt.Fprintf(&b, "- Session: %s\n", *rec.SessionType)
		}
		if rec.ApprovingAuthority != nil {
			fmt.Fprintf(&b, "- Authority: %s\n", *rec.ApprovingAuthority)
		}
		fmt.Fprintf(&b, "- Clauses: %d, recitals: %d, participants: %d\n", len(rec.Clauses), len(rec.Recitals), len(rec.Participants))
		fmt.Fprintf(&b, "- Source confidence: %s\n", rec.SourceConfidence)
		b.WriteString("\n")
	}

	b.WriteString("## Fields\n\n")
	b.WriteString("| Field | Confidence | Rule | Value |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, f := range report.Fields {
		value := f.Value
		if len(f.Values) > 0 {
			value = fmt.Sprintf("%d values", len(f.Values))
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.Field, f.Confidence, f.Rule, mdEscape(value))
	}

	if report.Review != nil {
		fmt.Fprintf(&b, "\n## Review note (%s/%s)\n\n%s\n", report.Review.Provider, report.Review.Model, report.Review.Note)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a one-look result to stderr
func (r *Renderer) RenderSummary(report *model.Report) {
	if report.Rejected != "" {
		fmt.Fprintf(os.Stderr, "✗ %s: rejected (%s)\n", report.Source, report.Rejected)
		return
	}
	rec := report.Record
	fmt.Fprintf(os.Stderr, "✓ %s: resolution %s, dated %s (confidence: %s)\n",
		report.Source, rec.ResolutionNumber, rec.IssueDate, rec.SourceConfidence)
	if r.verbose {
		for _, f := range report.Fields {
			if !f.Matched() {
				fmt.Fprintf(os.Stderr, "  - %s: absent\n", f.Field)
				continue
			}
			if len(f.Values) > 0 {
				fmt.Fprintf(os.Stderr, "  - %s: %d values (%s, %s)\n", f.Field, len(f.Values), f.Confidence, f.Rule)
				continue
			}
			fmt.Fprintf(os.Stderr, "  - %s: %q (%s, %s)\n", f.Field, f.Value, f.Confidence, f.Rule)
		}
	}
}

func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
