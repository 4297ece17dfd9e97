package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sagarc03/confguard"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const timeLayout = "2006-01-02 15:04:05"

// Formatter formats results for output.
type Formatter interface {
	FormatReport(w io.Writer, report confguard.Report) error
	FormatHistory(w io.Writer, runs []confguard.Run) error
	FormatSchema(w io.Writer, schema confguard.Schema) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the formatter for format. Unknown formats fall back to
// text.
func NewFormatter(format string, quiet bool) Formatter {
	switch strings.ToLower(format) {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &HumanFormatter{Quiet: quiet}
	}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatReport prints each error on its own line followed by a summary.
func (f *HumanFormatter) FormatReport(w io.Writer, report confguard.Report) error {
	for _, msg := range report.Errors {
		_, _ = fmt.Fprintln(w, msg)
	}

	if f.Quiet {
		return nil
	}

	if report.Valid {
		_, _ = fmt.Fprintf(w, "%s: OK\n", displayPath(report.Path))
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s: %d problem(s) found\n", displayPath(report.Path), len(report.Errors))
	return nil
}

// FormatHistory prints runs as a table.
func (f *HumanFormatter) FormatHistory(w io.Writer, runs []confguard.Run) error {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs found")
		return nil
	}

	maxPathLen := 4 // "PATH"
	for i := range runs {
		maxPathLen = max(maxPathLen, len(runs[i].Path))
	}
	maxPathLen = min(maxPathLen, 60)

	_, _ = fmt.Fprintf(w, "%-36s  %-*s  %-7s  %6s  %s\n", "ID", maxPathLen, "PATH", "STATUS", "ERRORS", "CHECKED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", 36), strings.Repeat("-", maxPathLen), strings.Repeat("-", 7), strings.Repeat("-", 6), strings.Repeat("-", 19))

	for i := range runs {
		run := &runs[i]
		path := run.Path
		if len(path) > maxPathLen {
			path = path[:maxPathLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-36s  %-*s  %-7s  %6d  %s\n",
			run.ID, maxPathLen, path, status(run.Valid), len(run.Errors), run.CheckedAt.Local().Format(timeLayout))
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	}
	return nil
}

// FormatSchema prints one line per field, grouped by section.
func (f *HumanFormatter) FormatSchema(w io.Writer, schema confguard.Schema) error {
	for i, section := range schema {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "[%s]\n", section.Name)

		width := 0
		for _, field := range section.Fields {
			width = max(width, len(field.Key))
		}
		for _, field := range section.Fields {
			_, _ = fmt.Fprintf(w, "  %-*s  %s\n", width, field.Key, field.Rule)
		}
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatReport formats a report as JSON.
func (f *JSONFormatter) FormatReport(w io.Writer, report confguard.Report) error {
	return writeJSON(w, normalizeReport(report))
}

// FormatHistory formats runs as JSON.
func (f *JSONFormatter) FormatHistory(w io.Writer, runs []confguard.Run) error {
	return writeJSON(w, historyOutput{Runs: normalizeRuns(runs)})
}

// FormatSchema formats the schema as JSON.
func (f *JSONFormatter) FormatSchema(w io.Writer, schema confguard.Schema) error {
	return writeJSON(w, schemaOutput{Sections: describeSchema(schema)})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, errorOutput{Error: err.Error()})
}

// YAMLFormatter outputs YAML.
type YAMLFormatter struct{}

// FormatReport formats a report as YAML.
func (f *YAMLFormatter) FormatReport(w io.Writer, report confguard.Report) error {
	return writeYAML(w, normalizeReport(report))
}

// FormatHistory formats runs as YAML.
func (f *YAMLFormatter) FormatHistory(w io.Writer, runs []confguard.Run) error {
	return writeYAML(w, historyOutput{Runs: normalizeRuns(runs)})
}

// FormatSchema formats the schema as YAML.
func (f *YAMLFormatter) FormatSchema(w io.Writer, schema confguard.Schema) error {
	return writeYAML(w, schemaOutput{Sections: describeSchema(schema)})
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	return writeYAML(w, errorOutput{Error: err.Error()})
}

type historyOutput struct {
	Runs []confguard.Run `json:"runs" yaml:"runs"`
}

type schemaOutput struct {
	Sections []sectionOutput `json:"sections" yaml:"sections"`
}

type sectionOutput struct {
	Name   string        `json:"name" yaml:"name"`
	Fields []fieldOutput `json:"fields" yaml:"fields"`
}

type fieldOutput struct {
	Key  string `json:"key" yaml:"key"`
	Rule string `json:"rule" yaml:"rule"`
}

func describeSchema(schema confguard.Schema) []sectionOutput {
	sections := make([]sectionOutput, len(schema))
	for i, section := range schema {
		fields := make([]fieldOutput, len(section.Fields))
		for j, field := range section.Fields {
			fields[j] = fieldOutput{Key: field.Key, Rule: field.Rule.String()}
		}
		sections[i] = sectionOutput{Name: section.Name, Fields: fields}
	}
	return sections
}

type errorOutput struct {
	Error string `json:"error" yaml:"error"`
}

// normalizeReport keeps list fields non-null in encoded output.
func normalizeReport(report confguard.Report) confguard.Report {
	if report.Errors == nil {
		report.Errors = []string{}
	}
	if report.Problems == nil {
		report.Problems = []confguard.Problem{}
	}
	report.CheckedAt = report.CheckedAt.UTC()
	return report
}

func normalizeRuns(runs []confguard.Run) []confguard.Run {
	out := make([]confguard.Run, len(runs))
	for i, run := range runs {
		if run.Errors == nil {
			run.Errors = []string{}
		}
		run.CheckedAt = run.CheckedAt.UTC()
		out[i] = run
	}
	return out
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func displayPath(path string) string {
	if path == "" {
		return "config"
	}
	return path
}

func status(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
