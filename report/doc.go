// Package report renders validation reports and run history for terminals and
// machines.
//
// Three formats are available through NewFormatter:
//
//   - text: one error string per line followed by a summary line
//   - json: indented JSON
//   - yaml: YAML documents
//
// Quiet text output prints only the error lines, so an empty output means the
// configuration is valid.
package report
