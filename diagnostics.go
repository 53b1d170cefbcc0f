/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package unitype

import "fmt"

// Severity represents the severity level of a decode diagnostic.
type Severity int

const (
	// SeverityCritical indicates the table could not be decoded and is treated as absent.
	SeverityCritical Severity = iota
	// SeverityMajor indicates part of a table was dropped or replaced by a default.
	SeverityMajor
	// SeverityMinor indicates a non-conformance that was tolerated without data loss.
	SeverityMinor
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic describes a problem found while decoding a font. Diagnostics are collected on the
// Font instead of aborting the decode, so the remaining tables stay usable.
type Diagnostic struct {
	Table    Tag      // The table where the problem occurred.
	Section  string   // Part of the table, e.g. "glyph 12" or "subtable 3".
	Issue    string   // Human-readable description.
	Severity Severity // Severity level.
	Offset   int64    // Byte offset within the table (-1 if unknown).
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	section := d.Table.String()
	if d.Section != "" {
		section += "/" + d.Section
	}
	if d.Offset >= 0 {
		return fmt.Sprintf("[%s] %s at offset %d: %s", d.Severity, section, d.Offset, d.Issue)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Severity, section, d.Issue)
}

// diagnostics accumulates diagnostics during decoding.
type diagnostics struct {
	list []Diagnostic
}

func (ds *diagnostics) add(table Tag, section string, severity Severity, offset int64, format string, args ...interface{}) {
	ds.list = append(ds.list, Diagnostic{
		Table:    table,
		Section:  section,
		Issue:    fmt.Sprintf(format, args...),
		Severity: severity,
		Offset:   offset,
	})
}

// forTable returns the diagnostics recorded for `tag`.
func (ds *diagnostics) forTable(tag Tag) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds.list {
		if d.Table == tag {
			out = append(out, d)
		}
	}
	return out
}
