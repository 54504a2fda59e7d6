// Package diag collects parse and import diagnostics.
//
// Parsers take a *List owned by the caller instead of logging or keeping
// global state; a batch import shares one list and reports the aggregate at
// the end. All methods are safe on a nil *List, which discards records.
package diag

import "fmt"

// Severity classifies a diagnostic record.
type Severity int

// Severity levels.
const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Record is a single diagnostic message tied to a source location.
// Line is 1-based; 0 means the location is unknown or not line-oriented.
type Record struct {
	Severity Severity
	File     string
	Line     int
	Message  string
}

// String formats the record as "file:line: severity: message".
func (r Record) String() string {
	if r.File == "" {
		return fmt.Sprintf("%s: %s", r.Severity, r.Message)
	}
	if r.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", r.File, r.Severity, r.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", r.File, r.Line, r.Severity, r.Message)
}

// List accumulates diagnostic records in order of emission.
type List struct {
	records []Record
}

// Warnf appends a warning record.
func (l *List) Warnf(file string, line int, format string, args ...any) {
	if l == nil {
		return
	}
	l.records = append(l.records, Record{
		Severity: SeverityWarning,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errorf appends an error record.
func (l *List) Errorf(file string, line int, format string, args ...any) {
	if l == nil {
		return
	}
	l.records = append(l.records, Record{
		Severity: SeverityError,
		File:     file,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Records returns all accumulated records in emission order.
func (l *List) Records() []Record {
	if l == nil {
		return nil
	}
	return l.records
}

// Warnings returns the number of warning records.
func (l *List) Warnings() int {
	return l.count(SeverityWarning)
}

// Errors returns the number of error records.
func (l *List) Errors() int {
	return l.count(SeverityError)
}

func (l *List) count(s Severity) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, r := range l.records {
		if r.Severity == s {
			n++
		}
	}
	return n
}

// Merge appends all records from other.
func (l *List) Merge(other *List) {
	if l == nil || other == nil {
		return
	}
	l.records = append(l.records, other.records...)
}
