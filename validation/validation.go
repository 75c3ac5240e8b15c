// Package validation validates and shapes raw request payloads against
// declarative per-operation rule sets.
package validation

import (
	"sort"
	"strings"
)

// Violations maps a field name to its ordered list of messages.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add appends msg to field's messages.
func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Fields returns the offending field names, sorted.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for f := range v {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Error is returned when shaping fails. It carries every violation found.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Violations.Fields(), ", ")
}
