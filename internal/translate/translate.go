// Package translate maps the short Eurostat survey codes to display labels.
package translate

import (
	"fmt"
	"sort"
)

// Table is a fixed code → label mapping. The zero value is an empty table.
type Table struct {
	name    string
	entries map[string]string
}

func newTable(name string, entries map[string]string) Table {
	return Table{name: name, entries: entries}
}

// Name returns the dimension the table translates (e.g. "sex").
func (t Table) Name() string { return t.name }

// Len returns the number of codes in the table.
func (t Table) Len() int { return len(t.entries) }

// Has reports whether code is present.
func (t Table) Has(code string) bool {
	_, ok := t.entries[code]
	return ok
}

// Codes returns the table's codes, sorted.
func (t Table) Codes() []string {
	out := make([]string, 0, len(t.entries))
	for c := range t.entries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// UnknownCodeError is returned when a code is missing from a translation table.
type UnknownCodeError struct {
	Table string
	Code  string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("translate: code %q not found in %s table", e.Code, e.Table)
}

// Translate returns the label for code. A code absent from the table is an
// error, never a default.
func Translate(code string, table Table) (string, error) {
	label, ok := table.entries[code]
	if !ok {
		return "", &UnknownCodeError{Table: table.name, Code: code}
	}
	return label, nil
}
