package survey

import (
	"math"
	"sort"
)

// Table is an immutable, ordered collection of records. Every derived view
// (see Where) is a new Table; the receiver is never modified.
type Table struct {
	records []Record
	years   []int
	bmis    []string
}

// NewTable builds a table from records. The slice is copied so later changes
// by the caller do not leak into the table.
func NewTable(records []Record) *Table {
	rs := make([]Record, len(records))
	copy(rs, records)

	seenYear := make(map[int]bool)
	seenBMI := make(map[string]bool)
	t := &Table{records: rs}
	for _, r := range rs {
		if !seenYear[r.Year] {
			seenYear[r.Year] = true
			t.years = append(t.years, r.Year)
		}
		if !seenBMI[r.BMI] {
			seenBMI[r.BMI] = true
			t.bmis = append(t.bmis, r.BMI)
		}
	}
	sort.Ints(t.years)
	sort.Strings(t.bmis)
	return t
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the records in table order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Where returns a new table holding the records for which keep returns true.
func (t *Table) Where(keep func(Record) bool) *Table {
	if t == nil {
		return NewTable(nil)
	}
	var out []Record
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewTable(out)
}

// Years returns the distinct years present, ascending.
func (t *Table) Years() []int {
	if t == nil {
		return nil
	}
	out := make([]int, len(t.years))
	copy(out, t.years)
	return out
}

// BMICategories returns the distinct BMI categories present, sorted.
func (t *Table) BMICategories() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.bmis))
	copy(out, t.bmis)
	return out
}

// Countries returns the distinct country names present, sorted.
func (t *Table) Countries() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.records {
		if !seen[r.Country] {
			seen[r.Country] = true
			out = append(out, r.Country)
		}
	}
	sort.Strings(out)
	return out
}

// ValueRange returns the minimum and maximum value in the table. ok is false
// for an empty table.
func (t *Table) ValueRange() (lo, hi float64, ok bool) {
	if t.Len() == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range t.records {
		lo = math.Min(lo, r.Value)
		hi = math.Max(hi, r.Value)
	}
	return lo, hi, true
}
