// Package query narrows a survey.Table down to the rows a figure needs.
package query

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fitorfat/internal/survey"
)

// Slice says how a breakdown dimension relates to its "Total" row.
type Slice int

const (
	// Any keeps every value of the dimension.
	Any Slice = iota
	// TotalOnly keeps only the aggregate "Total" row.
	TotalOnly
	// ExcludeTotal keeps the breakdown rows and drops "Total".
	ExcludeTotal
)

var sliceNames = map[Slice]string{
	Any:          "any",
	TotalOnly:    "total",
	ExcludeTotal: "breakdown",
}

func (s Slice) String() string {
	if name, ok := sliceNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSlice parses "any", "total" or "breakdown". Empty means Any.
func ParseSlice(s string) (Slice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return Any, nil
	case "total":
		return TotalOnly, nil
	case "breakdown":
		return ExcludeTotal, nil
	default:
		return Any, eris.Errorf("query: unknown slice %q (want any, total or breakdown)", s)
	}
}

func (s Slice) keep(value string) bool {
	switch s {
	case TotalOnly:
		return value == survey.Total
	case ExcludeTotal:
		return value != survey.Total
	default:
		return true
	}
}

// CountrySet is a set of ISO3 codes.
type CountrySet struct {
	codes map[string]struct{}
}

// NewCountrySet builds a set from ISO3 codes. Codes are upper-cased; blanks
// are ignored.
func NewCountrySet(codes ...string) *CountrySet {
	s := &CountrySet{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		s.codes[c] = struct{}{}
	}
	return s
}

// Has reports whether code is in the set.
func (s *CountrySet) Has(code string) bool {
	if s == nil {
		return false
	}
	_, ok := s.codes[code]
	return ok
}

// Len returns the number of codes.
func (s *CountrySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.codes)
}

// Codes returns the codes, sorted.
func (s *CountrySet) Codes() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Predicate reports whether a record passes one filter condition.
type Predicate func(survey.Record) bool

// Filter is a conjunction of conditions. The zero Filter keeps everything.
type Filter struct {
	Year      *int // nil = every year
	BMI       string
	Sex       Slice
	Age       Slice
	Education Slice
	// Countries restricts rows to these ISO3 codes. nil means no restriction;
	// a non-nil empty set matches nothing.
	Countries *CountrySet
}

// Year returns a pointer to y for use in Filter.Year.
func Year(y int) *int { return &y }

// Totals is the Total/Total/Total slice of the survey.
func Totals() Filter {
	return Filter{Sex: TotalOnly, Age: TotalOnly, Education: TotalOnly}
}

// Predicates returns one predicate per active condition.
func (f Filter) Predicates() []Predicate {
	var ps []Predicate
	if f.Year != nil {
		year := *f.Year
		ps = append(ps, func(r survey.Record) bool { return r.Year == year })
	}
	if f.BMI != "" {
		bmi := f.BMI
		ps = append(ps, func(r survey.Record) bool { return r.BMI == bmi })
	}
	if f.Sex != Any {
		s := f.Sex
		ps = append(ps, func(r survey.Record) bool { return s.keep(r.Sex) })
	}
	if f.Age != Any {
		s := f.Age
		ps = append(ps, func(r survey.Record) bool { return s.keep(r.Age) })
	}
	if f.Education != Any {
		s := f.Education
		ps = append(ps, func(r survey.Record) bool { return s.keep(r.Education) })
	}
	if f.Countries != nil {
		set := f.Countries
		ps = append(ps, func(r survey.Record) bool { return set.Has(r.Alpha3) })
	}
	return ps
}

// Matcher combines the active conditions into one predicate. An empty
// filter matches every record.
func (f Filter) Matcher() Predicate {
	ps := f.Predicates()
	return func(r survey.Record) bool {
		for _, p := range ps {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Apply returns a new table with the rows of t that pass every condition.
// t is left untouched.
func (f Filter) Apply(t *survey.Table) *survey.Table {
	return t.Where(f.Matcher())
}
