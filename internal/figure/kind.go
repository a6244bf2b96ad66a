package figure

import (
	"strconv"
	"strings"
)

// ChartKind selects the secondary chart.
type ChartKind int

// Chart kinds. The numbering matches the dashboard's chart dropdown.
const (
	Unsupported ChartKind = 0
	BySex       ChartKind = 1
	ByAge       ChartKind = 2
	ByEducation ChartKind = 3
	Trend       ChartKind = 4
	WindRose    ChartKind = 5
)

// Kinds lists every supported chart kind in dropdown order.
var Kinds = []ChartKind{BySex, ByAge, ByEducation, Trend, WindRose}

var kindLabels = map[ChartKind]string{
	BySex:       "Percentage of people with selected BMI by sex",
	ByAge:       "Percentage of people with selected BMI by age",
	ByEducation: "Percentage of people with selected BMI by education level",
	Trend:       "Evolution of the percentage of people with selected BMI",
	WindRose:    "Wind Rose Chart",
}

// ParseChartKind maps a dropdown value ("1".."5") or a kind name
// ("by-sex", "trend", ...) to a ChartKind. Anything else is Unsupported.
func ParseChartKind(s string) ChartKind {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return KindOf(n)
	}
	for _, k := range Kinds {
		if k.String() == s {
			return k
		}
	}
	return Unsupported
}

// KindOf maps an integer dropdown value to a ChartKind.
func KindOf(n int) ChartKind {
	k := ChartKind(n)
	if _, ok := kindLabels[k]; !ok {
		return Unsupported
	}
	return k
}

// Label is the human readable dropdown text.
func (k ChartKind) Label() string {
	return kindLabels[k]
}

// Supported reports whether k is one of the five charts.
func (k ChartKind) Supported() bool {
	_, ok := kindLabels[k]
	return ok
}

func (k ChartKind) String() string {
	switch k {
	case BySex:
		return "by-sex"
	case ByAge:
		return "by-age"
	case ByEducation:
		return "by-education"
	case Trend:
		return "trend"
	case WindRose:
		return "wind-rose"
	default:
		return "unsupported"
	}
}
