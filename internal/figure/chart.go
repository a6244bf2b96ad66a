package figure

import (
	"fmt"
	"sort"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/MetalBlueberry/go-plotly/pkg/types"

	"github.com/sells-group/fitorfat/internal/query"
	"github.com/sells-group/fitorfat/internal/survey"
	"github.com/sells-group/fitorfat/internal/translate"
)

// Placeholder messages.
const (
	NoSelectionMessage = "Drag over the map to select countries"
	ErrorMessage       = "Ups! Something's gone wrong... :S"
)

// Chart colours.
const (
	darkBackground = "#1f2630"
	accent         = "#05C3DD"
	gridColor      = "#5b5b5b"
)

// PlasmaR is Plotly's reversed Plasma sequence, used for the wind rose.
var PlasmaR = []string{
	"#f0f921", "#fdca26", "#fb9f3a", "#ed7953", "#d8576b",
	"#bd3786", "#9c179e", "#7201a8", "#46039f", "#0d0887",
}

// Context is the dashboard state a chart is drawn for.
type Context struct {
	Year int
	BMI  string
	// Selection holds the ISO3 codes picked on the map. nil means the user
	// has not selected anything yet.
	Selection *query.CountrySet
}

// BuildChart draws the secondary chart. It never fails: a missing selection
// or an unknown kind yields a placeholder figure.
func BuildChart(t *survey.Table, kind ChartKind, c Context) *Figure {
	if c.Selection == nil {
		return Placeholder(NoSelectionMessage)
	}

	switch kind {
	case BySex:
		return breakdownChart(t, c, breakdown{
			kind:   BySex,
			order:  translate.SexOrder,
			value:  func(r survey.Record) string { return r.Sex },
			filter: query.Filter{Sex: query.ExcludeTotal, Age: query.TotalOnly, Education: query.TotalOnly},
		})
	case ByAge:
		return breakdownChart(t, c, breakdown{
			kind:   ByAge,
			order:  translate.AgeOrder,
			value:  func(r survey.Record) string { return r.Age },
			filter: query.Filter{Sex: query.TotalOnly, Age: query.ExcludeTotal, Education: query.TotalOnly},
		})
	case ByEducation:
		return breakdownChart(t, c, breakdown{
			kind:   ByEducation,
			order:  translate.EducationOrder,
			value:  func(r survey.Record) string { return r.Education },
			filter: query.Filter{Sex: query.TotalOnly, Age: query.TotalOnly, Education: query.ExcludeTotal},
		})
	case Trend:
		return trendChart(t, c)
	case WindRose:
		return windRoseChart(t, c)
	default:
		return Placeholder(ErrorMessage)
	}
}

// Placeholder is the empty dark figure shown instead of a chart.
func Placeholder(message string) *Figure {
	return &Figure{
		Data: []types.Trace{&grob.Scatter{
			X: types.DataArray([]float64{0}),
			Y: types.DataArray([]float64{0}),
		}},
		Layout: &grob.Layout{
			Title:        &grob.LayoutTitle{Text: types.S(message)},
			PaperBgcolor: darkBackground,
			PlotBgcolor:  darkBackground,
			Font:         &grob.LayoutFont{Color: accent},
			Margin:       margin(75, 50, 100, 75),
		},
	}
}

// ChartTitle is the descriptive title of a chart kind.
func ChartTitle(kind ChartKind, bmi string, year int, years []int) string {
	switch kind {
	case BySex:
		return fmt.Sprintf("Percentage of people with '<b>%s</b>' BMI by sex (<b>%d</b>)", bmi, year)
	case ByAge:
		return fmt.Sprintf("Percentage of people with '<b>%s</b>' BMI by age (<b>%d</b>)", bmi, year)
	case ByEducation:
		return fmt.Sprintf("Percentage of people with '<b>%s</b>' BMI by education (<b>%d</b>)", bmi, year)
	case Trend:
		if len(years) == 0 {
			return fmt.Sprintf("Trend for people with '<b>%s</b>' BMI", bmi)
		}
		return fmt.Sprintf("Trend for people with '<b>%s</b>' BMI (%d-%d)", bmi, years[0], years[len(years)-1])
	case WindRose:
		return fmt.Sprintf("Wind rose of all BMIs for year <b>%d</b>", year)
	default:
		return ErrorMessage
	}
}

type breakdown struct {
	kind   ChartKind
	order  []string
	value  func(survey.Record) string
	filter query.Filter
}

func breakdownChart(t *survey.Table, c Context, b breakdown) *Figure {
	f := b.filter
	f.Year = query.Year(c.Year)
	f.BMI = c.BMI
	f.Countries = c.Selection
	rows := f.Apply(t)

	var bars []*grob.Bar
	for _, group := range groupOrder(rows.Records(), b.value, b.order) {
		var recs []survey.Record
		for _, r := range rows.Records() {
			if b.value(r) == group {
				recs = append(recs, r)
			}
		}
		sortByCountry(recs)

		values := make([]float64, 0, len(recs))
		names := make([]string, 0, len(recs))
		for _, r := range recs {
			values = append(values, r.Value)
			names = append(names, r.Country)
		}
		bars = append(bars, &grob.Bar{
			Name:        types.S(group),
			Orientation: grob.BarOrientationH,
			X:           types.DataArray(values),
			Y:           types.DataArray(names),
		})
	}
	if len(bars) > 0 {
		bars[0].Marker = &grob.BarMarker{
			Color:   solid(accent),
			Opacity: types.ArrayOKValue(types.N(1)),
			Line:    &grob.BarMarkerLine{Width: types.ArrayOKValue(types.N(0))},
		}
		bars[0].Textposition = types.ArrayOKValue(grob.BarTextpositionOutside)
	}

	data := make([]types.Trace, 0, len(bars))
	for _, bar := range bars {
		data = append(data, bar)
	}
	layout := darkLayout(ChartTitle(b.kind, c.BMI, c.Year, nil), len(rows.Countries()))
	layout.Barmode = grob.BarBarmodeGroup
	return &Figure{Data: data, Layout: layout}
}

// series is one country's line in the trend chart.
type series struct {
	country string
	years   []int
	values  []float64
}

func trendChart(t *survey.Table, c Context) *Figure {
	all := query.Totals()
	all.BMI = c.BMI
	years := all.Apply(t).Years()

	f := all
	f.Countries = c.Selection
	rows := f.Apply(t)

	recs := rows.Records()
	sortByCountry(recs)

	var lines []*series
	for _, r := range recs {
		if n := len(lines); n == 0 || lines[n-1].country != r.Country {
			lines = append(lines, &series{country: r.Country})
		}
		s := lines[len(lines)-1]
		s.years = append(s.years, r.Year)
		s.values = append(s.values, r.Value)
	}

	data := make([]types.Trace, 0, len(lines))
	for _, s := range lines {
		data = append(data, &grob.Scatter{
			Name:       types.S(s.country),
			Mode:       grob.ScatterModeLines,
			Stackgroup: types.S("1"),
			X:          types.DataArray(s.years),
			Y:          types.DataArray(s.values),
		})
	}
	return &Figure{Data: data, Layout: darkLayout(ChartTitle(Trend, c.BMI, c.Year, years), len(rows.Countries()))}
}

func windRoseChart(t *survey.Table, c Context) *Figure {
	f := query.Totals()
	f.Year = query.Year(c.Year)
	f.Countries = c.Selection
	rows := f.Apply(t)

	bmiOf := func(r survey.Record) string { return r.BMI }

	data := []types.Trace{}
	for i, bmi := range groupOrder(rows.Records(), bmiOf, translate.BMIOrder) {
		var recs []survey.Record
		for _, r := range rows.Records() {
			if r.BMI == bmi {
				recs = append(recs, r)
			}
		}
		sortByCountry(recs)

		values := make([]float64, 0, len(recs))
		names := make([]string, 0, len(recs))
		for _, r := range recs {
			values = append(values, r.Value)
			names = append(names, r.Country)
		}
		data = append(data, &grob.Barpolar{
			Name:   types.S(bmi),
			R:      types.DataArray(values),
			Theta:  types.DataArray(names),
			Marker: &grob.BarpolarMarker{Color: solid(PlasmaR[i%len(PlasmaR)])},
		})
	}

	title := ChartTitle(WindRose, c.BMI, c.Year, nil)
	return &Figure{
		Data: data,
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: types.S(title),
				Font: &grob.LayoutTitleFont{Color: accent},
			},
			Font:         &grob.LayoutFont{Color: accent},
			PaperBgcolor: darkBackground,
			Legend:       &grob.LayoutLegend{Orientation: grob.LayoutLegendOrientationV},
			Autosize:     types.True,
			Margin:       margin(75, 50, 100, 50),
		},
	}
}

// darkLayout is the shared styling of the cartesian charts. The descriptive
// title goes on the y axis; the headline counts the selected countries.
func darkLayout(title string, countries int) *grob.Layout {
	return &grob.Layout{
		Title: &grob.LayoutTitle{
			Text: types.S(fmt.Sprintf("<b>%d</b> countries selected", countries)),
			Font: &grob.LayoutTitleFont{Color: accent},
		},
		Font:         &grob.LayoutFont{Color: accent},
		PaperBgcolor: darkBackground,
		Xaxis: &grob.LayoutXaxis{
			Title:      &grob.LayoutXaxisTitle{Text: ""},
			Fixedrange: types.False,
			Gridcolor:  gridColor,
			Tickfont:   &grob.LayoutXaxisTickfont{Color: accent},
		},
		Yaxis: &grob.LayoutYaxis{
			Title:      &grob.LayoutYaxisTitle{Text: types.S(title)},
			Fixedrange: types.True,
			Gridcolor:  gridColor,
			Tickfont:   &grob.LayoutYaxisTickfont{Color: accent},
		},
		Hovermode: grob.LayoutHovermodeClosest,
		Legend:    &grob.LayoutLegend{Orientation: grob.LayoutLegendOrientationV},
		Autosize:  types.True,
		Margin:    margin(75, 50, 100, 50),
	}
}

// groupOrder lists the distinct values of key in rows, following order first
// and then any unexpected values alphabetically.
func groupOrder(rows []survey.Record, key func(survey.Record) string, order []string) []string {
	present := make(map[string]bool)
	for _, r := range rows {
		present[key(r)] = true
	}

	out := make([]string, 0, len(present))
	for _, v := range order {
		if present[v] {
			out = append(out, v)
			delete(present, v)
		}
	}
	var rest []string
	for v := range present {
		rest = append(rest, v)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func sortByCountry(recs []survey.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Country != recs[j].Country {
			return recs[i].Country < recs[j].Country
		}
		return recs[i].Year < recs[j].Year
	})
}
