package figure

import (
	"fmt"
	"sort"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/MetalBlueberry/go-plotly/pkg/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/fitorfat/internal/geo"
	"github.com/sells-group/fitorfat/internal/query"
	"github.com/sells-group/fitorfat/internal/survey"
)

// DefaultColorScale runs from light to dark green.
var DefaultColorScale = []string{
	"#69e7c0",
	"#59dab2",
	"#45d0a5",
	"#31c194",
	"#2bb489",
	"#25a27b",
	"#1e906d",
	"#188463",
	"#157658",
	"#11684d",
	"#10523e",
}

// DefaultOpacity is the opacity of the map polygons.
const DefaultOpacity = 0.8

// MapHeight is the fixed height of the map in pixels.
const MapHeight = 630

const mapBackground = "#F4F4F8"

// MapTitle is the heading shown above the map.
func MapTitle(bmi string, year int) string {
	// A Caser is stateful; one per call keeps MapTitle safe for concurrent use.
	lower := cases.Lower(language.English)
	return fmt.Sprintf("This heatmap shows the percentage of '%s' people for each country for the year %d",
		lower.String(bmi), year)
}

// BuildMap draws the choropleth of the Total/Total/Total slice for one BMI
// category and year, one location per country ordered by ISO3 code.
// boundaries may be nil, in which case the figure carries no geometry.
func BuildMap(t *survey.Table, bmi string, year int, boundaries *geo.Collection) *Figure {
	f := query.Totals()
	f.BMI = bmi
	f.Year = query.Year(year)
	rows := f.Apply(t)

	recs := rows.Records()
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Alpha3 < recs[j].Alpha3 })

	locations := make([]string, 0, len(recs))
	values := make([]float64, 0, len(recs))
	hover := make([]types.StringType, 0, len(recs))
	for _, r := range recs {
		locations = append(locations, r.Alpha3)
		values = append(values, r.Value)
		hover = append(hover, types.S(r.Country))
	}

	tr := &grob.Choropleth{
		Featureidkey: types.S("properties." + geo.ISOProperty),
		Locations:    types.DataArray(locations),
		Z:            types.DataArray(values),
		Hovertext:    types.ArrayOKArray(hover...),
		Colorscale:   colorScale(DefaultColorScale),
		Marker:       &grob.ChoroplethMarker{Opacity: types.ArrayOKValue(types.N(DefaultOpacity))},
	}
	if lo, hi, ok := rows.ValueRange(); ok {
		tr.Zmin, tr.Zmax = types.N(lo), types.N(hi)
	}
	if boundaries != nil {
		tr.Geojson = boundaries.Only(locations)
	}

	return &Figure{
		Data: []types.Trace{tr},
		Layout: &grob.Layout{
			Margin:       margin(0, 0, 0, 0),
			Height:       types.N(MapHeight),
			PaperBgcolor: mapBackground,
			Dragmode:     grob.LayoutDragmodeSelect,
			Geo: &grob.LayoutGeo{
				Fitbounds: grob.LayoutGeoFitboundsLocations,
				Visible:   types.True,
			},
		},
	}
}
