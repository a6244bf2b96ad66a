// Package dashboard serves the BMI dashboard: the render functions behind the
// map and chart, their HTTP API and the embedded page.
package dashboard

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fitorfat/internal/figure"
	"github.com/sells-group/fitorfat/internal/geo"
	"github.com/sells-group/fitorfat/internal/query"
	"github.com/sells-group/fitorfat/internal/survey"
)

// BoundaryLoader reads the country boundaries for the map.
type BoundaryLoader func() (*geo.Collection, error)

// FileBoundaries returns a BoundaryLoader that reads path on every call.
func FileBoundaries(path string) BoundaryLoader {
	return func() (*geo.Collection, error) {
		return geo.Load(path)
	}
}

// Point is one selected map feature.
type Point struct {
	Location string `json:"location" yaml:"location"`
}

// Selection is the map's selectedData payload.
type Selection struct {
	Points []Point `json:"points" yaml:"points"`
}

// Countries converts the selection to a country set. A nil selection means
// nothing has been selected and yields nil.
func (s *Selection) Countries() *query.CountrySet {
	if s == nil {
		return nil
	}
	codes := make([]string, 0, len(s.Points))
	for _, p := range s.Points {
		codes = append(codes, p.Location)
	}
	return query.NewCountrySet(codes...)
}

// RenderRequest is the full dashboard state.
type RenderRequest struct {
	Year      int        `json:"year" yaml:"year"`
	BMI       string     `json:"bmi" yaml:"bmi"`
	Chart     int        `json:"chart" yaml:"chart"`
	Selection *Selection `json:"selection,omitempty" yaml:"selection,omitempty"`
}

// RenderResponse is everything the page redraws after an interaction.
type RenderResponse struct {
	MapTitle string         `json:"map_title" yaml:"map_title"`
	Map      *figure.Figure `json:"map" yaml:"map"`
	Chart    *figure.Figure `json:"chart" yaml:"chart"`
}

// MapResponse is the body of GET /api/map.
type MapResponse struct {
	Title  string         `json:"title" yaml:"title"`
	Figure *figure.Figure `json:"figure" yaml:"figure"`
}

// Render recomputes the map and chart for a dashboard state. It depends only
// on its arguments.
func Render(t *survey.Table, boundaries *geo.Collection, req RenderRequest) RenderResponse {
	return RenderResponse{
		MapTitle: figure.MapTitle(req.BMI, req.Year),
		Map:      figure.BuildMap(t, req.BMI, req.Year, boundaries),
		Chart: figure.BuildChart(t, figure.KindOf(req.Chart), figure.Context{
			Year:      req.Year,
			BMI:       req.BMI,
			Selection: req.Selection.Countries(),
		}),
	}
}

// ChartOption is one entry of the chart dropdown.
type ChartOption struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// Defaults is the initial dashboard state.
type Defaults struct {
	Year  int    `json:"year" yaml:"year"`
	BMI   string `json:"bmi" yaml:"bmi"`
	Chart int    `json:"chart" yaml:"chart"`
}

// Options lists what the controls can select.
type Options struct {
	Years         []int         `json:"years" yaml:"years"`
	BMICategories []string      `json:"bmi_categories" yaml:"bmi_categories"`
	Charts        []ChartOption `json:"charts" yaml:"charts"`
	Defaults      Defaults      `json:"defaults" yaml:"defaults"`
}

// Service renders dashboard responses over a loaded table, caching encoded
// bodies.
type Service struct {
	table      *survey.Table
	boundaries BoundaryLoader
	cache      *Cache
	options    Options
}

// NewService creates a Service. cache may be nil.
func NewService(t *survey.Table, boundaries BoundaryLoader, cache *Cache) *Service {
	if cache == nil {
		cache = NewCache(0, 0)
	}
	return &Service{
		table:      t,
		boundaries: boundaries,
		cache:      cache,
		options:    buildOptions(t),
	}
}

func buildOptions(t *survey.Table) Options {
	opts := Options{
		Years:         t.Years(),
		BMICategories: t.BMICategories(),
		Defaults:      Defaults{Chart: int(figure.BySex)},
	}
	for _, k := range figure.Kinds {
		opts.Charts = append(opts.Charts, ChartOption{Label: k.Label(), Value: int(k)})
	}
	if len(opts.Years) > 0 {
		opts.Defaults.Year = opts.Years[0]
	}
	if len(opts.BMICategories) > 0 {
		opts.Defaults.BMI = opts.BMICategories[0]
	}
	return opts
}

// Options returns the control options and defaults.
func (s *Service) Options() Options {
	return s.options
}

// Cache returns the response cache.
func (s *Service) Cache() *Cache {
	return s.cache
}

// withDefaults fills in a missing year or BMI.
func (s *Service) withDefaults(year int, bmi string) (int, string) {
	if year == 0 {
		year = s.options.Defaults.Year
	}
	if bmi == "" {
		bmi = s.options.Defaults.BMI
	}
	return year, bmi
}

func (s *Service) loadBoundaries() (*geo.Collection, error) {
	if s.boundaries == nil {
		return nil, nil
	}
	c, err := s.boundaries()
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load boundaries")
	}
	return c, nil
}

// Map returns the encoded MapResponse for a BMI category and year. The
// boundaries are read on every call and their version is part of the cache key.
func (s *Service) Map(bmi string, year int) ([]byte, error) {
	year, bmi = s.withDefaults(year, bmi)
	boundaries, err := s.loadBoundaries()
	if err != nil {
		return nil, err
	}
	key := cacheKey("map", bmi, strconv.Itoa(year), boundaries.Version())
	return s.cached(key, func() any {
		return MapResponse{
			Title:  figure.MapTitle(bmi, year),
			Figure: figure.BuildMap(s.table, bmi, year, boundaries),
		}
	})
}

// Chart returns the encoded chart figure. A nil selection draws the
// placeholder.
func (s *Service) Chart(kind figure.ChartKind, bmi string, year int, selection *query.CountrySet) ([]byte, error) {
	year, bmi = s.withDefaults(year, bmi)
	key := cacheKey("chart", strconv.Itoa(int(kind)), bmi, strconv.Itoa(year), selectionKey(selection))
	return s.cached(key, func() any {
		return figure.BuildChart(s.table, kind, figure.Context{Year: year, BMI: bmi, Selection: selection})
	})
}

// Render returns the encoded RenderResponse for a dashboard state. A zero
// chart falls back to the default chart like the year and BMI do.
func (s *Service) Render(req RenderRequest) ([]byte, error) {
	req.Year, req.BMI = s.withDefaults(req.Year, req.BMI)
	if req.Chart == 0 {
		req.Chart = s.options.Defaults.Chart
	}
	boundaries, err := s.loadBoundaries()
	if err != nil {
		return nil, err
	}
	key := cacheKey("render", strconv.Itoa(req.Chart), req.BMI, strconv.Itoa(req.Year),
		selectionKey(req.Selection.Countries()), boundaries.Version())
	return s.cached(key, func() any {
		return Render(s.table, boundaries, req)
	})
}

func (s *Service) cached(key string, build func() any) ([]byte, error) {
	if data := s.cache.Get(key); data != nil {
		return data, nil
	}

	data, err := encode(build())
	if err != nil {
		return nil, err
	}

	s.cache.Put(key, data)
	zap.L().Debug("dashboard: rendered", zap.String("key", key), zap.Int("bytes", len(data)))
	return data, nil
}

// encode marshals v without HTML escaping; titles carry <b> markup for Plotly.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, eris.Wrap(err, "dashboard: encode response")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// selectionKey is the canonical form of a selection: "-" for none, otherwise
// the sorted codes.
func selectionKey(set *query.CountrySet) string {
	if set == nil {
		return "-"
	}
	return "[" + strings.Join(set.Codes(), ",") + "]"
}
