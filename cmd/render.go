package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fitorfat/internal/dashboard"
	"github.com/sells-group/fitorfat/internal/figure"
	"github.com/sells-group/fitorfat/internal/query"
	"github.com/sells-group/fitorfat/internal/survey"
)

var (
	renderYear      int
	renderBMI       string
	renderChart     string
	renderCountries []string
	renderFormat    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map and chart for one dashboard state without starting the server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind := figure.ParseChartKind(renderChart)
		if !kind.Supported() {
			return eris.Errorf("render: unknown chart %q (want 1-5 or a kind name)", renderChart)
		}
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		tbl, _, err := loadTable(cmd.Context())
		if err != nil {
			return err
		}

		selection := countrySet(cmd.Flags().Changed("countries"), renderCountries)
		req := renderRequest(tbl, renderYear, renderBMI, kind, selection)

		return writeRender(cmd.OutOrStdout(), tbl, dashboard.FileBoundaries(cfg.Data.BoundariesPath), req, renderFormat)
	},
}

// renderRequest builds a dashboard state, filling a missing year or BMI
// with the dashboard defaults.
func renderRequest(tbl *survey.Table, year int, bmi string, kind figure.ChartKind, selection *query.CountrySet) dashboard.RenderRequest {
	defaults := dashboard.NewService(tbl, nil, nil).Options().Defaults
	if year == 0 {
		year = defaults.Year
	}
	if bmi == "" {
		bmi = defaults.BMI
	}

	req := dashboard.RenderRequest{Year: year, BMI: bmi, Chart: int(kind)}
	if selection != nil {
		req.Selection = &dashboard.Selection{Points: []dashboard.Point{}}
		for _, code := range selection.Codes() {
			req.Selection.Points = append(req.Selection.Points, dashboard.Point{Location: code})
		}
	}
	return req
}

// writeRender renders req and writes it as JSON, or as YAML without the map
// geometry.
func writeRender(w io.Writer, tbl *survey.Table, boundaries dashboard.BoundaryLoader, req dashboard.RenderRequest, format string) error {
	if format != "json" && format != "yaml" {
		return eris.Errorf("render: unknown format %q (want json or yaml)", format)
	}

	body, err := dashboard.NewService(tbl, boundaries, nil).Render(req)
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(body))
		return eris.Wrap(err, "render: write")
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return eris.Wrap(err, "render: decode response")
	}
	dropGeometry(doc["map"])

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "render: encode yaml")
	}
	return eris.Wrap(enc.Close(), "render: encode yaml")
}

// dropGeometry removes the boundary polygons from a decoded map figure.
func dropGeometry(fig any) {
	m, ok := fig.(map[string]any)
	if !ok {
		return
	}
	traces, _ := m["data"].([]any)
	for _, tr := range traces {
		if t, ok := tr.(map[string]any); ok {
			delete(t, "geojson")
		}
	}
}

func init() {
	renderCmd.Flags().IntVar(&renderYear, "year", 0, "survey year (default: earliest)")
	renderCmd.Flags().StringVar(&renderBMI, "bmi", "", "BMI category (default: first alphabetically)")
	renderCmd.Flags().StringVar(&renderChart, "chart", "1", "chart kind: 1-5 or by-sex, by-age, by-education, trend, wind-rose")
	renderCmd.Flags().StringSliceVar(&renderCountries, "countries", nil, "selected ISO3 codes, e.g. DEU,FRA (unset: no selection)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(renderCmd)
}
