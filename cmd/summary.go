package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fitorfat/internal/loader"
	"github.com/sells-group/fitorfat/internal/survey"
)

var summaryFormat string

// summary describes a loaded extract.
type summary struct {
	Source        string       `json:"source" yaml:"source"`
	Records       int          `json:"records" yaml:"records"`
	Countries     []string     `json:"countries" yaml:"countries"`
	Years         []int        `json:"years" yaml:"years"`
	BMICategories []string     `json:"bmi_categories" yaml:"bmi_categories"`
	MinValue      float64      `json:"min_value" yaml:"min_value"`
	MaxValue      float64      `json:"max_value" yaml:"max_value"`
	Stats         loader.Stats `json:"stats" yaml:"stats"`
}

func newSummary(source string, t *survey.Table, stats loader.Stats) summary {
	s := summary{
		Source:        source,
		Records:       t.Len(),
		Countries:     t.Countries(),
		Years:         t.Years(),
		BMICategories: t.BMICategories(),
		Stats:         stats,
	}
	if lo, hi, ok := t.ValueRange(); ok {
		s.MinValue, s.MaxValue = lo, hi
	}
	return s
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load the survey extract and describe what it contains",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("summary"); err != nil {
			return err
		}

		tbl, stats, err := loadTable(cmd.Context())
		if err != nil {
			return err
		}
		return writeSummary(cmd.OutOrStdout(), newSummary(cfg.Data.SourcePath, tbl, stats), summaryFormat)
	},
}

func writeSummary(w io.Writer, s summary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(s), "summary: encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(s); err != nil {
			return eris.Wrap(err, "summary: encode yaml")
		}
		return eris.Wrap(enc.Close(), "summary: encode yaml")
	case "text":
		return writeSummaryText(w, s)
	default:
		return eris.Errorf("summary: unknown format %q (want text, json or yaml)", format)
	}
}

func writeSummaryText(w io.Writer, s summary) error {
	title := cases.Title(language.English)
	label := func(key string) string {
		return title.String(strings.ReplaceAll(key, "_", " "))
	}

	years := make([]string, len(s.Years))
	for i, y := range s.Years {
		years[i] = fmt.Sprint(y)
	}

	lines := [][2]string{
		{label("source"), s.Source},
		{label("records"), fmt.Sprint(s.Records)},
		{label("countries"), fmt.Sprintf("%d (%s)", len(s.Countries), strings.Join(s.Countries, ", "))},
		{label("years"), strings.Join(years, ", ")},
		{"BMI Categories", strings.Join(s.BMICategories, ", ")},
		{label("value_range"), fmt.Sprintf("%.1f - %.1f", s.MinValue, s.MaxValue)},
		{label("rows_read"), fmt.Sprint(s.Stats.RowsRead)},
		{label("dropped_missing_value"), fmt.Sprint(s.Stats.DroppedMissingValue)},
		{label("dropped_aggregate"), fmt.Sprint(s.Stats.DroppedAggregate)},
		{label("dropped_age_bracket"), fmt.Sprint(s.Stats.DroppedAgeBracket)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-22s %s\n", l[0]+":", l[1]); err != nil {
			return eris.Wrap(err, "summary: write")
		}
	}
	return nil
}

func init() {
	summaryCmd.Flags().StringVar(&summaryFormat, "format", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(summaryCmd)
}
