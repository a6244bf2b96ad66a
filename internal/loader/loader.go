// Package loader reads the EHIS BMI source file and normalises it into a
// survey.Table.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fitorfat/internal/fetcher"
	"github.com/sells-group/fitorfat/internal/survey"
	"github.com/sells-group/fitorfat/internal/translate"
)

var (
	// ErrSourceNotFound is returned when the source path is not a regular file.
	ErrSourceNotFound = errors.New("loader: source file not found")
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("loader: missing required column")
	// ErrValueOutOfRange is returned for a percentage outside [0, 100].
	ErrValueOutOfRange = errors.New("loader: value out of range")
)

// RequiredColumns are the source columns the normaliser reads. Any other
// column (DATAFLOW, LAST UPDATE, freq, unit, OBS_FLAG) is ignored.
var RequiredColumns = []string{"geo", "sex", "age", "isced11", "bmi", "TIME_PERIOD", "OBS_VALUE"}

// Options configures Load.
type Options struct {
	// Sheet selects the worksheet of an .xlsx source. Empty reads the first one.
	Sheet string
}

// Stats counts what happened to the source rows.
type Stats struct {
	RowsRead            int `json:"rows_read" yaml:"rows_read"`
	DroppedMissingValue int `json:"dropped_missing_value" yaml:"dropped_missing_value"`
	DroppedAggregate    int `json:"dropped_aggregate" yaml:"dropped_aggregate"`
	DroppedAgeBracket   int `json:"dropped_age_bracket" yaml:"dropped_age_bracket"`
	Kept                int `json:"kept" yaml:"kept"`
}

// Load reads and normalises the source at path. Any unknown code or country
// aborts the load.
func Load(ctx context.Context, path string, opts Options) (*survey.Table, error) {
	t, _, err := LoadWithStats(ctx, path, opts)
	return t, err
}

// LoadWithStats is Load plus the per-step row counters.
func LoadWithStats(ctx context.Context, path string, opts Options) (*survey.Table, Stats, error) {
	var stats Stats

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stats, eris.Wrapf(ErrSourceNotFound, "loader: %s", path)
		}
		return nil, stats, eris.Wrapf(err, "loader: stat %s", path)
	}
	if info.IsDir() {
		return nil, stats, eris.Wrapf(ErrSourceNotFound, "loader: %s is a directory", path)
	}

	log := zap.L().With(zap.String("component", "loader"), zap.String("path", path))

	var (
		cols    columns
		records []survey.Record
		line    int
	)
	err = eachRow(ctx, path, opts, func(row []string) error {
		line++
		if line == 1 {
			c, err := mapColumns(row)
			if err != nil {
				return err
			}
			cols = c
			return nil
		}

		stats.RowsRead++
		rec, keep, err := normalize(row, cols, &stats)
		if err != nil {
			return eris.Wrapf(err, "loader: line %d", line)
		}
		if keep {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	if line == 0 {
		return nil, stats, eris.Wrapf(ErrMissingColumn, "loader: %s has no header", path)
	}

	stats.Kept = len(records)
	log.Info("survey data loaded",
		zap.Int("rows_read", stats.RowsRead),
		zap.Int("dropped_missing_value", stats.DroppedMissingValue),
		zap.Int("dropped_aggregate", stats.DroppedAggregate),
		zap.Int("dropped_age_bracket", stats.DroppedAgeBracket),
		zap.Int("kept", stats.Kept),
	)

	return survey.NewTable(records), stats, nil
}

// eachRow feeds every source row, header first, to fn.
func eachRow(ctx context.Context, path string, opts Options, fn func([]string) error) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: opts.Sheet})
		if err != nil {
			return eris.Wrap(err, "loader: read xlsx")
		}
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "loader: context cancelled")
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "loader: open source")
	}
	defer f.Close() //nolint:errcheck

	// Stop the reader goroutine if fn fails part way through.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		Delimiter: fetcher.DelimiterFor(path),
		TrimSpace: true,
	})
	for row := range rowCh {
		if err := fn(row); err != nil {
			cancel()
			for range rowCh {
			}
			return err
		}
	}
	if err := <-errCh; err != nil {
		return eris.Wrap(err, "loader: read csv")
	}
	return nil
}

// columns holds the index of every required column.
type columns map[string]int

func mapColumns(header []string) (columns, error) {
	idx := make(columns, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, want := range RequiredColumns {
		if _, ok := idx[want]; !ok {
			return nil, eris.Wrapf(ErrMissingColumn, "loader: %q", want)
		}
	}
	return idx, nil
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// normalize applies the drop rules and translations to one row. keep is false
// when the row is filtered out; err is set for data that can never be valid.
func normalize(row []string, cols columns, stats *Stats) (survey.Record, bool, error) {
	var rec survey.Record

	value, ok := parseValue(cols.get(row, "OBS_VALUE"))
	if !ok {
		stats.DroppedMissingValue++
		return rec, false, nil
	}

	geo := cols.get(row, "geo")
	if isAggregateGeo(geo) {
		stats.DroppedAggregate++
		return rec, false, nil
	}

	ageCode := cols.get(row, "age")
	if !translate.Ages.Has(ageCode) {
		stats.DroppedAgeBracket++
		return rec, false, nil
	}

	if value < 0 || value > 100 {
		return rec, false, eris.Wrapf(ErrValueOutOfRange, "loader: %s %v", geo, value)
	}

	yearStr := cols.get(row, "TIME_PERIOD")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return rec, false, eris.Wrapf(err, "loader: parse TIME_PERIOD %q", yearStr)
	}

	var terr error
	tr := func(code string, table translate.Table) string {
		if terr != nil {
			return ""
		}
		label, err := translate.Translate(code, table)
		if err != nil {
			terr = err
		}
		return label
	}

	rec = survey.Record{
		Year:      year,
		Sex:       tr(cols.get(row, "sex"), translate.Sexes),
		BMI:       tr(cols.get(row, "bmi"), translate.BMICategories),
		Education: tr(cols.get(row, "isced11"), translate.Education),
		Age:       tr(ageCode, translate.Ages),
		Country:   tr(geo, translate.Countries),
		Value:     value,
	}
	if terr != nil {
		return rec, false, eris.Wrap(terr, "loader: translate")
	}

	rec.Alpha3, err = translate.Alpha3(rec.Country)
	if err != nil {
		return rec, false, eris.Wrap(err, "loader: derive alpha3")
	}

	return rec, true, nil
}

// parseValue parses OBS_VALUE. Empty cells and Eurostat's ":" placeholder
// count as missing.
func parseValue(s string) (float64, bool) {
	if s == "" || s == ":" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func isAggregateGeo(code string) bool {
	for _, agg := range translate.AggregateGeoCodes {
		if code == agg {
			return true
		}
	}
	return false
}
