package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fitorfat/internal/loader"
	"github.com/sells-group/fitorfat/internal/query"
	"github.com/sells-group/fitorfat/internal/survey"
)

// loadTable reads the configured survey extract.
func loadTable(ctx context.Context) (*survey.Table, loader.Stats, error) {
	log := zap.L().With(zap.String("component", "loader"))

	tbl, stats, err := loader.LoadWithStats(ctx, cfg.Data.SourcePath, loader.Options{Sheet: cfg.Data.Sheet})
	if err != nil {
		return nil, stats, eris.Wrapf(err, "load %s", cfg.Data.SourcePath)
	}

	log.Info("survey loaded",
		zap.String("path", cfg.Data.SourcePath),
		zap.Int("rows_read", stats.RowsRead),
		zap.Int("kept", stats.Kept),
		zap.Int("dropped_missing_value", stats.DroppedMissingValue),
		zap.Int("dropped_aggregate", stats.DroppedAggregate),
		zap.Int("dropped_age_bracket", stats.DroppedAgeBracket),
	)
	return tbl, stats, nil
}

// countrySet turns a --countries flag into a selection. An unset flag means
// no selection.
func countrySet(changed bool, codes []string) *query.CountrySet {
	if !changed {
		return nil
	}
	var clean []string
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	return query.NewCountrySet(clean...)
}
