//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/fitorfat/internal/config"
)

const fixtureCSV = `DATAFLOW,LAST UPDATE,freq,unit,bmi,isced11,sex,age,geo,TIME_PERIOD,OBS_VALUE,OBS_FLAG
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,T,TOTAL,DE,2014,16.2,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,F,TOTAL,DE,2014,14.8,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,M,TOTAL,DE,2014,17.6,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,T,TOTAL,DE,2019,19.0,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,T,TOTAL,FR,2014,15.3,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,F,TOTAL,FR,2014,15.7,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI18P5-24,TOTAL,T,TOTAL,FR,2014,48.0,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,T,TOTAL,EU28,2014,15.9,
ESTAT:HLTH_EHIS_BM1E(1.0),04/06/21 23:00:00,A,PC,BMI_GE30,TOTAL,T,TOTAL,UK,2014,:,
`

const fixtureGeoJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"iso_a3":"DEU","name":"Germany"},"geometry":{"type":"Polygon","coordinates":[[[6,47],[15,47],[15,55],[6,55],[6,47]]]}},
 {"type":"Feature","properties":{"iso_a3":"FRA","name":"France"},"geometry":{"type":"Polygon","coordinates":[[[-5,42],[8,42],[8,51],[-5,51],[-5,42]]]}},
 {"type":"Feature","properties":{"iso_a3":"ESP","name":"Spain"},"geometry":{"type":"Polygon","coordinates":[[[-9,36],[3,36],[3,43],[-9,43],[-9,36]]]}}
]}`

// useFixtures writes the survey and boundary fixtures and points the global
// config at them for the duration of the test.
func useFixtures(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	source := filepath.Join(dir, "hlth_ehis_bm1e_linear.csv")
	require.NoError(t, os.WriteFile(source, []byte(fixtureCSV), 0o644))
	boundaries := filepath.Join(dir, "europe.geo.json")
	require.NoError(t, os.WriteFile(boundaries, []byte(fixtureGeoJSON), 0o644))

	prev := cfg
	t.Cleanup(func() { cfg = prev })

	cfg = &config.Config{
		Data: config.DataConfig{SourcePath: source, BoundariesPath: boundaries},
		Server: config.ServerConfig{
			Port:           8050,
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   100,
			RateLimitBurst: 100,
		},
		Cache: config.CacheConfig{MaxEntries: 16, TTLMinutes: 5},
		Log:   config.LogConfig{Level: "info", Format: "json"},
	}
	return cfg
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

// plotFigure is the part of an encoded Plotly figure the tests read.
type plotFigure struct {
	Data []struct {
		Type      string   `json:"type" yaml:"type"`
		Locations []string `json:"locations" yaml:"locations"`
	} `json:"data" yaml:"data"`
	Layout struct {
		Title struct {
			Text string `json:"text" yaml:"text"`
		} `json:"title" yaml:"title"`
	} `json:"layout" yaml:"layout"`
}
