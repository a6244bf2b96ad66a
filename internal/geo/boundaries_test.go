package geo

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const europe = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Germany", "iso_a3": "DEU"},
     "geometry": {"type": "Polygon", "coordinates": [[[6,47],[15,47],[15,55],[6,55],[6,47]]]}},
    {"type": "Feature", "properties": {"name": "France", "iso_a3": "-99", "adm0_a3": "FRA"},
     "geometry": {"type": "Polygon", "coordinates": [[[-5,42],[8,42],[8,51],[-5,51],[-5,42]]]}},
    {"type": "Feature", "properties": {"name": "Spain", "ISO_A3": "esp"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[-9,36],[3,36],[3,43],[-9,43],[-9,36]]]]}}
  ]
}`

func writeGeoJSON(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "europe.geo.json")
	require.NoError(t, os.WriteFile(path, []byte(europe), 0o644))
	return path
}

func TestDecode(t *testing.T) {
	c, err := Decode(strings.NewReader(europe))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"DEU", "ESP", "FRA"}, c.Codes())
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)
}

func TestOnly(t *testing.T) {
	c, err := Decode(strings.NewReader(europe))
	require.NoError(t, err)

	sub := c.Only([]string{"fra", "DEU", "ITA"})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, []string{"DEU", "FRA"}, sub.Codes())
	assert.Equal(t, 3, c.Len(), "Only must not shrink the receiver")

	assert.Equal(t, 0, c.Only(nil).Len())
}

func TestMarshalJSON(t *testing.T) {
	c, err := Decode(strings.NewReader(europe))
	require.NoError(t, err)

	data, err := json.Marshal(c.Only([]string{"FRA"}))
	require.NoError(t, err)

	var out struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
			Geometry   struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "FeatureCollection", out.Type)
	require.Len(t, out.Features, 1)
	assert.Equal(t, "FRA", out.Features[0].Properties[ISOProperty])
	assert.Equal(t, "Polygon", out.Features[0].Geometry.Type)
}

func TestNilCollection(t *testing.T) {
	var c *Collection
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Codes())
	assert.Equal(t, "-", c.Version())
}

func TestVersion_TracksContent(t *testing.T) {
	a, err := Decode(strings.NewReader(europe))
	require.NoError(t, err)
	b, err := Decode(strings.NewReader(europe))
	require.NoError(t, err)
	assert.NotEmpty(t, a.Version())
	assert.Equal(t, a.Version(), b.Version())

	path := writeGeoJSON(t)
	before, err := Load(path)
	require.NoError(t, err)

	trimmed := strings.Replace(europe, `"Germany"`, `"Deutschland"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(trimmed), 0o644))
	after, err := Load(path)
	require.NoError(t, err)
	assert.NotEqual(t, before.Version(), after.Version())
}

func TestLoad_GeoJSON(t *testing.T) {
	c, err := Load(writeGeoJSON(t))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.geo.json"))
	assert.Error(t, err)
}

func writeShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "countries.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("ISO_A3", 3),
		shp.StringField("NAME", 32),
	}))

	shapes := []struct {
		iso, name string
		ring      []shp.Point
	}{
		{"PRT", "Portugal", []shp.Point{{X: -9, Y: 37}, {X: -9, Y: 42}, {X: -6, Y: 42}, {X: -6, Y: 37}, {X: -9, Y: 37}}},
		{"MLT", "Malta", []shp.Point{{X: 14, Y: 35}, {X: 14, Y: 36}, {X: 15, Y: 36}, {X: 15, Y: 35}, {X: 14, Y: 35}}},
	}
	for _, s := range shapes {
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{s.ring}))
		row := int(w.Write(&poly))
		require.NoError(t, w.WriteAttribute(row, 0, s.iso))
		require.NoError(t, w.WriteAttribute(row, 1, s.name))
	}
	w.Close()

	// The writer names its attribute table "<base>dbf"; readers expect "<base>.dbf".
	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	return path
}

func TestLoad_Shapefile(t *testing.T) {
	path := writeShapefile(t, t.TempDir())

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"MLT", "PRT"}, c.Codes())
	assert.NotEmpty(t, c.Version())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"MultiPolygon"`)
	assert.Contains(t, string(data), `"Portugal"`)
}

func TestLoad_ZippedShapefile(t *testing.T) {
	src := t.TempDir()
	shpPath := writeShapefile(t, src)
	base := strings.TrimSuffix(shpPath, ".shp")

	zipPath := filepath.Join(t.TempDir(), "countries.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		in, err := os.Open(base + ext)
		require.NoError(t, err)
		out, err := zw.Create("ne_countries/countries" + ext)
		require.NoError(t, err)
		_, err = io.Copy(out, in)
		require.NoError(t, err)
		require.NoError(t, in.Close())
	}
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	c, err := Load(zipPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"MLT", "PRT"}, c.Codes())
}

func TestPolygonToMultiPolygon(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: -80.0, Y: 25.0}, {X: -80.0, Y: 26.0}, {X: -79.0, Y: 26.0}, {X: -79.0, Y: 25.0}, {X: -80.0, Y: 25.0},
			{X: -81.0, Y: 26.0}, {X: -81.0, Y: 27.0}, {X: -80.0, Y: 27.0}, {X: -80.0, Y: 26.0}, {X: -81.0, Y: 26.0},
		},
	}
	g := polygonToMultiPolygon(poly)
	require.NotNil(t, g)
	assert.Equal(t, 20, len(g.FlatCoords()))

	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
	assert.Nil(t, shapeToGeom(&shp.Point{X: 1, Y: 2}))
}
