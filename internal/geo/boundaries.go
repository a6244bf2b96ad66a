// Package geo loads country boundary polygons for the choropleth map.
package geo

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ISOProperty is the feature property the map matches ISO3 codes against.
const ISOProperty = "iso_a3"

// Natural Earth marks a few disputed countries (France, Norway) with -99 in
// iso_a3 and keeps the real code in adm0_a3.
const (
	fallbackISOProperty = "adm0_a3"
	missingISO          = "-99"
)

// Collection is an ordered set of country boundaries, each tagged with its
// ISO3 code under ISOProperty.
type Collection struct {
	fc      *geojson.FeatureCollection
	version string
}

// Decode reads a GeoJSON FeatureCollection. The collection's Version is a
// digest of the bytes read.
func Decode(r io.Reader) (*Collection, error) {
	h := xxhash.New()
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(io.TeeReader(r, h)).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "geo: decode geojson")
	}
	c := newCollection(fc.Features)
	c.version = formatDigest(h.Sum64())
	return c, nil
}

func formatDigest(sum uint64) string {
	return strconv.FormatUint(sum, 16)
}

func newCollection(features []*geojson.Feature) *Collection {
	kept := make([]*geojson.Feature, 0, len(features))
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if f.Properties == nil {
			f.Properties = make(map[string]interface{})
		}
		if iso := isoOf(f); iso != "" {
			f.Properties[ISOProperty] = iso
		}
		kept = append(kept, f)
	}
	return &Collection{fc: &geojson.FeatureCollection{Features: kept}}
}

func isoOf(f *geojson.Feature) string {
	iso := stringProp(f.Properties, ISOProperty)
	if iso == "" || iso == missingISO {
		iso = stringProp(f.Properties, fallbackISOProperty)
	}
	if iso == missingISO {
		return ""
	}
	return strings.ToUpper(iso)
}

func stringProp(props map[string]interface{}, key string) string {
	for k, v := range props {
		if !strings.EqualFold(k, key) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return ""
}

// Len returns the number of features.
func (c *Collection) Len() int {
	if c == nil || c.fc == nil {
		return 0
	}
	return len(c.fc.Features)
}

// Version identifies the source data. Two collections read from identical
// bytes share a version. A nil collection reports "-".
func (c *Collection) Version() string {
	if c == nil {
		return "-"
	}
	return c.version
}

// Codes returns the distinct ISO3 codes present, sorted.
func (c *Collection) Codes() []string {
	if c.Len() == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, f := range c.fc.Features {
		iso, _ := f.Properties[ISOProperty].(string)
		if iso == "" || seen[iso] {
			continue
		}
		seen[iso] = true
		out = append(out, iso)
	}
	sort.Strings(out)
	return out
}

// Only returns the features whose ISO3 code is in codes, in file order.
func (c *Collection) Only(codes []string) *Collection {
	want := make(map[string]bool, len(codes))
	for _, code := range codes {
		want[strings.ToUpper(code)] = true
	}
	var kept []*geojson.Feature
	if c.Len() > 0 {
		for _, f := range c.fc.Features {
			iso, _ := f.Properties[ISOProperty].(string)
			if want[iso] {
				kept = append(kept, f)
			}
		}
	}
	return &Collection{fc: &geojson.FeatureCollection{Features: kept}}
}

// MarshalJSON encodes the collection as a GeoJSON FeatureCollection.
func (c *Collection) MarshalJSON() ([]byte, error) {
	if c == nil || c.fc == nil {
		return (&geojson.FeatureCollection{}).MarshalJSON()
	}
	return c.fc.MarshalJSON()
}
