package geo

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Load reads boundaries from path. A .shp file or a .zip holding one is read
// as an ESRI shapefile; anything else is parsed as GeoJSON.
func Load(path string) (*Collection, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("path", path))

	var (
		c   *Collection
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		c, err = loadShapefile(path)
	case ".zip":
		c, err = loadZippedShapefile(path)
	default:
		c, err = loadGeoJSON(path)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("boundaries loaded", zap.Int("features", c.Len()))
	return c, nil
}

func loadGeoJSON(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "geo: open boundaries")
	}
	defer f.Close() //nolint:errcheck

	return Decode(f)
}

func loadShapefile(path string) (*Collection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	isoIdx := fieldIndex(reader, "ISO_A3")
	if isoIdx < 0 {
		return nil, eris.Errorf("geo: shapefile %s has no ISO_A3 field", path)
	}
	admIdx := fieldIndex(reader, "ADM0_A3")
	nameIdx := fieldIndex(reader, "NAME")

	var features []*geojson.Feature
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		props := map[string]interface{}{
			ISOProperty: attribute(reader, isoIdx),
		}
		if admIdx >= 0 {
			props[fallbackISOProperty] = attribute(reader, admIdx)
		}
		if nameIdx >= 0 {
			props["name"] = attribute(reader, nameIdx)
		}
		features = append(features, &geojson.Feature{Geometry: g, Properties: props})
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped non-polygon shapes", zap.String("path", path), zap.Int("skipped", skipped))
	}
	c := newCollection(features)
	c.version, err = fileDigest(path, strings.TrimSuffix(path, filepath.Ext(path))+".dbf")
	if err != nil {
		return nil, err
	}
	return c, nil
}

// fileDigest hashes the contents of paths in order. Missing files are
// skipped.
func fileDigest(paths ...string) (string, error) {
	h := xxhash.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", eris.Wrapf(err, "geo: open %s", p)
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", eris.Wrapf(err, "geo: read %s", p)
		}
	}
	return formatDigest(h.Sum64()), nil
}

// loadZippedShapefile extracts the archive into a temporary directory and
// reads the first .shp inside it.
func loadZippedShapefile(path string) (*Collection, error) {
	dir, err := os.MkdirTemp("", "fitorfat-boundaries-*")
	if err != nil {
		return nil, eris.Wrap(err, "geo: create extract dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	if err := extractZIP(path, dir); err != nil {
		return nil, eris.Wrap(err, "geo: extract boundaries")
	}
	shpPath, err := findFileByExt(dir, ".shp")
	if err != nil {
		return nil, eris.Wrap(err, "geo: find .shp file")
	}
	return loadShapefile(shpPath)
}

// extractZIP extracts a ZIP archive to the destination directory, flattening
// any folders inside it.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		destPath := filepath.Join(destDir, filepath.Base(f.Name))

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}
		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}
		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}
	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}
