// Package export writes filtered survey rows to spreadsheets.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/fitorfat/internal/survey"
)

// DefaultSheet names the worksheet when none is given.
const DefaultSheet = "BMI"

// Header is the first row of every export.
var Header = []string{"Country", "ISO3", "Year", "Sex", "Age", "Education", "BMI", "Value"}

// Workbook builds a single-sheet workbook with a header row followed by one
// row per record, in the order given.
func Workbook(recs []survey.Record, sheetName string) (*xlsx.File, error) {
	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}

	for _, r := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Country)
		row.AddCell().SetString(r.Alpha3)
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetString(r.Sex)
		row.AddCell().SetString(r.Age)
		row.AddCell().SetString(r.Education)
		row.AddCell().SetString(r.BMI)
		row.AddCell().SetFloat(r.Value)
	}
	return f, nil
}

// WriteXLSX writes the workbook for recs to w.
func WriteXLSX(w io.Writer, recs []survey.Record, sheetName string) error {
	f, err := Workbook(recs, sheetName)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

// SaveXLSX writes the workbook for recs to path.
func SaveXLSX(path string, recs []survey.Record, sheetName string) error {
	f, err := Workbook(recs, sheetName)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
