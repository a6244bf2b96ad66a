package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fitorfat/internal/export"
	"github.com/sells-group/fitorfat/internal/query"
	"github.com/sells-group/fitorfat/internal/survey"
)

const stdoutPath = "-"

var (
	exportYear      int
	exportBMI       string
	exportSex       string
	exportAge       string
	exportEducation string
	exportCountries []string
	exportOut       string
	exportSheet     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write filtered survey rows to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		f, err := exportFilter(exportYear, exportBMI, exportSex, exportAge, exportEducation)
		if err != nil {
			return err
		}
		f.Countries = countrySet(cmd.Flags().Changed("countries"), exportCountries)

		tbl, _, err := loadTable(cmd.Context())
		if err != nil {
			return err
		}

		rows := f.Apply(tbl).Records()
		if err := writeExport(cmd.OutOrStdout(), exportOut, rows, exportSheet); err != nil {
			return eris.Wrap(err, "export")
		}

		zap.L().Info("export complete",
			zap.String("out", exportOut),
			zap.Int("rows", len(rows)),
		)
		return nil
	},
}

// writeExport saves the workbook to out, or streams it to w when out is "-".
func writeExport(w io.Writer, out string, rows []survey.Record, sheet string) error {
	if out == stdoutPath {
		return export.WriteXLSX(w, rows, sheet)
	}
	return export.SaveXLSX(out, rows, sheet)
}

// exportFilter builds a row filter from the command flags. A zero year and
// an empty BMI match everything.
func exportFilter(year int, bmi, sex, age, education string) (query.Filter, error) {
	var f query.Filter
	if year != 0 {
		f.Year = query.Year(year)
	}
	f.BMI = bmi

	var err error
	if f.Sex, err = query.ParseSlice(sex); err != nil {
		return f, eris.Wrap(err, "--sex")
	}
	if f.Age, err = query.ParseSlice(age); err != nil {
		return f, eris.Wrap(err, "--age")
	}
	if f.Education, err = query.ParseSlice(education); err != nil {
		return f, eris.Wrap(err, "--education")
	}
	return f, nil
}

func init() {
	exportCmd.Flags().IntVar(&exportYear, "year", 0, "survey year (default: all)")
	exportCmd.Flags().StringVar(&exportBMI, "bmi", "", "BMI category (default: all)")
	exportCmd.Flags().StringVar(&exportSex, "sex", "any", "sex slice: total, breakdown or any")
	exportCmd.Flags().StringVar(&exportAge, "age", "any", "age slice: total, breakdown or any")
	exportCmd.Flags().StringVar(&exportEducation, "education", "any", "education slice: total, breakdown or any")
	exportCmd.Flags().StringSliceVar(&exportCountries, "countries", nil, "ISO3 codes to keep, e.g. DEU,FRA (default: all)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output xlsx path, or - for stdout (required)")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", export.DefaultSheet, "worksheet name")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
