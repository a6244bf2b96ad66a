// Package survey holds the normalised EHIS body-mass-index records and the
// read-only table the dashboard serves them from.
package survey

// Total is the label of the aggregate slice in every breakdown dimension.
const Total = "Total"

// Record is one normalised row of the survey.
type Record struct {
	Country   string  `json:"country" yaml:"country"`
	Alpha3    string  `json:"alpha3" yaml:"alpha3"`
	Year      int     `json:"year" yaml:"year"`
	Sex       string  `json:"sex" yaml:"sex"`
	Age       string  `json:"age" yaml:"age"`
	Education string  `json:"education" yaml:"education"`
	BMI       string  `json:"bmi" yaml:"bmi"`
	Value     float64 `json:"value" yaml:"value"`
}

// IsTotalSlice reports whether the record is the all-sexes, all-ages,
// all-education aggregate for its country, year and BMI category.
func (r Record) IsTotalSlice() bool {
	return r.Sex == Total && r.Age == Total && r.Education == Total
}
