package translate

// Countries maps Eurostat geo codes to country names. Eurostat uses EL for
// Greece and UK for the United Kingdom rather than the ISO 3166 alpha-2 codes.
var Countries = newTable("country", map[string]string{
	"BE": "Belgium",
	"BG": "Bulgaria",
	"CZ": "Czechia",
	"DK": "Denmark",
	"DE": "Germany",
	"EE": "Estonia",
	"IE": "Ireland",
	"EL": "Greece",
	"ES": "Spain",
	"FR": "France",
	"HR": "Croatia",
	"IT": "Italy",
	"CY": "Cyprus",
	"LV": "Latvia",
	"LT": "Lithuania",
	"LU": "Luxembourg",
	"HU": "Hungary",
	"MT": "Malta",
	"NL": "Netherlands",
	"AT": "Austria",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"SI": "Slovenia",
	"SK": "Slovakia",
	"FI": "Finland",
	"SE": "Sweden",
	"IS": "Iceland",
	"NO": "Norway",
	"UK": "United Kingdom",
	"RS": "Serbia",
	"TR": "Turkey",
})

// Sexes maps the sex dimension.
var Sexes = newTable("sex", map[string]string{
	"F": "Female",
	"M": "Male",
	"T": "Total",
})

// BMICategories maps the body-mass-index buckets.
var BMICategories = newTable("bmi", map[string]string{
	"BMI_LT18P5": "Underweight",
	"BMI18P5-24": "Normal",
	"BMI_GE25":   "Overweight",
	"BMI25-29":   "Pre-obese",
	"BMI_GE30":   "Obese",
})

// Education maps ISCED 2011 attainment levels.
var Education = newTable("education", map[string]string{
	"ED0-2": "Primary",
	"ED3_4": "Secondary",
	"ED5-8": "Tertiary",
	"TOTAL": "Total",
})

// Ages maps the canonical age brackets. Its codes double as the loader's
// allow-list: every other bracket in the source overlaps one of these.
var Ages = newTable("age", map[string]string{
	"Y15-24": "15-24",
	"Y25-34": "25-34",
	"Y35-44": "35-44",
	"Y45-54": "45-54",
	"Y55-64": "55-64",
	"Y65-74": "65-74",
	"Y_GE75": "75+",
	"TOTAL":  "Total",
})

// AggregateGeoCodes are multi-country unions present in the source.
var AggregateGeoCodes = []string{"EU27_2020", "EU28"}

// NonStandardAgeCodes are the overlapping brackets the source publishes in
// addition to the canonical ones.
var NonStandardAgeCodes = []string{
	"Y_GE65", "Y15-19", "Y15-29", "Y25-29", "Y25-64", "Y15-64", "Y18-24",
	"Y18-29", "Y18-44", "Y18-64", "Y_GE18", "Y20-24", "Y45-64",
}

// Display orders for the breakdown dimensions.
var (
	SexOrder       = []string{"Female", "Male", "Total"}
	AgeOrder       = []string{"15-24", "25-34", "35-44", "45-54", "55-64", "65-74", "75+", "Total"}
	EducationOrder = []string{"Primary", "Secondary", "Tertiary", "Total"}
	BMIOrder       = []string{"Underweight", "Normal", "Overweight", "Pre-obese", "Obese"}
)
