package models

// Environment CSV columns. The sensor export uses fixed lowercase ASCII
// names regardless of the display language.
const (
	EnvColTime        = "time"
	EnvColTemperature = "temperature"
	EnvColHumidity    = "humidity"
	EnvColPH          = "ph"
	EnvColEC          = "ec"
)

// EnvNumericColumns lists the sensor columns in chart order.
var EnvNumericColumns = []string{
	EnvColTemperature,
	EnvColHumidity,
	EnvColPH,
	EnvColEC,
}

// Growth workbook columns, as the schools title them in the spreadsheet.
const (
	GrowthColIndividual  = "개체번호"
	GrowthColLeafCount   = "잎 수(장)"
	GrowthColShootLength = "지상부 길이(mm)"
	GrowthColRootLength  = "지하부 길이(mm)"
	GrowthColFreshWeight = "생중량(g)"

	// GrowthColSchool is appended by the all-sheets-tagged loader; it is
	// not part of the source workbook.
	GrowthColSchool = "학교"
)

// GrowthMetricColumns lists the numeric growth outcomes.
var GrowthMetricColumns = []string{
	GrowthColLeafCount,
	GrowthColShootLength,
	GrowthColRootLength,
	GrowthColFreshWeight,
}
