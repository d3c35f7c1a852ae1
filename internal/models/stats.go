package models

import "time"

// SchoolMeans is one row of the per-school environment comparison.
// Nil means the school had no usable readings for that sensor.
type SchoolMeans struct {
	School      string   `json:"school"`
	TargetEC    float64  `json:"targetEc"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	PH          *float64 `json:"ph"`
	EC          *float64 `json:"ec"`
}

// OverviewStats backs the metric cards on the overview tab.
type OverviewStats struct {
	TotalMeasurements int      `json:"totalMeasurements"`
	AvgTemperature    *float64 `json:"avgTemperature"`
	AvgHumidity       *float64 `json:"avgHumidity"`
	TotalIndividuals  int      `json:"totalIndividuals"`
	OptimalEC         *float64 `json:"optimalEc,omitempty"`
}

// StatBlock is the mean/min/max summary for one growth metric.
type StatBlock struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

// HistogramBucket is one bar of a distribution chart.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// ScatterPoint is one marker of a correlation chart.
type ScatterPoint struct {
	School string  `json:"school,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// SeriesPoint is one sample of a time-series chart.
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// ECGroupMean is the mean fresh weight for one EC condition.
type ECGroupMean struct {
	TargetEC   float64 `json:"targetEc"`
	MeanWeight float64 `json:"meanWeightG"`
	Count      int     `json:"count"`
}
