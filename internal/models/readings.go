package models

import "time"

// EnvReading is one row of a school's environment log. Nil pointers mark
// cells that were blank or unparseable; aggregates skip them the same way
// the charts do.
type EnvReading struct {
	School      string     `json:"school" msgpack:"school"`
	Time        *time.Time `json:"time,omitempty" msgpack:"time,omitempty"`
	Temperature *float64   `json:"temperature" msgpack:"temperature"`
	Humidity    *float64   `json:"humidity" msgpack:"humidity"`
	PH          *float64   `json:"ph" msgpack:"ph"`
	EC          *float64   `json:"ec" msgpack:"ec"`
}

// GrowthRecord is one individual's measured outcome. School and TargetEC
// are empty for combined workbooks that carry no school information.
type GrowthRecord struct {
	School      string   `json:"school,omitempty"`
	Individual  string   `json:"individual"`
	LeafCount   *float64 `json:"leafCount"`
	ShootLength *float64 `json:"shootLengthMm"`
	RootLength  *float64 `json:"rootLengthMm"`
	FreshWeight *float64 `json:"freshWeightG"`
	TargetEC    *float64 `json:"targetEc,omitempty"`
}
