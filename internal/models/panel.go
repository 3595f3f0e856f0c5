package models

import "time"

// Panel is one small-multiple chart of the KPI page.
type Panel struct {
	ParameterID int         `json:"parameter_id"`
	Parameter   string      `json:"parameter"`
	Slug        string      `json:"slug"`
	HasData     bool        `json:"has_data"`
	Points      []Point     `json:"points"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	YRange      *[2]float64 `json:"y_range,omitempty"`
}

// ReportRow is one line of the readings table. Value is nil when the stored
// cell is not a finite number.
type ReportRow struct {
	Timestamp   time.Time `json:"timestamp"`
	ParameterID int       `json:"parameter_id"`
	Parameter   string    `json:"parameter"`
	Value       *float64  `json:"value"`
}
