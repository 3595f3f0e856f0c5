package models

import "time"

type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is the chart-ready history of one parameter.
// Points are strictly ascending by Timestamp.
type Series struct {
	ParameterID int     `json:"parameter_id"`
	Parameter   string  `json:"parameter"`
	Points      []Point `json:"points"`
}
