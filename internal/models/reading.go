package models

import "time"

// SampledPoint is the representative reading the window query picked for one
// (date, parameter) pair. Timestamp and Value hold the cells exactly as the
// driver returned them; the assembler decides whether they are usable.
type SampledPoint struct {
	Date        time.Time
	Timestamp   any
	Hour        int
	ParameterID int
	Value       any
}

// RawReading is one row of float_table without any window applied.
type RawReading struct {
	Timestamp   any
	ParameterID int
	Value       any
}
