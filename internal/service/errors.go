package service

import "errors"

// Pipeline errors. The first three are caller errors and are never retried.
var (
	ErrInvalidRange          = errors.New("invalid range: start must not be after end")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrInvalidHour           = errors.New("invalid hour: must be within 0..23")
	ErrUnknownParameter      = errors.New("unknown parameter in source data")
	ErrDataSourceUnavailable = errors.New("data source unavailable")
)

// IsCallerError reports whether err was caused by the request itself.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrInvalidHour)
}
