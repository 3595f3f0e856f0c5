package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output encodings accepted by log.format.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process logger, creating a console logger at the given
// level on first use.
func Get(level string) *Logger {
	return Configure(level, ConsoleFormat)
}

// Configure is Get with an explicit encoding. Only the first call across
// Get and Configure decides the settings.
func Configure(level, format string) *Logger {
	once.Do(func() {
		globalLogger = New(level, format)
	})
	return globalLogger
}
