package logger

import (
	"io"
	"sync"
)

// Logger writes leveled, component-tagged lines for the pipeline commands.
type Logger struct {
	MinLevel LogLevel
	Out      io.Writer // stderr when nil
	mu       sync.Mutex
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)
