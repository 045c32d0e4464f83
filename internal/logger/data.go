package logger

import "go.uber.org/zap"

// Logger provides structured logging with levels, tagged by component.
type Logger struct {
	base  *zap.Logger
	level zap.AtomicLevel
}

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)
