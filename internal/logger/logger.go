package logger

import (
	"fmt"
	"log"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

// ParseLevel maps "debug", "info", "warn" and "error" to a LogLevel.
// Unknown names resolve to LevelInfo.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// New builds a JSON logger writing to stderr. Development mode switches
// to the console encoder.
func New(level LogLevel, development bool) (*Logger, error) {
	atom := zap.NewAtomicLevelAt(zapLevels[level])

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atom
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{base: base, level: atom}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level LogLevel) {
	l.level.SetLevel(zapLevels[level])
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// StdLogger returns a standard library logger that writes at info level,
// for components such as chi's request logger.
func (l *Logger) StdLogger(component string) *log.Logger {
	return zap.NewStdLog(l.base.Named(component).WithOptions(zap.AddCallerSkip(-2)))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

func (l *Logger) log(level LogLevel, component, message string, args ...interface{}) {
	zl := zapLevels[level]
	if !l.level.Enabled(zl) {
		return
	}

	logger := l.base
	if component != "" {
		logger = logger.Named(component)
	}
	if ce := logger.Check(zl, fmt.Sprintf(message, args...)); ce != nil {
		ce.Write()
	}
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...interface{}) {
	l.log(LevelDebug, component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...interface{}) {
	l.log(LevelInfo, component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...interface{}) {
	l.log(LevelWarn, component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...interface{}) {
	l.log(LevelError, component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...interface{}) {
	l.base.Named(component).Fatal(fmt.Sprintf(message, args...))
}
