package core

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel uint8

const (
	LOG_SILENT LogLevel = 0
	LOG_FATAL  LogLevel = 1
	LOG_ERROR  LogLevel = 2
	LOG_WARN   LogLevel = 3
	LOG_INFO   LogLevel = 4
	LOG_DEBUG  LogLevel = 5
	LOG_TRACE  LogLevel = 6
)

// zap has no trace level: trace and debug both map to debug.
func (this LogLevel) zapLevel() zapcore.Level {
	switch this {
	case LOG_FATAL:
		return zapcore.FatalLevel
	case LOG_ERROR:
		return zapcore.ErrorLevel
	case LOG_WARN:
		return zapcore.WarnLevel
	case LOG_INFO:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func ParseLogLevel(verbosity int) (LogLevel, error) {
	if (verbosity < int(LOG_SILENT)) || (verbosity > int(LOG_TRACE)) {
		return LOG_SILENT, fmt.Errorf("invalid verbosity %d (0-%d)",
			verbosity, LOG_TRACE)
	}

	return LogLevel(verbosity), nil
}

// Build the process logger. Logs go to stderr so that standard output only
// carries result lines.
func NewLogger(level LogLevel) (*zap.Logger, error) {
	var config zap.Config

	if level == LOG_SILENT {
		return zap.NewNop(), nil
	}

	config = zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level.zapLevel())
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if level < LOG_TRACE {
		config.DisableStacktrace = true
	}

	return config.Build()
}
