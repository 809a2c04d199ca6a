package utils

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// VerbosityLevel maps the number of -v flags to a zap level.
func VerbosityLevel(verbosity int) zapcore.Level {
	if verbosity <= 0 {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// NewApplicationLogger constructs a zap logger writing human-readable console lines to writer.
// Diagnostics never go to stdout, which carries the program output.
func NewApplicationLogger(level zapcore.Level, writer io.Writer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.TimeKey = ""
	encoderConfig.NameKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.StacktraceKey = ""
	encoderConfig.MessageKey = "message"
	encoderConfig.ConsoleSeparator = " "
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(writer), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}

// LoggerOrNop returns logger, or a no-op logger when logger is nil.
func LoggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
