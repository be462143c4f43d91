package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON logger writing to stdout at the given level and tagged
// with the service name.
func New(service string, level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		level,
	)

	return zap.New(core, zap.AddCaller()).With(zap.String("service", service))
}

// SetupJSON builds the process logger and installs it as zap's global.
func SetupJSON(service string, level zapcore.Level) *zap.Logger {
	log := New(service, level)
	zap.ReplaceGlobals(log)

	return log
}

// Sync flushes buffered entries. Sync errors on stdout are not actionable.
func Sync(log *zap.Logger) {
	_ = log.Sync()
}
