package testutil

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewNamedLogger console logger to stderr for tests, info level by default
func NewNamedLogger(name string, logLevel ...zapcore.Level) *zap.SugaredLogger {
	lvl := zap.InfoLevel
	if len(logLevel) > 0 {
		lvl = logLevel[0]
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("04:05.00000")
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log.Sugar().Named(name)
}
