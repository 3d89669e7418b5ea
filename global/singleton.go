package global

import "go.uber.org/zap/zapcore"

var globalLogging = NewDefaultLogging("", zapcore.InfoLevel, []string{"stderr"})

// SetGlobalLogging not thread safe
func SetGlobalLogging(l *DefaultLogging) {
	globalLogging = l
}

func Logger() *DefaultLogging {
	return globalLogging
}
