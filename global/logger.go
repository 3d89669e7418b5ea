package global

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lunfardo314/fairwheel/util"
	"github.com/lunfardo314/fairwheel/util/set"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeLayoutDefault = "01-02 15:04:05.000"

type (
	// Logging is what components need from the environment to log and trace
	Logging interface {
		Log() *zap.SugaredLogger
		Tracef(tag string, format string, args ...any)
	}

	DefaultLogging struct {
		*zap.SugaredLogger
		enabledTrace   atomic.Bool
		traceTagsMutex sync.RWMutex
		traceTags      set.Set[string]
	}
)

func NewLogger(name string, level zapcore.Level, outputs []string, timeLayout string) *zap.SugaredLogger {
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
		DisableCaller:    true,
	}

	if timeLayout == "" {
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayoutDefault)
	} else {
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	}

	log, err := cfg.Build()
	util.AssertNoError(err)
	log = log.WithOptions(zap.IncreaseLevel(level), zap.AddStacktrace(zapcore.FatalLevel))

	return log.Sugar().Named(name)
}

func NewDefaultLogging(name string, lvl zapcore.Level, outputs []string) *DefaultLogging {
	return &DefaultLogging{
		SugaredLogger: NewLogger(name, lvl, outputs, ""),
		traceTags:     set.New[string](),
	}
}

// NewLoggingFrom wraps existing logger, for example the one created in tests
func NewLoggingFrom(log *zap.SugaredLogger) *DefaultLogging {
	return &DefaultLogging{
		SugaredLogger: log,
		traceTags:     set.New[string](),
	}
}

// ParseLevel returns info level for anything not recognized
func ParseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (l *DefaultLogging) Log() *zap.SugaredLogger {
	return l.SugaredLogger
}

func (l *DefaultLogging) EnableTrace(enable bool) {
	l.enabledTrace.Store(enable)
}

func (l *DefaultLogging) EnableTraceTags(tags string) {
	tSplit := strings.Split(tags, ",")
	l.traceTagsMutex.Lock()
	for _, t := range tSplit {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		l.traceTags.Insert(t)
		l.enabledTrace.Store(true)
	}
	l.traceTagsMutex.Unlock()
	for _, tag := range tSplit {
		l.Tracef(tag, "trace tag enabled")
	}
}

func (l *DefaultLogging) DisableTraceTag(tag string) {
	l.traceTagsMutex.Lock()
	defer l.traceTagsMutex.Unlock()

	l.traceTags.Remove(tag)
	if len(l.traceTags) == 0 {
		l.enabledTrace.Store(false)
	}
}

func (l *DefaultLogging) TraceEnabled(tag string) bool {
	if !l.enabledTrace.Load() {
		return false
	}
	l.traceTagsMutex.RLock()
	defer l.traceTagsMutex.RUnlock()

	for _, t := range strings.Split(tag, ",") {
		if l.traceTags.Contains(strings.TrimSpace(t)) {
			return true
		}
	}
	return false
}

func (l *DefaultLogging) TraceLog(log *zap.SugaredLogger, tag string, format string, args ...any) {
	if !l.TraceEnabled(tag) {
		return
	}
	log.Infof("TRACE(%s) %s", tag, fmt.Sprintf(format, util.EvalLazyArgs(args...)...))
}

func (l *DefaultLogging) Tracef(tag string, format string, args ...any) {
	l.TraceLog(l.Log(), tag, format, args...)
}

// SubLogging shares trace tags with the parent but logs under its own name
type SubLogging struct {
	*DefaultLogging
	log *zap.SugaredLogger
}

func (l *DefaultLogging) Sub(name string) *SubLogging {
	return &SubLogging{
		DefaultLogging: l,
		log:            l.SugaredLogger.Named(name),
	}
}

func (s *SubLogging) Log() *zap.SugaredLogger {
	return s.log
}

func (s *SubLogging) Tracef(tag string, format string, args ...any) {
	s.TraceLog(s.log, tag, format, args...)
}
