package global

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zapcore"
)

// Global is the process-wide environment of long-running commands
type Global struct {
	*DefaultLogging
	*sync.WaitGroup
	ctx             context.Context
	stopFun         context.CancelFunc
	once            *sync.Once
	metricsRegistry *prometheus.Registry
}

func New(name string, level zapcore.Level, outputs []string) *Global {
	ctx, cancelFun := context.WithCancel(context.Background())
	return &Global{
		DefaultLogging:  NewDefaultLogging(name, level, outputs),
		WaitGroup:       &sync.WaitGroup{},
		ctx:             ctx,
		stopFun:         cancelFun,
		once:            &sync.Once{},
		metricsRegistry: prometheus.NewRegistry(),
	}
}

func (l *Global) MarkStartedComponent() {
	l.WaitGroup.Add(1)
}

func (l *Global) MarkStoppedComponent() {
	l.WaitGroup.Done()
}

func (l *Global) Stop() {
	l.stopFun()
}

func (l *Global) Ctx() context.Context {
	return l.ctx
}

func (l *Global) Wait() {
	l.WaitGroup.Wait()
	l.once.Do(func() {
		l.Log().Info("all components stopped")
	})
}

func (l *Global) MetricsRegistry() *prometheus.Registry {
	return l.metricsRegistry
}
