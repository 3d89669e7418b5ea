package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lunfardo314/fairwheel/global"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultMetricsPort = 14000

type (
	Environment interface {
		Ctx() context.Context
		Log() *zap.SugaredLogger
		MetricsRegistry() *prometheus.Registry
		MarkStartedComponent()
		MarkStoppedComponent()
	}
)

// Start exposes the registry on metrics.port until the environment context is done
func Start(env Environment) {
	port := viper.GetInt(global.ConfigKeyMetricsPort)
	if port == 0 {
		env.Log().Warnf("%s not specified. Will use %d for Prometheus metrics exposure", global.ConfigKeyMetricsPort, defaultMetricsPort)
		port = defaultMetricsPort
	}
	env.MetricsRegistry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		env.MetricsRegistry(),
		promhttp.HandlerOpts{
			Registry: env.MetricsRegistry(),
		},
	))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			env.Log().Errorf("metrics server: %v", err)
		}
	}()
	env.MarkStartedComponent()
	go func() {
		defer env.MarkStoppedComponent()

		<-env.Ctx().Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		env.Log().Infof("metrics server stopped")
	}()
	env.Log().Infof("Prometheus metrics exposed on port %d", port)
}
