package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/tigerroll/durable/pkg/durable/core/config"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// NewMetricsHandler serves the recorder's registry in the Prometheus exposition format.
func NewMetricsHandler(r *PrometheusRecorder) http.Handler {
	return promhttp.HandlerFor(r.Registry(), promhttp.HandlerOpts{Registry: r.Registry()})
}

// RegisterMetricsServer starts an HTTP exporter on metrics.listen_addr when Prometheus
// metrics are enabled and an address is configured.
func RegisterMetricsServer(lc fx.Lifecycle, cfg *config.Config, r *PrometheusRecorder) {
	mc := cfg.Durable.Metrics
	if !mc.Enabled || mc.Backend == config.MetricsBackendOTel || mc.ListenAddr == "" {
		return
	}
	path := mc.MetricsPath
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, NewMetricsHandler(r))
	srv := &http.Server{Addr: mc.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", mc.ListenAddr)
			if err != nil {
				return err
			}
			logger.Infof("Serving metrics on %s%s", ln.Addr(), path)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("Metrics server stopped: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
