package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes, used as the "outcome" label.
const (
	OutcomeSuccess   = "success"
	OutcomeStatus    = "status"
	OutcomeTimeout   = "timeout"
	OutcomeTransport = "transport"
)

// Download results, used as the "result" label.
const (
	ResultOK        = "ok"
	ResultExhausted = "exhausted"
)

const namespace = "ghcrawler"

// Collector holds the crawl metrics.
type Collector struct {
	registry *prometheus.Registry

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	downloads       *prometheus.CounterVec
	inflight        prometheus.Gauge
	stageRecords    *prometheus.GaugeVec
}

// New creates a Collector with a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Fetch attempts by outcome.",
			},
			[]string{"outcome"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_attempt_duration_seconds",
				Help:      "Duration of fetch attempts by outcome.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"outcome"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Completed URL downloads by result.",
			},
			[]string{"result"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "fetch_inflight",
				Help:      "Attempts currently holding a connection slot.",
			},
		),
		stageRecords: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_records",
				Help:      "Records produced by the last run of each pipeline stage.",
			},
			[]string{"stage"},
		),
	}

	c.registry.MustRegister(c.attempts, c.attemptDuration, c.downloads, c.inflight, c.stageRecords)
	return c
}

// ObserveAttempt records one finished fetch attempt.
func (c *Collector) ObserveAttempt(outcome string, d time.Duration) {
	c.attempts.WithLabelValues(outcome).Inc()
	c.attemptDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveDownload records one URL whose retry loop ended.
func (c *Collector) ObserveDownload(result string) {
	c.downloads.WithLabelValues(result).Inc()
}

// AttemptStarted increments the in-flight gauge.
func (c *Collector) AttemptStarted() {
	c.inflight.Inc()
}

// AttemptFinished decrements the in-flight gauge.
func (c *Collector) AttemptFinished() {
	c.inflight.Dec()
}

// SetStageRecords records how many records a pipeline stage produced.
func (c *Collector) SetStageRecords(stage string, n int) {
	c.stageRecords.WithLabelValues(stage).Set(float64(n))
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
// It returns once the listener is bound; the listener address is returned
// so callers can pass ":0".
func (c *Collector) Serve(ctx context.Context, addr string, logger *slog.Logger) (net.Addr, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx) //nolint:errcheck // best effort on exit
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())
	return ln.Addr(), nil
}
