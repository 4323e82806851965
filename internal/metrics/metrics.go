// Package metrics exposes Prometheus instruments for log scans.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "contractscope"

// ScanMetrics counts scanner progress. A nil *ScanMetrics is valid and
// records nothing.
type ScanMetrics struct {
	logs          *prometheus.CounterVec
	batches       prometheus.Counter
	retries       *prometheus.CounterVec
	lastBlock     prometheus.Gauge
	batchDuration prometheus.Histogram
}

// NewScanMetrics creates the instruments and registers them with reg.
func NewScanMetrics(reg prometheus.Registerer) (*ScanMetrics, error) {
	m := &ScanMetrics{
		logs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_logs_total",
			Help:      "Logs processed by the scanner, by decode outcome.",
		}, []string{"outcome"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_batches_total",
			Help:      "Block ranges completed.",
		}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_retries_total",
			Help:      "Failed RPC attempts that were retried.",
		}, []string{"call"}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_last_block",
			Help:      "Last block covered by a completed batch.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_batch_duration_seconds",
			Help:      "Wall time spent per block range.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.logs, m.batches, m.retries, m.lastBlock, m.batchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Log outcomes.
const (
	OutcomeDecoded = "decoded"
	OutcomeRaw     = "raw"
	OutcomeError   = "error"
)

func (m *ScanMetrics) ObserveLog(outcome string) {
	if m == nil {
		return
	}
	m.logs.WithLabelValues(outcome).Inc()
}

func (m *ScanMetrics) ObserveRetry(call string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(call).Inc()
}

func (m *ScanMetrics) ObserveBatch(lastBlock uint64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.lastBlock.Set(float64(lastBlock))
	m.batchDuration.Observe(elapsed.Seconds())
}

// Serve exposes gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
