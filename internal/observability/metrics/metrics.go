package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	chainClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_client_latency_seconds",
			Help:    "Histogram of chain client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	// a cycle is either applied to the snapshot or discarded as superseded
	refreshCycleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycles_total",
			Help: "Number of refresh cycles by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	queryFailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_failures_total",
			Help: "Number of failed per-metric chain queries",
		},
		[]string{"metric"},
	)

	snapshotVersionGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_version",
			Help: "Version of the last published snapshot",
		},
	)

	chainTipHeightGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chain_tip_height",
			Help: "Last value of chain height retrieved",
		},
	)

	depositEventCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "live_deposit_events_total",
			Help: "Number of deposits received on the live event feed",
		},
	)

	transactionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Contract writes by method and status",
		},
		[]string{"method", "status"},
	)

	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending snapshots to the queue",
		},
	)

	websocketClientsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected websocket snapshot subscribers",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		registerMetrics()
		initMetricsRouter(metricsPort)
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus metrics.
func registerMetrics() {
	prometheus.MustRegister(
		chainClientLatency,
		pollerDurationHistogram,
		refreshCycleCounter,
		queryFailureCounter,
		snapshotVersionGauge,
		chainTipHeightGauge,
		depositEventCounter,
		transactionCounter,
		queueSendErrorCounter,
		websocketClientsGauge,
		dbLatency,
	)
}

func statusOf(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

func RecordChainClientLatency(d time.Duration, method string, failure bool) {
	chainClientLatency.WithLabelValues(method, statusOf(failure).String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, statusOf(failure).String()).Observe(d.Seconds())
}

func RecordRefreshCycle(kind string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "discarded"
	}
	refreshCycleCounter.WithLabelValues(kind, outcome).Inc()
}

func IncQueryFailures(metric string) {
	queryFailureCounter.WithLabelValues(metric).Inc()
}

func RecordSnapshotVersion(version uint64) {
	snapshotVersionGauge.Set(float64(version))
}

func RecordChainTipHeight(height uint64) {
	chainTipHeightGauge.Set(float64(height))
}

func IncLiveDepositEvents() {
	depositEventCounter.Inc()
}

func RecordTransaction(method string, failure bool) {
	transactionCounter.WithLabelValues(method, statusOf(failure).String()).Inc()
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}

func RecordWebsocketClients(count int) {
	websocketClientsGauge.Set(float64(count))
}
