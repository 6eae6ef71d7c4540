package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	scansTotal        prometheus.Counter
	scanDuration      prometheus.Histogram
	sellSignals       *prometheus.CounterVec
	signalsSuppressed prometheus.Counter
	signalsRouted     *prometheus.CounterVec
	sentimentRequests *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
	recommendations   *prometheus.CounterVec
	holdings          prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.scansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_scans_total",
			Help: "Total number of buy-side scan cycles completed",
		},
	)
	r.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vigil_scan_duration_seconds",
			Help:    "Buy-side scan cycle duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.sellSignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_sell_signals_total",
			Help: "Total number of sell signals fired",
		},
		[]string{"kind", "strategy"},
	)
	r.signalsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vigil_sell_signals_suppressed_total",
			Help: "Total number of duplicate sell signals suppressed",
		},
	)
	r.signalsRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_signals_routed_total",
			Help: "Total number of signals routed to notifiers",
		},
		[]string{"notifier", "status"},
	)
	r.sentimentRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_sentiment_requests_total",
			Help: "Total number of sentiment analysis requests",
		},
		[]string{"provider", "outcome"},
	)
	r.refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vigil_portfolio_refresh_duration_seconds",
			Help:    "Portfolio monitoring cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_recommendations_total",
			Help: "Total number of buy recommendations produced",
		},
		[]string{"strategy"},
	)
	r.holdings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_holdings",
			Help: "Number of positions currently held",
		},
	)

	reg.MustRegister(r.scansTotal)
	reg.MustRegister(r.scanDuration)
	reg.MustRegister(r.sellSignals)
	reg.MustRegister(r.signalsSuppressed)
	reg.MustRegister(r.signalsRouted)
	reg.MustRegister(r.sentimentRequests)
	reg.MustRegister(r.refreshDuration)
	reg.MustRegister(r.recommendations)
	reg.MustRegister(r.holdings)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordScan records a completed buy-side scan cycle.
func (r *Registry) RecordScan(duration float64) {
	r.scansTotal.Inc()
	r.scanDuration.Observe(duration)
}

// RecordSellSignal records a fired sell signal.
func (r *Registry) RecordSellSignal(kind, strategy string) {
	r.sellSignals.WithLabelValues(kind, strategy).Inc()
}

// RecordSuppressedSignal records a duplicate sell signal that was suppressed.
func (r *Registry) RecordSuppressedSignal() {
	r.signalsSuppressed.Inc()
}

// RecordSignalRouted records a signal routed to a notifier.
func (r *Registry) RecordSignalRouted(notifier, status string) {
	r.signalsRouted.WithLabelValues(notifier, status).Inc()
}

// RecordSentimentRequest records a sentiment analysis request by outcome.
func (r *Registry) RecordSentimentRequest(provider, outcome string) {
	r.sentimentRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordPortfolioRefresh records a portfolio monitoring cycle.
func (r *Registry) RecordPortfolioRefresh(duration float64) {
	r.refreshDuration.Observe(duration)
}

// RecordRecommendation records a produced buy recommendation.
func (r *Registry) RecordRecommendation(strategy string) {
	r.recommendations.WithLabelValues(strategy).Inc()
}

// SetHoldings sets the current position count.
func (r *Registry) SetHoldings(count int) {
	r.holdings.Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
