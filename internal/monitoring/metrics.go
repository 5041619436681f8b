package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Purchase metrics
	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_dca_purchases_total",
			Help: "Total number of purchases executed",
		},
		[]string{"pair", "kind"},
	)

	purchaseAmount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smart_dca_purchase_amount",
			Help:    "Distribution of purchase spend amounts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pair"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smart_dca_current_price",
			Help: "Last observed price of the trading pair",
		},
		[]string{"pair"},
	)

	// Window metrics
	windowAgeDays = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smart_dca_window_age_days",
			Help: "Age of the open purchase window in days, 0 when closed",
		},
		[]string{"pair"},
	)

	marketRegime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smart_dca_market_regime",
			Help: "Current market regime (0=sideways, 1=bullish, 2=bearish)",
		},
		[]string{"pair"},
	)

	// Error metrics
	cycleErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_dca_cycle_errors_total",
			Help: "Total number of evaluation cycle errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(purchasesTotal)
	prometheus.MustRegister(purchaseAmount)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(windowAgeDays)
	prometheus.MustRegister(marketRegime)
	prometheus.MustRegister(cycleErrorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordPurchase records an executed purchase. Kind is "triggered" or
// "fallback".
func RecordPurchase(pair, kind string, spend float64) {
	purchasesTotal.WithLabelValues(pair, kind).Inc()
	purchaseAmount.WithLabelValues(pair).Observe(spend)
}

// UpdatePrice updates the current price metric
func UpdatePrice(pair string, price float64) {
	currentPrice.WithLabelValues(pair).Set(price)
}

// UpdateWindowAge updates the open-window age metric
func UpdateWindowAge(pair string, ageDays float64) {
	windowAgeDays.WithLabelValues(pair).Set(ageDays)
}

// UpdateRegime updates the market regime metric
func UpdateRegime(pair string, regimeValue int) {
	marketRegime.WithLabelValues(pair).Set(float64(regimeValue))
}

// RecordError records a cycle error metric
func RecordError(errorType string) {
	cycleErrorsTotal.WithLabelValues(errorType).Inc()
}
