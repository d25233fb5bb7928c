package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	exchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "merlinctl",
			Subsystem: "exchange",
			Name:      "total",
			Help:      "Detector exchanges by verb and device status.",
		},
		[]string{"verb", "status"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "merlinctl",
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Detector exchange round trip duration in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"verb"},
	)
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "merlinctl",
			Subsystem: "set",
			Name:      "rejected_total",
			Help:      "SET calls rejected locally before any bytes were sent.",
		},
		[]string{"variable"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(exchanges, exchangeDuration, validationFailures)
	})
}

// ExchangeRecord describes one finished round trip. Status is negative when
// no response arrived.
type ExchangeRecord struct {
	Verb     string
	Subject  string
	Status   int
	Duration time.Duration
	Err      error
}

func (r ExchangeRecord) statusLabel() string {
	if r.Status < 0 {
		return "none"
	}
	return strconv.Itoa(r.Status)
}

func RecordExchange(rec ExchangeRecord) {
	RegisterMetrics()
	exchanges.WithLabelValues(rec.Verb, rec.statusLabel()).Inc()
	exchangeDuration.WithLabelValues(rec.Verb).Observe(rec.Duration.Seconds())
}

func RecordRejectedSet(variable string) {
	RegisterMetrics()
	validationFailures.WithLabelValues(variable).Inc()
}
