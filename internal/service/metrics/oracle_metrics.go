package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	OracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "corrnet",
			Subsystem: "oracle",
			Name:      "latency_seconds",
			Help:      "Latency of transfer-entropy oracle calls",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"endpoint"},
	)

	OracleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "corrnet",
			Subsystem: "oracle",
			Name:      "errors_total",
			Help:      "Errors by oracle endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(OracleLatency, OracleErrors)
	})
}
