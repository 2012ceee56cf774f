package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics shared by the gateway.
type Metrics struct {
	LoginStageTotal   *prometheus.CounterVec
	LoginStageFailed  *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
}

// New creates and registers all gateway metrics.
func New() *Metrics {
	return &Metrics{
		LoginStageTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trinity_login_stage_total",
			Help: "Authentication relay stage invocations by stage name",
		}, []string{"stage"}),
		LoginStageFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trinity_login_stage_failed_total",
			Help: "Authentication relay stage failures by stage name and error code",
		}, []string{"stage", "code"}),
		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trinity_http_request_duration_ms",
			Help:    "Gateway request latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"route", "status"}),
	}
}
