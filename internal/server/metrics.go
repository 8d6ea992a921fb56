package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ta_compute_duration_seconds",
		Help:    "Indicator computation duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"indicator"})

	computeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ta_compute_total",
		Help: "Total indicator computations",
	}, []string{"indicator", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ta_http_in_flight_requests",
		Help: "HTTP requests currently being served",
	})
)

func (s *Server) trackInFlight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		next.ServeHTTP(w, r)
	})
}
