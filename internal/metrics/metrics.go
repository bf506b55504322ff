// Package metrics exposes the prometheus collectors shared by the binaries.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	transportRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medchat_transport_requests_total",
			Help: "Messages posted to the inference endpoint by outcome and status class.",
		},
		[]string{"outcome", "status"},
	)

	transportLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medchat_transport_duration_seconds",
			Help:    "Time spent waiting for the inference endpoint.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	sendsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medchat_sends_rejected_total",
			Help: "Send attempts dropped before reaching the transport.",
		},
		[]string{"reason"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "medchat_sessions",
			Help: "Conversation sessions held in memory.",
		},
	)

	inferenceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medchat_inference_requests_total",
			Help: "Questions answered by the inference backend.",
		},
		[]string{"route", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(transportRequests)
	prometheus.MustRegister(transportLatency)
	prometheus.MustRegister(sendsRejected)
	prometheus.MustRegister(activeSessions)
	prometheus.MustRegister(inferenceRequests)
}

// ObserveTransport records one transport round trip. status 0 means no HTTP
// response arrived.
func ObserveTransport(outcome string, status int, elapsed time.Duration) {
	transportRequests.WithLabelValues(outcome, statusClass(status)).Inc()
	transportLatency.Observe(elapsed.Seconds())
}

// RejectSend counts a send dropped for reason ("blank" or "busy").
func RejectSend(reason string) {
	sendsRejected.WithLabelValues(reason).Inc()
}

// SessionOpened bumps the session gauge.
func SessionOpened() {
	activeSessions.Inc()
}

// SessionClosed lowers the session gauge.
func SessionClosed() {
	activeSessions.Dec()
}

// InferenceServed counts one backend answer.
func InferenceServed(route, outcome string) {
	inferenceRequests.WithLabelValues(route, outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusClass(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}
