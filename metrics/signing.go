// Package metrics contains the prometheus instrumentation of the signing server.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SigningMetrics instruments threshold signature share production and
// combination.
type SigningMetrics struct {
	// Counts of signature shares computed, partitioned by status.
	sharesComputed *prometheus.CounterVec

	// Counts of signature responses rejected during validation.
	responsesRejected *prometheus.CounterVec

	// Counts of signatures recovered, partitioned by status.
	signaturesRecovered *prometheus.CounterVec

	// Time spent waiting for the per-user throttle.
	throttleWait prometheus.Histogram
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// NewSigningMetrics creates the instrumentation for a signing server.
// Servers created in the same process share the collectors.
func NewSigningMetrics() SigningMetrics {
	m := SigningMetrics{
		sharesComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvss_signature_shares_computed",
				Help: "How many signature shares were computed, partitioned by status.",
			},
			[]string{"status"},
		),
		responsesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvss_signature_responses_rejected",
				Help: "How many signature responses failed validation, partitioned by server index.",
			},
			[]string{"server"},
		),
		signaturesRecovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pvss_signatures_recovered",
				Help: "How many signatures were combined from shares, partitioned by status.",
			},
			[]string{"status"},
		),
		throttleWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pvss_throttle_wait_seconds",
				Help:    "How long signature share requests waited for the per-user throttle.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
	}
	m.sharesComputed = register(m.sharesComputed)
	m.responsesRejected = register(m.responsesRejected)
	m.signaturesRecovered = register(m.signaturesRecovered)
	m.throttleWait = register(m.throttleWait)
	return m
}

// register adds c to the default registry. When a collector with the same
// description is already there, that one is returned instead.
func register[C prometheus.Collector](c C) C {
	err := prometheus.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// ShareComputed counts one signature share computation
func (m SigningMetrics) ShareComputed(status string) {
	m.sharesComputed.WithLabelValues(status).Inc()
}

// ResponseRejected counts one rejected response of the given server
func (m SigningMetrics) ResponseRejected(server string) {
	m.responsesRejected.WithLabelValues(server).Inc()
}

// SignatureRecovered counts one combination attempt
func (m SigningMetrics) SignatureRecovered(status string) {
	m.signaturesRecovered.WithLabelValues(status).Inc()
}

// ThrottleWait records the time spent waiting for a throttle token
func (m SigningMetrics) ThrottleWait(d time.Duration) {
	m.throttleWait.Observe(d.Seconds())
}
