// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors exported on /metrics.
//
// All methods are safe on a nil *Metrics, so handlers built without a
// registry (as most tests do) need no special casing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rtvote"

// Vote rejection reasons
const (
	ReasonAlreadyVoted   = "already_voted"
	ReasonElectionClosed = "election_closed"
	ReasonOutOfScope     = "out_of_scope"
	ReasonVoterMismatch  = "voter_mismatch"
	ReasonNotFound       = "not_found"
	ReasonTimeout        = "timeout"
	ReasonError          = "error"
)

type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	votesCast       prometheus.Counter
	voteRejections  *prometheus.CounterVec
	logins          *prometheus.CounterVec
	registrations   prometheus.Counter
}

// New registers every collector on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"method", "route"}),
		votesCast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "accepted votes",
		}),
		voteRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_rejections_total",
			Help:      "rejected vote attempts by reason",
		}, []string{"reason"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "login attempts by result",
		}, []string{"result"}),
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "successful voter registrations",
		}),
	}
}

// Handler serves the collectors gathered from g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) VoteCast() {
	if m == nil {
		return
	}
	m.votesCast.Inc()
}

func (m *Metrics) VoteRejected(reason string) {
	if m == nil {
		return
	}
	m.voteRejections.WithLabelValues(reason).Inc()
}

// Login records a login outcome: "success", "invalid" or "forbidden"
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Registered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}
