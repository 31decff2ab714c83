package server

import (
	"context"
	"strconv"
	"time"

	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts flows by outcome and times the provider token endpoint.
type Metrics struct {
	flowsStarted     *prometheus.CounterVec
	callbacks        *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	promFactory := promauto.With(reg)
	return &Metrics{
		flowsStarted: promFactory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_relay_flows_started_total",
			Help: "Authorization flows started, labelled by outcome",
		}, []string{"outcome"}),
		callbacks: promFactory.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_relay_callbacks_total",
			Help: "Callbacks handled, labelled by outcome",
		}, []string{"outcome"}),
		exchangeDuration: promFactory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oauth_relay_provider_exchange_duration_seconds",
			Help:    "Duration of token endpoint requests, labelled by provider status",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"status"}),
	}
}

func (m *Metrics) flowStarted(outcome string) {
	m.flowsStarted.WithLabelValues(outcome).Inc()
}

func (m *Metrics) callbackHandled(outcome string) {
	m.callbacks.WithLabelValues(outcome).Inc()
}

// instrumentedExchanger times each token exchange. Transport failures are
// labelled "error".
type instrumentedExchanger struct {
	next    provider.TokenExchanger
	metrics *Metrics
}

func (e instrumentedExchanger) ExchangeCode(ctx context.Context, req provider.CodeExchange) (*provider.TokenResult, error) {
	start := time.Now()
	result, err := e.next.ExchangeCode(ctx, req)
	status := "error"
	if err == nil {
		status = strconv.Itoa(result.Status)
	}
	e.metrics.exchangeDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return result, err
}
