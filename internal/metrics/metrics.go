// Package metrics define las métricas Prometheus del backend y el
// handler de /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once
	err  error

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInflight        *prometheus.GaugeVec

	// Auth metrics
	LoginsTotal    *prometheus.CounterVec
	TwoFactorTotal *prometheus.CounterVec
	TokensIssued   *prometheus.CounterVec
)

// Register inicializa y registra las métricas. Devuelve el handler
// para /metrics. Idempotente: los registros duplicados se ignoran.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	once.Do(func() {
		HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Intentos de login por resultado",
		}, []string{"result"}) // result: ok|bad_credentials|error

		TwoFactorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_two_factor_total",
			Help: "Verificaciones de segundo factor por resultado",
		}, []string{"result"}) // result: ok|bad_code|no_method

		TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Tokens emitidos por tipo",
		}, []string{"type"}) // type: access|refresh|mail_verification

		for _, c := range []prometheus.Collector{
			HTTPRequestsTotal, HTTPRequestDuration, HTTPInflight,
			LoginsTotal, TwoFactorTotal, TokensIssued,
		} {
			if e := register(reg, c); e != nil {
				err = e
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	// Gatherer global por compatibilidad: las métricas se registran allí.
	return promhttp.Handler(), nil
}

// IncCounter incrementa el counter si fue registrado. Permite usar
// los controllers sin registrar métricas (tests).
func IncCounter(c *prometheus.CounterVec, labels ...string) {
	if c != nil {
		c.WithLabelValues(labels...).Inc()
	}
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if e := reg.Register(c); e != nil {
		if _, ok := e.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return e
	}
	return nil
}
