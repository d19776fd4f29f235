package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bingo"

// Scan outcomes used as the "result" label
const (
	ScanAccepted    = "accepted"
	ScanRateLimited = "rate_limited"
)

// Metrics holds the game's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	scans         *prometheus.CounterVec
	wins          *prometheus.CounterVec
	registrations *prometheus.CounterVec
	gameActive    prometheus.Gauge
	winners       prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scan submissions by outcome.",
		}, []string{"result"}),
		wins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wins_total",
			Help:      "Recorded wins by win type.",
		}, []string{"win_type"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Player registrations, split into new and returning.",
		}, []string{"kind"}),
		gameActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "game_active",
			Help:      "1 while the game accepts scans.",
		}),
		winners: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distinct_winners",
			Help:      "Players holding at least one win.",
		}),
	}

	m.registry.MustRegister(
		m.scans,
		m.wins,
		m.registrations,
		m.gameActive,
		m.winners,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ScanSubmitted counts a scan submission. result is ScanAccepted,
// ScanRateLimited, or the API error code of a rejection.
func (m *Metrics) ScanSubmitted(result string) {
	m.scans.WithLabelValues(result).Inc()
}

// WinRecorded counts one recorded win
func (m *Metrics) WinRecorded(winType string) {
	m.wins.WithLabelValues(winType).Inc()
}

// PlayerRegistered counts a registration call
func (m *Metrics) PlayerRegistered(created bool) {
	kind := "returning"
	if created {
		kind = "new"
	}
	m.registrations.WithLabelValues(kind).Inc()
}

// SetGameState updates the game gauges
func (m *Metrics) SetGameState(active bool, winnerCount int) {
	if active {
		m.gameActive.Set(1)
	} else {
		m.gameActive.Set(0)
	}
	m.winners.Set(float64(winnerCount))
}
