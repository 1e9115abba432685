package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats for performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	Restarts             int
	StartTime            time.Time

	registry    *prometheus.Registry
	generations prometheus.Counter
	population  prometheus.Gauge
	stepSeconds prometheus.Histogram
	restarts    *prometheus.CounterVec
}

// NewStats creates stats backed by a fresh Prometheus registry
func NewStats() *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Stats{
		StartTime: time.Now(),
		registry:  reg,
		generations: factory.NewCounter(prometheus.CounterOpts{
			Name: "gol_generations_total",
			Help: "Generations computed since start",
		}),
		population: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gol_population",
			Help: "Living cells in the current generation",
		}),
		stepSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gol_step_duration_seconds",
			Help:    "Time to compute one generation",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		restarts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gol_restarts_total",
			Help: "Board resets by reason",
		}, []string{"reason"}),
	}
}

// Registry exposes the collectors for serving over HTTP
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// Update records one computed generation
func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}

	s.generations.Inc()
	s.population.Set(float64(population))
	s.stepSeconds.Observe(duration.Seconds())
}

// RecordRestart counts a board reset
func (s *Stats) RecordRestart(reason string) {
	s.Restarts++
	s.restarts.WithLabelValues(reason).Inc()
}
