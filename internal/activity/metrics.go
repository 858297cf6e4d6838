package activity

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts recorded activities on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	recorded   *prometheus.CounterVec
	percentage *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "autismart",
				Name:      "activities_recorded_total",
				Help:      "Total number of recorded activities",
			},
			[]string{"type", "name"},
		),
		percentage: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "autismart",
				Name:      "activity_score_percentage",
				Help:      "Score of recorded activities as a percentage of the maximum",
				Buckets:   []float64{20, 40, 60, 80, 100},
			},
			[]string{"type"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "autismart",
				Name:      "activity_duration_seconds",
				Help:      "Duration of recorded activities",
				Buckets:   []float64{30, 60, 120, 300, 600, 1200},
			},
			[]string{"type"},
		),
	}
	m.registry.MustRegister(m.recorded, m.percentage, m.duration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Record(_ context.Context, rec Record) error {
	t := string(rec.Type)
	m.recorded.WithLabelValues(t, rec.Name).Inc()
	m.percentage.WithLabelValues(t).Observe(rec.Percentage)
	if rec.Duration > 0 {
		m.duration.WithLabelValues(t).Observe(rec.Duration.Seconds())
	}
	return nil
}

// WriteTextfile writes the current values in the text exposition format,
// for a node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
