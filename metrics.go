package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the simulator
type Metrics struct {
	// Run counters
	SimulationsTotal    prometheus.Counter     // Completed runs
	SimulationErrors    *prometheus.CounterVec // Failed runs by offending field
	DisturbancesSkipped prometheus.Counter     // Malformed disturbance entries discarded

	// Last-run gauges
	FinalTemperature prometheus.Gauge // Final cavity temperature (°C)
	FinalError       prometheus.Gauge // Final setpoint error (°C)
	SampleCount      prometheus.Gauge // Samples in the last result

	// Engine timing
	EngineDuration prometheus.Histogram // Wall-clock engine time per run
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

var (
	// Global metrics instance
	metrics *Metrics

	// Start time for uptime calculation
	startTime time.Time

	metricsOnce sync.Once
)

// InitMetrics initializes and registers all Prometheus metrics. Idempotent so
// tests exercising multiple entry points share one registration.
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		startTime = time.Now()

		metrics = &Metrics{
			SimulationsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "airfryer_sim_runs_total",
					Help: "Total number of completed simulation runs",
				},
			),
			SimulationErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "airfryer_sim_run_errors_total",
					Help: "Total number of rejected runs by offending parameter",
				},
				[]string{"field"},
			),
			DisturbancesSkipped: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "airfryer_sim_disturbances_skipped_total",
					Help: "Total number of malformed disturbance entries discarded",
				},
			),
			FinalTemperature: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "airfryer_sim_final_temperature_celsius",
					Help: "Final cavity temperature of the last run in Celsius",
				},
			),
			FinalError: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "airfryer_sim_final_error_celsius",
					Help: "Final setpoint error of the last run in Celsius",
				},
			),
			SampleCount: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "airfryer_sim_samples",
					Help: "Number of samples produced by the last run",
				},
			),
			EngineDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "airfryer_sim_engine_duration_seconds",
					Help:    "Wall-clock engine time per simulation run in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
				},
			),
		}

		prometheus.MustRegister(
			metrics.SimulationsTotal,
			metrics.SimulationErrors,
			metrics.DisturbancesSkipped,
			metrics.FinalTemperature,
			metrics.FinalError,
			metrics.SampleCount,
			metrics.EngineDuration,
		)
	})

	return metrics
}

// RecordRun updates the run metrics after a completed simulation
func RecordRun(result *SimulationResult, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	metrics.SimulationsTotal.Inc()
	metrics.FinalTemperature.Set(result.FinalTemperature())
	metrics.FinalError.Set(result.FinalError())
	metrics.SampleCount.Set(float64(result.Steps()))
	metrics.EngineDuration.Observe(elapsed.Seconds())
}

// RecordRunError increments the rejected-run counter for the given field
func RecordRunError(field string) {
	if metrics == nil {
		return
	}
	metrics.SimulationErrors.WithLabelValues(field).Inc()
}

// RecordSkippedDisturbances adds discarded disturbance entries to the counter
func RecordSkippedDisturbances(count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.DisturbancesSkipped.Add(float64(count))
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return metrics
}

// healthHandler provides a health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
	}
}
