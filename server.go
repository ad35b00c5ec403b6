package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimulateRequest carries one simulation's parameters. The shape mirrors the
// config file's simulation section; omitted fields take the same defaults.
type SimulateRequest struct {
	Setpoint       float64 `json:"setpoint"`
	Kp             float64 `json:"kp"`
	Ki             float64 `json:"ki"`
	Kd             float64 `json:"kd"`
	Tau            float64 `json:"tau"`
	ErrorThreshold float64 `json:"error_threshold"`
	Duration       float64 `json:"duration"`
	Ambient        float64 `json:"ambient"`
	Disturbances   string  `json:"disturbances"`
}

// SimulateResponse wraps the result series for the rendering collaborator,
// plus the count of disturbance entries the lenient parser discarded.
type SimulateResponse struct {
	Result              *SimulationResult `json:"result"`
	SkippedDisturbances int               `json:"skipped_disturbances"`
	EngineTimeMillis    float64           `json:"engine_time_ms"`
}

// ErrorResponse is the JSON body of a rejected request
type ErrorResponse struct {
	Error string `json:"error"`
}

// simulateHandler runs one simulation per POST request
func simulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	// Zero-valued fields fall back to the same defaults as the config file
	config := &Config{Simulation: SimulationConfig(req)}
	setDefaults(config)
	if err := config.Validate(); err != nil {
		recordConfigError(err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	params, skipped := config.Params()
	RecordSkippedDisturbances(skipped)

	start := time.Now()
	result, err := RunSimulation(params, DefaultTimeStep)
	if err != nil {
		recordConfigError(err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	elapsed := time.Since(start)
	RecordRun(result, elapsed)

	log.Printf("Simulated %.0fs at setpoint %.1f°C: %d samples, final %.2f°C (skipped %d disturbance entries)",
		params.Duration, params.Setpoint, result.Steps(), result.FinalTemperature(), skipped)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SimulateResponse{
		Result:              result,
		SkippedDisturbances: skipped,
		EngineTimeMillis:    float64(elapsed.Microseconds()) / 1000.0,
	}); err != nil {
		log.Printf("Failed to encode simulate response: %v", err)
	}
}

// writeError sends a JSON error body with the given status
func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()}); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// recordConfigError labels the rejected-run counter with the offending field
func recordConfigError(err error) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		RecordRunError(configErr.Field)
		return
	}
	RecordRunError("config")
}

// newServeMux builds the HTTP routes; shared by StartServer and tests
func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", simulateHandler)
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// StartServer starts the HTTP server for the simulate API, health checks and
// Prometheus metrics
func StartServer(port int) {
	mux := newServeMux()

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Printf("Starting server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()
}
