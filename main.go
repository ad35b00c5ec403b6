package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

var (
	// CLI flags
	configPath = flag.String("config", "", "Path to configuration file (built-in defaults when empty)")
	serve      = flag.Bool("serve", false, "Run the HTTP simulate API instead of a one-shot run")
	format     = flag.String("format", "json", "One-shot output format: json or csv")
	logLevel   = flag.String("log-level", "", "Override log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	config, err := loadOrDefaultConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Override log level if specified
	if *logLevel != "" {
		config.Server.LogLevel = *logLevel
	}

	if *serve {
		runServer(config)
		return
	}

	if err := runOnce(config, os.Stdout, *format); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

// loadOrDefaultConfig loads the config file when a path is given, otherwise
// the built-in defaults
func loadOrDefaultConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// runOnce executes a single simulation and writes the result series to out
// for the rendering collaborator
func runOnce(config *Config, out io.Writer, format string) error {
	params, skipped := config.Params()
	if skipped > 0 {
		log.Printf("Warning: discarded %d malformed disturbance entries", skipped)
	}

	start := time.Now()
	result, err := RunSimulation(params, DefaultTimeStep)
	if err != nil {
		return err
	}

	log.Printf("Simulated %.0fs at setpoint %.1f°C: %d samples, final %.2f°C in %v",
		params.Duration, params.Setpoint, result.Steps(), result.FinalTemperature(), time.Since(start))

	switch format {
	case "json":
		return writeResultJSON(out, result, skipped)
	case "csv":
		return writeResultCSV(out, result)
	default:
		return fmt.Errorf("unknown output format %q (want json or csv)", format)
	}
}

// writeResultJSON emits the parallel series plus the skipped-entry count as a
// single JSON object
func writeResultJSON(out io.Writer, result *SimulationResult, skipped int) error {
	enc := json.NewEncoder(out)
	return enc.Encode(SimulateResponse{
		Result:              result,
		SkippedDisturbances: skipped,
	})
}

// writeResultCSV emits the parallel series as rows, one sample per row
func writeResultCSV(out io.Writer, result *SimulationResult) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "temperature", "setpoint", "controller_output", "error", "disturbance_value"}); err != nil {
		return err
	}
	for i := range result.Time {
		row := []string{
			formatFloat(result.Time[i]),
			formatFloat(result.Temperature[i]),
			formatFloat(result.Setpoint[i]),
			formatFloat(result.ControllerOutput[i]),
			formatFloat(result.Error[i]),
			formatFloat(result.DisturbanceValue[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// runServer starts the simulate API and blocks until SIGINT/SIGTERM
func runServer(config *Config) {
	InitMetrics()
	StartServer(config.Server.Port)

	log.Printf("Air-fryer simulator serving on port %d (setpoint default %.1f°C)",
		config.Server.Port, config.Simulation.Setpoint)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, stopping")
}
