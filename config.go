package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Setpoint envelope of the appliance (°C). The heater element is rated for
// cooking temperatures in this band.
const (
	MinSetpoint = 80.0
	MaxSetpoint = 200.0
)

// ConfigError reports an invalid configuration or simulation parameter. It is
// fatal to a run: the engine raises it before producing any sample.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// Config represents the complete configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ServerConfig contains HTTP server settings for serve mode
type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// SimulationConfig contains the simulation parameters as entered by the user.
// Disturbances is the raw schedule text ("time,value,duration;..."); it is
// parsed leniently when the parameter set is built.
type SimulationConfig struct {
	Setpoint       float64 `yaml:"setpoint"`        // Target temperature (°C)
	Kp             float64 `yaml:"kp"`              // Proportional gain
	Ki             float64 `yaml:"ki"`              // Integral gain
	Kd             float64 `yaml:"kd"`              // Derivative gain
	Tau            float64 `yaml:"tau"`             // Thermal time constant (s)
	ErrorThreshold float64 `yaml:"error_threshold"` // Integral gating threshold (°C)
	Duration       float64 `yaml:"duration"`        // Simulated horizon (s)
	Ambient        float64 `yaml:"ambient"`         // Initial cavity temperature (°C)
	Disturbances   string  `yaml:"disturbances"`    // Raw disturbance schedule text
}

// LoadConfig loads and parses the configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns the configuration used when no config file is given
func DefaultConfig() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

// setDefaults sets default values for any missing configuration fields. The
// simulation defaults describe a 60-minute run at 180°C with three brief
// drawer-opening disturbances.
func setDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 9090
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Simulation.Setpoint == 0 {
		config.Simulation.Setpoint = 180.0
	}
	if config.Simulation.Kp == 0 {
		config.Simulation.Kp = 2.0
	}
	if config.Simulation.Ki == 0 {
		config.Simulation.Ki = 0.001
	}
	if config.Simulation.Kd == 0 {
		config.Simulation.Kd = 5.0
	}
	if config.Simulation.Tau == 0 {
		config.Simulation.Tau = 175.0
	}
	if config.Simulation.ErrorThreshold == 0 {
		config.Simulation.ErrorThreshold = 5.0
	}
	if config.Simulation.Duration == 0 {
		config.Simulation.Duration = 3600.0
	}
	if config.Simulation.Ambient == 0 {
		config.Simulation.Ambient = DefaultAmbientTemperature
	}
	if config.Simulation.Disturbances == "" {
		config.Simulation.Disturbances = "600,-2.0,40;1800,-1.5,30;2700,-0.8,25"
	}
}

// Validate checks all configuration values for logical consistency
func (c *Config) Validate() error {
	s := &c.Simulation

	if s.Setpoint < MinSetpoint || s.Setpoint > MaxSetpoint {
		return &ConfigError{Field: "setpoint", Value: s.Setpoint,
			Reason: fmt.Sprintf("must be between %g-%g", MinSetpoint, MaxSetpoint)}
	}
	if s.Kp < 0 {
		return &ConfigError{Field: "kp", Value: s.Kp, Reason: "must be non-negative"}
	}
	if s.Ki < 0 {
		return &ConfigError{Field: "ki", Value: s.Ki, Reason: "must be non-negative"}
	}
	if s.Kd < 0 {
		return &ConfigError{Field: "kd", Value: s.Kd, Reason: "must be non-negative"}
	}
	if s.Tau <= 0 {
		return &ConfigError{Field: "tau", Value: s.Tau, Reason: "must be positive"}
	}
	if s.ErrorThreshold < 0 {
		return &ConfigError{Field: "error_threshold", Value: s.ErrorThreshold, Reason: "must be non-negative"}
	}
	if s.Duration <= 0 {
		return &ConfigError{Field: "duration", Value: s.Duration, Reason: "must be positive"}
	}
	if s.Ambient >= s.Setpoint {
		return &ConfigError{Field: "ambient", Value: s.Ambient, Reason: "must be below setpoint"}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Server.LogLevel != "debug" && c.Server.LogLevel != "info" &&
		c.Server.LogLevel != "warn" && c.Server.LogLevel != "error" {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error, got %s", c.Server.LogLevel)
	}

	return nil
}

// Params builds the immutable parameter set for one run from the validated
// configuration, parsing the disturbance schedule leniently. The number of
// discarded disturbance entries is returned so callers can surface it.
func (c *Config) Params() (SimulationParams, int) {
	schedule, skipped := ParseDisturbances(c.Simulation.Disturbances)
	return SimulationParams{
		Setpoint:       c.Simulation.Setpoint,
		Kp:             c.Simulation.Kp,
		Ki:             c.Simulation.Ki,
		Kd:             c.Simulation.Kd,
		Tau:            c.Simulation.Tau,
		ErrorThreshold: c.Simulation.ErrorThreshold,
		Duration:       c.Simulation.Duration,
		Ambient:        c.Simulation.Ambient,
		Disturbances:   schedule,
	}, skipped
}
