package main

// Simulation defaults. The time step is a fixed engine constant, not a
// user-facing parameter.
const (
	// DefaultTimeStep is the fixed sampling interval of the simulation loop (s)
	DefaultTimeStep = 0.1

	// DefaultAmbientTemperature is the cavity temperature at the start of a
	// run, and the floor the cavity never cools below (°C)
	DefaultAmbientTemperature = 20.0
)

// SimulationParams is the validated, immutable parameter set for one run.
// The driver owns it exclusively for the duration of the run.
type SimulationParams struct {
	Setpoint       float64 // Target temperature (°C)
	Kp             float64 // Proportional gain
	Ki             float64 // Integral gain
	Kd             float64 // Derivative gain
	Tau            float64 // Plant thermal time constant (s)
	ErrorThreshold float64 // Integral gating threshold (°C)
	Duration       float64 // Simulated horizon (s)
	Ambient        float64 // Initial and minimum cavity temperature (°C)

	Disturbances DisturbanceSchedule
}

// SimulationResult holds the parallel series produced by a run. All slices
// have identical length floor(duration/dt)+1, with Time[i] == i*dt. The
// result is immutable once returned; rendering collaborators consume it
// read-only.
type SimulationResult struct {
	Time             []float64 `json:"time"`
	Temperature      []float64 `json:"temperature"`
	Setpoint         []float64 `json:"setpoint"`
	ControllerOutput []float64 `json:"controller_output"`
	Error            []float64 `json:"error"`
	DisturbanceValue []float64 `json:"disturbance_value"`
}

// Steps returns the number of samples in the result
func (r *SimulationResult) Steps() int {
	return len(r.Time)
}

// FinalTemperature returns the last temperature sample, or 0 for an empty
// result
func (r *SimulationResult) FinalTemperature() float64 {
	if len(r.Temperature) == 0 {
		return 0
	}
	return r.Temperature[len(r.Temperature)-1]
}

// FinalError returns the last error sample
func (r *SimulationResult) FinalError() float64 {
	if len(r.Error) == 0 {
		return 0
	}
	return r.Error[len(r.Error)-1]
}

// RunSimulation executes the fixed-step closed-loop simulation and returns
// the recorded series. Each step wires the controller output and the active
// disturbance value into the plant and appends one sample of every series.
//
// Validation happens before the first sample: a non-positive duration, dt, or
// tau aborts the run with a ConfigError and no partial result. Once
// parameters pass validation the loop is deterministic and cannot fail.
//
// Driver policy: the cavity never cools below the ambient temperature; each
// stepped temperature is floored at params.Ambient.
func RunSimulation(params SimulationParams, dt float64) (*SimulationResult, error) {
	if dt <= 0 {
		return nil, &ConfigError{Field: "dt", Value: dt, Reason: "must be positive"}
	}
	if params.Duration <= 0 {
		return nil, &ConfigError{Field: "duration", Value: params.Duration, Reason: "must be positive"}
	}

	plant, err := NewThermalPlant(params.Tau)
	if err != nil {
		return nil, err
	}
	pid := NewPIDController(params.Kp, params.Ki, params.Kd, params.ErrorThreshold)

	steps := int(params.Duration / dt)
	result := &SimulationResult{
		Time:             make([]float64, 0, steps+1),
		Temperature:      make([]float64, 0, steps+1),
		Setpoint:         make([]float64, 0, steps+1),
		ControllerOutput: make([]float64, 0, steps+1),
		Error:            make([]float64, 0, steps+1),
		DisturbanceValue: make([]float64, 0, steps+1),
	}

	temperature := params.Ambient

	for i := 0; i <= steps; i++ {
		t := float64(i) * dt
		disturbance := params.Disturbances.ActiveValue(t)

		output, terms, err := pid.Compute(params.Setpoint, temperature, dt)
		if err != nil {
			return nil, err
		}

		temperature = plant.Step(temperature, output, disturbance, dt)
		if temperature < params.Ambient {
			temperature = params.Ambient
		}

		result.Time = append(result.Time, t)
		result.Temperature = append(result.Temperature, temperature)
		result.Setpoint = append(result.Setpoint, params.Setpoint)
		result.ControllerOutput = append(result.ControllerOutput, output)
		result.Error = append(result.Error, terms.Error)
		result.DisturbanceValue = append(result.DisturbanceValue, disturbance)
	}

	return result, nil
}
