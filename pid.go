package main

// PIDController computes the heater drive signal from the error between the
// setpoint and the measured cavity temperature. Integral accumulation is
// gated by an error-magnitude threshold: while abs(error) exceeds the
// threshold the accumulator is frozen, which prevents integral buildup during
// large transients such as startup or post-disturbance recovery
// (anti-windup-by-threshold).
type PIDController struct {
	// PID gains
	Kp float64 // Proportional gain
	Ki float64 // Integral gain
	Kd float64 // Derivative gain

	// Integral gating threshold (°C); accumulation happens only while
	// abs(error) <= ErrorThreshold
	ErrorThreshold float64

	state ControllerState
}

// ControllerState is the per-run mutable state of a PIDController. Each
// simulation run owns an independent controller, so parallel runs never share
// state.
type ControllerState struct {
	Integral  float64 // Accumulated integral term
	PrevError float64 // Previous error for the derivative term
}

// PIDTerms contains the individual PID components for monitoring
type PIDTerms struct {
	P     float64 // Proportional term
	I     float64 // Integral term
	D     float64 // Derivative term
	Error float64 // Current error
}

// NewPIDController creates a controller with the given gains and integral
// gating threshold. State starts zeroed: on the very first step the
// derivative term equals error/dt, since PrevError defaults to 0. That is the
// defined initial-condition behavior, not a transient to be skipped.
func NewPIDController(kp, ki, kd, errorThreshold float64) *PIDController {
	return &PIDController{
		Kp:             kp,
		Ki:             ki,
		Kd:             kd,
		ErrorThreshold: errorThreshold,
	}
}

// Compute advances the controller by one step of length dt and returns the
// controller output for the measured temperature, along with the individual
// terms for monitoring. No output clamping is applied at this layer; actuator
// saturation is a plant or driver policy.
func (p *PIDController) Compute(setpoint, measured, dt float64) (float64, PIDTerms, error) {
	if dt <= 0 {
		return 0, PIDTerms{}, &ConfigError{Field: "dt", Value: dt, Reason: "must be positive"}
	}

	// Calculate error
	error := setpoint - measured

	// Integral gating: accumulate only inside the threshold band, freeze
	// outside it
	if abs(error) <= p.ErrorThreshold {
		p.state.Integral += error * dt
	}

	// Derivative term (derivative-of-error form)
	derivative := (error - p.state.PrevError) / dt

	output := p.Kp*error + p.Ki*p.state.Integral + p.Kd*derivative

	// PrevError tracks the raw error unconditionally, independent of the
	// integral gate
	p.state.PrevError = error

	terms := PIDTerms{
		P:     p.Kp * error,
		I:     p.Ki * p.state.Integral,
		D:     p.Kd * derivative,
		Error: error,
	}

	return output, terms, nil
}

// Reset clears the controller state (useful for testing or reusing a
// controller across runs)
func (p *PIDController) Reset() {
	p.state = ControllerState{}
}

// State returns a copy of the current controller state for inspection
func (p *PIDController) State() ControllerState {
	return p.state
}

// abs returns the absolute value of v
func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
