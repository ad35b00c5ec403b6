package main

// ThermalPlant models the air-fryer cavity as a first-order thermal lag: the
// cavity temperature relaxes toward the heater drive level with time constant
// Tau. Disturbances bypass the lag entirely and enter the temperature
// derivative directly, since they represent external perturbation of the
// cavity air (e.g. cold air ingress when the drawer opens) rather than heater
// action.
type ThermalPlant struct {
	Tau float64 // Thermal time constant (s)
}

// NewThermalPlant creates a plant with the given time constant. Tau must be
// positive; the lag update divides by it.
func NewThermalPlant(tau float64) (*ThermalPlant, error) {
	if tau <= 0 {
		return nil, &ConfigError{Field: "tau", Value: tau, Reason: "must be positive"}
	}
	return &ThermalPlant{Tau: tau}, nil
}

// Step advances the cavity temperature by one interval of length dt under the
// given controller output and active disturbance value. Pure function of its
// inputs; the caller owns the temperature state. The plant imposes no
// temperature bounds of its own.
func (p *ThermalPlant) Step(current, controllerOutput, disturbance, dt float64) float64 {
	dTemp := (controllerOutput-current)/p.Tau + disturbance
	return current + dTemp*dt
}
