package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPIDController_Compute_Proportional tests the proportional term
func TestPIDController_Compute_Proportional(t *testing.T) {
	// Arrange - P-only controller, wide gating band
	pid := NewPIDController(2.0, 0.0, 0.0, 100.0)

	// Act - measured 20°C against a 180°C setpoint
	output, terms, err := pid.Compute(180.0, 20.0, 0.1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 160.0, terms.Error)
	assert.InDelta(t, 2.0*160.0, terms.P, 1e-9)
	// D = Kd * error/dt on the first step, but Kd is 0 here; the error of 160
	// is outside the gating band, so I stays 0 as well
	assert.Equal(t, 0.0, terms.D)
	assert.Equal(t, 0.0, terms.I)
	assert.InDelta(t, 320.0, output, 1e-9)
}

// TestPIDController_Compute_IntegralAccumulatesInsideThreshold tests integral
// accumulation when the error is within the gating band
func TestPIDController_Compute_IntegralAccumulatesInsideThreshold(t *testing.T) {
	// Arrange - error of 2.0 is inside the 5.0 threshold
	pid := NewPIDController(0.0, 1.0, 0.0, 5.0)

	// Act - two steps with a constant error of 2.0
	_, _, err := pid.Compute(100.0, 98.0, 0.1)
	require.NoError(t, err)
	_, terms, err := pid.Compute(100.0, 98.0, 0.1)
	require.NoError(t, err)

	// Assert - accumulator holds 2.0*0.1 per step
	assert.InDelta(t, 0.4, pid.State().Integral, 1e-12)
	assert.InDelta(t, 0.4, terms.I, 1e-12)
}

// TestPIDController_Compute_IntegralFrozenOutsideThreshold tests that the
// accumulator is bit-identical across steps while the error exceeds the
// threshold
func TestPIDController_Compute_IntegralFrozenOutsideThreshold(t *testing.T) {
	// Arrange - startup transient: error of 160 against a threshold of 5
	pid := NewPIDController(2.0, 0.5, 1.0, 5.0)

	// Act - many steps with a large error
	for i := 0; i < 100; i++ {
		_, _, err := pid.Compute(180.0, 20.0, 0.1)
		require.NoError(t, err)
	}

	// Assert - frozen at exactly zero, never touched
	assert.Equal(t, 0.0, pid.State().Integral)
}

// TestPIDController_Compute_IntegralFreezeResumes tests that accumulation
// resumes once the error re-enters the band
func TestPIDController_Compute_IntegralFreezeResumes(t *testing.T) {
	// Arrange
	pid := NewPIDController(0.0, 1.0, 0.0, 5.0)

	// Act - inside the band, outside, inside again
	pid.Compute(100.0, 97.0, 0.1) // error 3.0: accumulates 0.3
	pid.Compute(100.0, 80.0, 0.1) // error 20.0: frozen
	pid.Compute(100.0, 97.0, 0.1) // error 3.0: accumulates 0.3

	// Assert
	assert.InDelta(t, 0.6, pid.State().Integral, 1e-12)
}

// TestPIDController_Compute_DerivativeFirstStep tests the defined
// initial-condition behavior: PrevError starts at 0, so the first derivative
// equals error/dt
func TestPIDController_Compute_DerivativeFirstStep(t *testing.T) {
	// Arrange - D-only controller
	pid := NewPIDController(0.0, 0.0, 2.0, 100.0)

	// Act
	_, terms, err := pid.Compute(100.0, 90.0, 0.1)

	// Assert - D = Kd * (10 - 0)/0.1
	require.NoError(t, err)
	assert.InDelta(t, 200.0, terms.D, 1e-9)
}

// TestPIDController_Compute_DerivativeOfError tests the derivative-of-error
// form on subsequent steps
func TestPIDController_Compute_DerivativeOfError(t *testing.T) {
	// Arrange
	pid := NewPIDController(0.0, 0.0, 1.0, 100.0)

	// Act - error goes 10.0 -> 8.0
	pid.Compute(100.0, 90.0, 0.1)
	_, terms, err := pid.Compute(100.0, 92.0, 0.1)

	// Assert - (8 - 10)/0.1 = -20
	require.NoError(t, err)
	assert.InDelta(t, -20.0, terms.D, 1e-9)
}

// TestPIDController_Compute_PrevErrorUpdatedWhileGated tests that PrevError
// tracks the raw error even while the integral is frozen
func TestPIDController_Compute_PrevErrorUpdatedWhileGated(t *testing.T) {
	// Arrange - tight band so every error is outside it
	pid := NewPIDController(0.0, 1.0, 1.0, 0.5)

	// Act - two large errors
	pid.Compute(100.0, 20.0, 0.1) // error 80
	_, terms, err := pid.Compute(100.0, 30.0, 0.1) // error 70

	// Assert - integral frozen, derivative computed from the updated PrevError
	require.NoError(t, err)
	assert.Equal(t, 0.0, pid.State().Integral)
	assert.Equal(t, 70.0, pid.State().PrevError)
	assert.InDelta(t, (70.0-80.0)/0.1, terms.D, 1e-9)
}

// TestPIDController_Compute_NoOutputClamping tests that the controller does
// not saturate its output
func TestPIDController_Compute_NoOutputClamping(t *testing.T) {
	// Arrange - large gains, large error
	pid := NewPIDController(100.0, 0.0, 0.0, 1000.0)

	// Act
	output, _, err := pid.Compute(200.0, 0.0, 0.1)

	// Assert - output far beyond any physical heater range
	require.NoError(t, err)
	assert.Equal(t, 20000.0, output)
	// Negative outputs pass through unclamped as well
	output, _, err = pid.Compute(0.0, 200.0, 1000.0)
	require.NoError(t, err)
	assert.Less(t, output, 0.0)
}

// TestPIDController_Compute_InvalidTimeStep tests the dt <= 0 guard
func TestPIDController_Compute_InvalidTimeStep(t *testing.T) {
	// Arrange
	pid := NewPIDController(1.0, 1.0, 1.0, 5.0)

	// Act
	_, _, errZero := pid.Compute(100.0, 20.0, 0.0)
	_, _, errNeg := pid.Compute(100.0, 20.0, -0.1)

	// Assert
	require.Error(t, errZero)
	require.Error(t, errNeg)
	var configErr *ConfigError
	require.ErrorAs(t, errZero, &configErr)
	assert.Equal(t, "dt", configErr.Field)
}

// TestPIDController_Reset tests that Reset clears the accumulated state
func TestPIDController_Reset(t *testing.T) {
	// Arrange
	pid := NewPIDController(1.0, 1.0, 1.0, 100.0)
	pid.Compute(100.0, 98.0, 0.1)
	pid.Compute(100.0, 98.0, 0.1)
	require.NotEqual(t, ControllerState{}, pid.State())

	// Act
	pid.Reset()

	// Assert
	assert.Equal(t, ControllerState{}, pid.State())
}
