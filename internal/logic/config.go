package logic

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Config holds the tuning constants of the pipeline. The thresholds, debounce
// time and alpha are calibrated against a fixed cycle period; changing the
// cadence without rescaling them changes the behaviour.
type Config struct {
	// ActivationThreshold is the filtered level a relaxed muscle must exceed
	// to count as contracted.
	ActivationThreshold int
	// DeactivationThreshold is the level a contracted muscle must stay above
	// to remain contracted. Must be below ActivationThreshold.
	DeactivationThreshold int
	// DebounceTime is the minimum time between two accepted transitions.
	DebounceTime time.Duration
	// Alpha is the low-pass smoothing constant, 0 < Alpha < 1.
	Alpha float64
	// NoiseThreshold is the half-width of the band around Center that is
	// treated as rest.
	NoiseThreshold int
	// Center is the ADC reading of a relaxed muscle.
	Center int
	// ADCMax is the largest raw sample the sensor produces.
	ADCMax int
}

// DefaultConfig returns the constants of a 10-bit ADC sampled at 20 Hz.
func DefaultConfig() Config {
	return Config{
		ActivationThreshold:   600,
		DeactivationThreshold: 550,
		DebounceTime:          200 * time.Millisecond,
		Alpha:                 0.1,
		NoiseThreshold:        50,
		Center:                512,
		ADCMax:                1023,
	}
}

// Validate reports every field that would make the pipeline misbehave.
func (c Config) Validate() error {
	var errs []error
	if c.DeactivationThreshold >= c.ActivationThreshold {
		errs = append(errs, fmt.Errorf("deactivation threshold %d must be below activation threshold %d",
			c.DeactivationThreshold, c.ActivationThreshold))
	}
	if c.DebounceTime <= 0 {
		errs = append(errs, fmt.Errorf("debounce time %v must be positive", c.DebounceTime))
	}
	// Written as a negation so NaN is rejected too.
	if !(c.Alpha > 0 && c.Alpha < 1) {
		errs = append(errs, fmt.Errorf("alpha %v must be in (0, 1)", c.Alpha))
	}
	if c.NoiseThreshold < 0 {
		errs = append(errs, fmt.Errorf("noise threshold %d must not be negative", c.NoiseThreshold))
	}
	if c.ADCMax <= 0 {
		errs = append(errs, fmt.Errorf("adc max %d must be positive", c.ADCMax))
	} else if c.Center < 0 || c.Center > c.ADCMax {
		errs = append(errs, fmt.Errorf("center %d must be within [0, %d]", c.Center, c.ADCMax))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
