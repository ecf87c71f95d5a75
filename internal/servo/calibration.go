package servo

import (
	"encoding/json"
	"fmt"
	"os"
)

// FingerCalibration maps a finger's angle range onto raw servo steps.
type FingerCalibration struct {
	ID     int `json:"id"`
	Open   int `json:"open"`   // raw position at 0 degrees
	Closed int `json:"closed"` // raw position at 180 degrees
}

// Calibration holds calibration data for all fingers, keyed by finger.
type Calibration map[Finger]FingerCalibration

// DefaultCalibration assigns bus IDs 1-5 and a half-turn stroke around the
// STS center position.
func DefaultCalibration() Calibration {
	cal := make(Calibration, NumFingers)
	for _, f := range AllFingers() {
		cal[f] = FingerCalibration{ID: int(f) + 1, Open: 1024, Closed: 3072}
	}
	return cal
}

// LoadCalibration loads calibration data from a JSON file keyed by finger
// name. Fingers missing from the file keep their default calibration.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration file: %w", err)
	}

	var raw map[string]FingerCalibration
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse calibration JSON: %w", err)
	}

	cal := DefaultCalibration()
	for name, fc := range raw {
		f, ok := fingerByName(name)
		if !ok {
			return nil, fmt.Errorf("calibration: unknown finger %q", name)
		}
		cal[f] = fc
	}

	return cal, nil
}

func fingerByName(name string) (Finger, bool) {
	for i, n := range fingerNames {
		if n == name {
			return Finger(i), true
		}
	}
	return 0, false
}

// Raw converts an angle to a raw servo position.
func (c FingerCalibration) Raw(degrees int) int {
	degrees = ClampAngle(degrees)
	return c.Open + (c.Closed-c.Open)*degrees/AngleMax
}

// IDs returns the servo IDs in finger order.
func (c Calibration) IDs() []int {
	ids := make([]int, 0, len(c))
	for _, f := range AllFingers() {
		if fc, ok := c[f]; ok {
			ids = append(ids, fc.ID)
		}
	}
	return ids
}
