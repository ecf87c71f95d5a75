// Package servo drives the five finger servos of the hand.
// The Feetech implementation talks to a serial servo bus; the fake records
// commands for tests.
package servo

import (
	"context"
	"errors"
	"fmt"

	"github.com/sweeney/myohand/internal/logic"
)

// ErrInvalidFinger is returned for a finger index outside the hand.
var ErrInvalidFinger = errors.New("servo: invalid finger")

// Finger identifies one servo of the hand.
type Finger int

// Fingers in servo order (bus IDs 1-5 by default).
const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// NumFingers is the number of servos in the hand.
const NumFingers = 5

// Finger angles in degrees.
const (
	AngleOpen   = 0
	AngleClosed = 180
	AngleMax    = 180
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if !f.Valid() {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// Valid reports whether f names a finger of the hand.
func (f Finger) Valid() bool {
	return f >= 0 && f < NumFingers
}

// AllFingers returns every finger in servo order.
func AllFingers() []Finger {
	return []Finger{Thumb, Index, Middle, Ring, Pinky}
}

// Hand positions the finger servos.
type Hand interface {
	// Apply moves every finger for OPEN or CLOSE. IDLE leaves the hand where
	// it is.
	Apply(ctx context.Context, g logic.Gesture) error

	// SetPosition moves one finger. Degrees are clamped to [0, 180].
	SetPosition(ctx context.Context, f Finger, degrees int) error

	// Close releases the actuator.
	Close() error
}

// GestureAngle returns the finger angle for a gesture, and false for IDLE
// (hold position).
func GestureAngle(g logic.Gesture) (int, bool) {
	switch g {
	case logic.GestureOpen:
		return AngleOpen, true
	case logic.GestureClose:
		return AngleClosed, true
	default:
		return 0, false
	}
}

// ClampAngle limits degrees to the servo range.
func ClampAngle(degrees int) int {
	if degrees < 0 {
		return 0
	}
	if degrees > AngleMax {
		return AngleMax
	}
	return degrees
}

func checkFinger(f Finger) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidFinger, int(f))
	}
	return nil
}
