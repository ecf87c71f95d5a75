package servo

import (
	"context"
	"log"

	"github.com/sweeney/myohand/internal/logic"
)

// FakeHand records commands for test assertions.
type FakeHand struct {
	// Gestures contains every gesture passed to Apply, IDLE included.
	Gestures []logic.Gesture

	// Positions holds the current angle of each finger.
	Positions [NumFingers]int

	// ApplyError, if set, will be returned by Apply.
	ApplyError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeHand creates an open FakeHand.
func NewFakeHand() *FakeHand {
	return &FakeHand{}
}

// Apply records the gesture and moves the recorded finger positions.
func (f *FakeHand) Apply(ctx context.Context, g logic.Gesture) error {
	if f.ApplyError != nil {
		return f.ApplyError
	}
	f.Gestures = append(f.Gestures, g)
	if angle, ok := GestureAngle(g); ok {
		for i := range f.Positions {
			f.Positions[i] = angle
		}
	}
	return nil
}

// SetPosition records one finger's angle.
func (f *FakeHand) SetPosition(ctx context.Context, finger Finger, degrees int) error {
	if err := checkFinger(finger); err != nil {
		return err
	}
	f.Positions[finger] = ClampAngle(degrees)
	return nil
}

// Close marks the hand as closed.
func (f *FakeHand) Close() error {
	f.Closed = true
	return nil
}

// LogHand stands in for a missing actuator: it logs gesture changes only.
type LogHand struct {
	last logic.Gesture
}

// NewLogHand creates a LogHand.
func NewLogHand() *LogHand {
	return &LogHand{}
}

// Apply logs OPEN/CLOSE when it differs from the previous command.
func (h *LogHand) Apply(ctx context.Context, g logic.Gesture) error {
	if _, ok := GestureAngle(g); !ok || g == h.last {
		return nil
	}
	h.last = g
	log.Printf("servo: (no actuator) hand %s", g)
	return nil
}

// SetPosition validates the finger and logs the move.
func (h *LogHand) SetPosition(ctx context.Context, f Finger, degrees int) error {
	if err := checkFinger(f); err != nil {
		return err
	}
	log.Printf("servo: (no actuator) %s -> %d", f, ClampAngle(degrees))
	return nil
}

// Close is a no-op.
func (h *LogHand) Close() error {
	return nil
}
