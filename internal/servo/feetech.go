package servo

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/sweeney/myohand/internal/logic"
)

// servoGroup is the part of feetech.ServoGroup the hand uses.
type servoGroup interface {
	EnableAll(ctx context.Context) error
	DisableAll(ctx context.Context) error
	SetPositions(ctx context.Context, positions feetech.PositionMap) error
}

// FeetechHand drives five Feetech STS servos on one serial bus.
// Not safe for concurrent use.
type FeetechHand struct {
	bus         io.Closer
	group       servoGroup
	calibration Calibration
	last        logic.Gesture // last gesture written, "" if none
}

// NewFeetechHand opens the bus, enables torque and opens the hand.
func NewFeetechHand(ctx context.Context, port string, cal Calibration) (*FeetechHand, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open servo bus: %w", err)
	}

	group := feetech.NewServoGroupByIDs(bus, cal.IDs()...)
	h := newFeetechHand(bus, group, cal)

	if err := h.group.EnableAll(ctx); err != nil {
		bus.Close()
		return nil, fmt.Errorf("enable torque: %w", err)
	}
	if err := h.Apply(ctx, logic.GestureOpen); err != nil {
		bus.Close()
		return nil, fmt.Errorf("initial open: %w", err)
	}

	return h, nil
}

func newFeetechHand(bus io.Closer, group servoGroup, cal Calibration) *FeetechHand {
	return &FeetechHand{
		bus:         bus,
		group:       group,
		calibration: cal,
	}
}

// Apply moves all fingers for OPEN or CLOSE. Repeating the gesture last
// written is a no-op, so the held level does not flood the bus.
func (h *FeetechHand) Apply(ctx context.Context, g logic.Gesture) error {
	angle, ok := GestureAngle(g)
	if !ok || g == h.last {
		return nil
	}

	positions := make(feetech.PositionMap, len(h.calibration))
	for _, f := range AllFingers() {
		fc, ok := h.calibration[f]
		if !ok {
			continue
		}
		positions[fc.ID] = fc.Raw(angle)
	}

	if err := h.group.SetPositions(ctx, positions); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	h.last = g
	log.Printf("servo: hand %s", g)
	return nil
}

// SetPosition moves a single finger.
func (h *FeetechHand) SetPosition(ctx context.Context, f Finger, degrees int) error {
	if err := checkFinger(f); err != nil {
		return err
	}
	fc, ok := h.calibration[f]
	if !ok {
		return fmt.Errorf("%w: %s not calibrated", ErrInvalidFinger, f)
	}

	if err := h.group.SetPositions(ctx, feetech.PositionMap{fc.ID: fc.Raw(degrees)}); err != nil {
		return fmt.Errorf("write %s position: %w", f, err)
	}
	// The hand is no longer in a pure gesture pose.
	h.last = ""
	return nil
}

// Close disables torque and closes the bus.
func (h *FeetechHand) Close() error {
	var errs []error
	if err := h.group.DisableAll(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("disable torque: %w", err))
	}
	if err := h.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bus: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
