//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLED drives an LED through the Linux GPIO character device.
type RealLED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLED requests pin as an output, initially off.
func NewRealLED(pin int) (*RealLED, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}

	return &RealLED{chip: chip, line: line}, nil
}

// Set drives the line high for on, low for off.
func (l *RealLED) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED: %w", err)
	}
	return nil
}

// Close turns the LED off and returns the pin to an input with pull-down,
// matching Pi boot defaults.
func (l *RealLED) Close() error {
	var errs []error

	if l.line != nil {
		if err := l.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear LED: %w", err))
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED pin: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED pin: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
