// Package gpio drives the status LED with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// LED is a single output line.
type LED interface {
	// Set turns the LED on or off.
	Set(on bool) error

	// Close turns the LED off and releases the line.
	Close() error
}

// DefaultPinLED is the BCM line of the status LED.
const DefaultPinLED = 13
