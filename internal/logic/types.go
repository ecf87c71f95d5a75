// Package logic contains the pure signal-to-gesture decision pipeline.
// This package has NO external dependencies (no serial, servo, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters or a Clock.
package logic

import "time"

// Gesture is the command the classifier hands to the actuator.
type Gesture string

const (
	GestureOpen  Gesture = "OPEN"
	GestureClose Gesture = "CLOSE"
	// GestureIdle means "hold the current position".
	GestureIdle Gesture = "IDLE"
)

// Toggle returns the gesture that follows g on an activation edge.
func (g Gesture) Toggle() Gesture {
	if g == GestureOpen {
		return GestureClose
	}
	return GestureOpen
}

// Edge describes which transition, if any, a cycle confirmed.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeActivation
	EdgeDeactivation
)

func (e Edge) String() string {
	switch e {
	case EdgeActivation:
		return "ACTIVATION"
	case EdgeDeactivation:
		return "DEACTIVATION"
	default:
		return "NONE"
	}
}

// Clock supplies the time used for debouncing. It must be monotonic:
// time.Now readings carry a monotonic component, so Sub between two of them
// is unaffected by wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to a Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the process clock.
var SystemClock Clock = ClockFunc(time.Now)

// Step is the full outcome of one classifier evaluation.
type Step struct {
	Gesture    Gesture // held level after this cycle
	Active     bool    // muscle state after this cycle
	Suppressed bool    // cycle fell inside the debounce window
	Edge       Edge
}

// Decision is the result of one pipeline cycle.
type Decision struct {
	Timestamp time.Time
	Raw       int
	Denoised  int
	Filtered  int
	Gesture   Gesture
	Active    bool
	// Suppressed is true when the classifier ignored this cycle because the
	// last transition is younger than the debounce time.
	Suppressed bool
	Edge       Edge
}

// Command is the gesture sent to the actuator this cycle: IDLE while the
// debounce window is open, otherwise the held gesture.
func (d Decision) Command() Gesture {
	if d.Suppressed {
		return GestureIdle
	}
	return d.Gesture
}

// CycleCounts tracks what the pipeline has seen since startup.
type CycleCounts struct {
	Cycles        int
	Suppressed    int
	Activations   int
	Deactivations int
	Opens         int
	Closes        int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Gesture   Gesture
	Active    bool
	Counts    CycleCounts
}
