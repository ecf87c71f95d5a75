package logic

import "time"

// Classifier turns the filtered signal into an alternating OPEN/CLOSE level.
//
// Two thresholds give hysteresis: a relaxed muscle must rise above the
// activation threshold, a contracted one stays contracted while above the
// lower deactivation threshold. Both comparisons are strict, so a sample equal
// to a threshold neither activates nor keeps the muscle active. After any
// accepted transition the classifier ignores input for the debounce time.
//
// Only activation edges change the gesture: one contract/release cycle is one
// toggle.
type Classifier struct {
	activation   int
	deactivation int
	debounce     time.Duration

	active         bool
	lastTransition time.Time
	gesture        Gesture
}

// NewClassifier creates a relaxed classifier holding OPEN. The debounce window
// starts at start, so input is ignored for the first debounce period.
func NewClassifier(activation, deactivation int, debounce time.Duration, start time.Time) *Classifier {
	return &Classifier{
		activation:     activation,
		deactivation:   deactivation,
		debounce:       debounce,
		lastTransition: start,
		gesture:        GestureOpen,
	}
}

// Classify evaluates one cycle and returns the held gesture.
func (c *Classifier) Classify(filtered int, now time.Time) Gesture {
	return c.Step(filtered, now).Gesture
}

// Step evaluates one cycle and reports what happened.
func (c *Classifier) Step(filtered int, now time.Time) Step {
	if now.Sub(c.lastTransition) < c.debounce {
		return Step{Gesture: c.gesture, Active: c.active, Suppressed: true}
	}

	newActive := c.isActivated(filtered)
	if newActive == c.active {
		return Step{Gesture: c.gesture, Active: c.active}
	}

	c.active = newActive
	c.lastTransition = now
	if !newActive {
		return Step{Gesture: c.gesture, Active: false, Edge: EdgeDeactivation}
	}

	c.gesture = c.gesture.Toggle()
	return Step{Gesture: c.gesture, Active: true, Edge: EdgeActivation}
}

func (c *Classifier) isActivated(filtered int) bool {
	if c.active {
		return filtered > c.deactivation
	}
	return filtered > c.activation
}

// Active reports whether the muscle is currently considered contracted.
func (c *Classifier) Active() bool {
	return c.active
}

// Gesture returns the held gesture.
func (c *Classifier) Gesture() Gesture {
	return c.gesture
}

// LastTransition returns the time of the last accepted transition, or the
// start time if there has been none.
func (c *Classifier) LastTransition() time.Time {
	return c.lastTransition
}
