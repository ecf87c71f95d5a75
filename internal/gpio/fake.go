package gpio

// FakeLED records LED changes for test assertions.
type FakeLED struct {
	// On is the current LED state.
	On bool

	// History contains every value passed to Set.
	History []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeLED creates a FakeLED that is off.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// Set records the new state.
func (f *FakeLED) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.History = append(f.History, on)
	return nil
}

// Close turns the LED off and marks it closed.
func (f *FakeLED) Close() error {
	f.On = false
	f.Closed = true
	return nil
}

// NopLED is used when no LED is wired.
type NopLED struct{}

// Set does nothing.
func (NopLED) Set(bool) error { return nil }

// Close does nothing.
func (NopLED) Close() error { return nil }
