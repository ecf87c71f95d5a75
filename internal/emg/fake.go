package emg

import "errors"

// FakeSource is a test double that returns scripted samples.
type FakeSource struct {
	// Samples contains scripted raw values to return.
	// Each call to Read() consumes the next sample.
	Samples []int

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given samples.
func NewFakeSource(samples []int) *FakeSource {
	return &FakeSource{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSource) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the source to the beginning of samples.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Closed = false
}
