package logic

// Denoiser snaps readings close to the rest level onto it, so baseline jitter
// does not leak into the filter.
type Denoiser struct {
	center    int
	threshold int
}

// NewDenoiser creates a denoiser around center.
func NewDenoiser(center, threshold int) Denoiser {
	return Denoiser{center: center, threshold: threshold}
}

// Denoise returns the center when |signal-center| < threshold, signal otherwise.
func (d Denoiser) Denoise(signal int) int {
	diff := signal - d.center
	if diff < 0 {
		diff = -diff
	}
	if diff < d.threshold {
		return d.center
	}
	return signal
}

// Filter is a single-pole low-pass filter (exponential moving average).
// The state starts at 0.
type Filter struct {
	alpha float64
	state float64
}

// NewFilter creates a filter with smoothing constant alpha.
func NewFilter(alpha float64) *Filter {
	return &Filter{alpha: alpha}
}

// Filter feeds one sample and returns the new state truncated toward zero.
func (f *Filter) Filter(input int) int {
	f.state = f.alpha*float64(input) + (1-f.alpha)*f.state
	return int(f.state)
}

// Value returns the unrounded filter state.
func (f *Filter) Value() float64 {
	return f.state
}
