package emg

// DefaultWindowSize matches the sample history kept by the sensor firmware.
const DefaultWindowSize = 10

// Window is a fixed-size circular buffer of recent raw samples. It is a
// reported statistic only and does not feed the gesture decision.
// Not safe for concurrent use.
type Window struct {
	buf  []int
	next int
}

// NewWindow creates a zero-filled window of the given size (minimum 1).
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{buf: make([]int, size)}
}

// Add stores a sample, overwriting the oldest.
func (w *Window) Add(sample int) {
	w.buf[w.next] = sample
	w.next = (w.next + 1) % len(w.buf)
}

// Average returns the integer mean of the window, zero slots included.
func (w *Window) Average() int {
	var sum int64
	for _, v := range w.buf {
		sum += int64(v)
	}
	return int(sum / int64(len(w.buf)))
}

// Size returns the window length.
func (w *Window) Size() int {
	return len(w.buf)
}
