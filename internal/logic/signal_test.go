package logic

import (
	"math"
	"testing"
)

func TestDenoiseInsideBandReturnsCenter(t *testing.T) {
	d := NewDenoiser(512, 50)

	for s := 463; s <= 561; s++ {
		if got := d.Denoise(s); got != 512 {
			t.Errorf("Denoise(%d) = %d, want 512", s, got)
		}
	}
}

func TestDenoiseOutsideBandPassesThrough(t *testing.T) {
	d := NewDenoiser(512, 50)

	tests := []int{0, 100, 462, 562, 600, 1023}
	for _, s := range tests {
		if got := d.Denoise(s); got != s {
			t.Errorf("Denoise(%d) = %d, want %d", s, got, s)
		}
	}
}

func TestDenoiseBandEdges(t *testing.T) {
	d := NewDenoiser(512, 50)

	// |s-center| == threshold is outside the band.
	if got := d.Denoise(562); got != 562 {
		t.Errorf("Denoise(562) = %d, want 562", got)
	}
	if got := d.Denoise(462); got != 462 {
		t.Errorf("Denoise(462) = %d, want 462", got)
	}
	if got := d.Denoise(561); got != 512 {
		t.Errorf("Denoise(561) = %d, want 512", got)
	}
	if got := d.Denoise(463); got != 512 {
		t.Errorf("Denoise(463) = %d, want 512", got)
	}
}

func TestDenoiseZeroThresholdIsIdentity(t *testing.T) {
	d := NewDenoiser(512, 0)

	for _, s := range []int{0, 511, 512, 513, 1023} {
		if got := d.Denoise(s); got != s {
			t.Errorf("Denoise(%d) = %d, want %d", s, got, s)
		}
	}
}

func TestFilterStartsAtZero(t *testing.T) {
	f := NewFilter(0.1)

	if f.Value() != 0 {
		t.Errorf("initial state: got %v, want 0", f.Value())
	}
	if got := f.Filter(512); got != 51 {
		t.Errorf("first output: got %d, want 51", got)
	}
}

func TestFilterTruncates(t *testing.T) {
	f := NewFilter(0.5)

	// 0.5*3 = 1.5 -> 1
	if got := f.Filter(3); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if math.Abs(f.Value()-1.5) > 1e-9 {
		t.Errorf("state: got %v, want 1.5", f.Value())
	}
}

func TestFilterConvergesToConstantInput(t *testing.T) {
	for _, alpha := range []float64{0.05, 0.1, 0.5, 0.9} {
		f := NewFilter(alpha)
		for i := 0; i < 2000; i++ {
			f.Filter(700)
		}
		if math.Abs(f.Value()-700) > 1e-6 {
			t.Errorf("alpha=%v: state %v did not converge to 700", alpha, f.Value())
		}
	}
}

func TestFilterStepBoundedByPreviousAndInput(t *testing.T) {
	f := NewFilter(0.1)
	inputs := []int{512, 900, 900, 100, 0, 1023, 512, 600, 550}

	for i, in := range inputs {
		prev := f.Value()
		f.Filter(in)
		lo, hi := math.Min(prev, float64(in)), math.Max(prev, float64(in))
		if f.Value() < lo-1e-9 || f.Value() > hi+1e-9 {
			t.Errorf("step %d: state %v not within [%v, %v]", i, f.Value(), lo, hi)
		}
	}
}

func TestFiltersAreIndependent(t *testing.T) {
	a := NewFilter(0.1)
	b := NewFilter(0.1)

	a.Filter(1000)
	a.Filter(1000)

	if b.Value() != 0 {
		t.Errorf("second filter state changed: %v", b.Value())
	}
}
