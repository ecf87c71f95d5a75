package emg

import (
	"errors"
	"testing"
)

func TestFakeSourceRead(t *testing.T) {
	f := NewFakeSource([]int{512, 700, 480})

	for i, want := range []int{512, 700, 480} {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 480 {
		t.Errorf("sample 3 (repeat): expected 480, got %d", got)
	}
}

func TestFakeSourceNoSamples(t *testing.T) {
	f := NewFakeSource(nil)

	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeSourceError(t *testing.T) {
	f := NewFakeSource([]int{512})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeSourceCloseAndReset(t *testing.T) {
	f := NewFakeSource([]int{100, 200})

	f.Read()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	if got, _ := f.Read(); got != 100 {
		t.Errorf("after reset: expected 100, got %d", got)
	}
}
