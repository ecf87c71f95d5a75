package emg

import (
	"testing"
)

func TestParseSensor(t *testing.T) {
	tests := []struct {
		in   string
		want SensorSpec
	}{
		{"serial:///dev/ttyUSB0", SensorSpec{Kind: KindSerial, Port: "/dev/ttyUSB0", Baud: DefaultBaud}},
		{"serial:///dev/ttyACM1?baud=9600", SensorSpec{Kind: KindSerial, Port: "/dev/ttyACM1", Baud: 9600}},
		{"serial://COM3", SensorSpec{Kind: KindSerial, Port: "COM3", Baud: DefaultBaud}},
		{"iio://0/3", SensorSpec{Kind: KindIIO, Device: 0, Channel: 3}},
		{"iio://2/0", SensorSpec{Kind: KindIIO, Device: 2, Channel: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSensor(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSensorErrors(t *testing.T) {
	tests := []string{
		"",
		"/dev/ttyUSB0",
		"http://localhost",
		"serial://",
		"serial:///dev/ttyUSB0?baud=fast",
		"serial:///dev/ttyUSB0?baud=0",
		"iio://x/3",
		"iio://0/",
		"iio://0/-1",
	}

	for _, in := range tests {
		if _, err := ParseSensor(in); err == nil {
			t.Errorf("ParseSensor(%q): expected error", in)
		}
	}
}

func TestOpenIIO(t *testing.T) {
	src, err := Open(SensorSpec{Kind: KindIIO, Device: 0, Channel: 1}, 1023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iio, ok := src.(*IIOSource)
	if !ok {
		t.Fatalf("expected *IIOSource, got %T", src)
	}
	if iio.path != IIOPath(0, 1) {
		t.Errorf("path: got %q", iio.path)
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open(SensorSpec{Kind: "spi"}, 1023); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want int }{
		{-1, 0}, {0, 0}, {512, 512}, {1023, 1023}, {1024, 1023},
	}
	for _, tt := range tests {
		if got := clamp(tt.in, 1023); got != tt.want {
			t.Errorf("clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
