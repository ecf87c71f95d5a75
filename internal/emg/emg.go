// Package emg provides EMG sensor sources with hardware abstraction.
// The serial implementation reads a microcontroller streaming ADC samples,
// the IIO implementation reads a Linux industrial-I/O ADC channel, and the
// fake implementation allows testing without hardware.
package emg

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoSample is returned by Read before the first sample has arrived.
var ErrNoSample = errors.New("emg: no sample yet")

// Source reads the latest raw EMG sample.
type Source interface {
	// Read returns the most recent sample in [0, adcMax]. It never blocks
	// waiting for a new sample.
	Read() (int, error)

	// Close releases the underlying device.
	Close() error
}

// DefaultBaud is the serial speed of the sampling microcontroller.
const DefaultBaud = 115200

// Kind names a sensor transport.
type Kind string

const (
	KindSerial Kind = "serial"
	KindIIO    Kind = "iio"
)

// SensorSpec is a parsed -sensor flag.
type SensorSpec struct {
	Kind Kind

	// Serial
	Port string
	Baud int

	// IIO
	Device  int
	Channel int
}

// ParseSensor parses "serial://PATH[?baud=N]" or "iio://DEVICE/CHANNEL".
func ParseSensor(s string) (SensorSpec, error) {
	u, err := url.Parse(s)
	if err != nil {
		return SensorSpec{}, fmt.Errorf("parse sensor %q: %w", s, err)
	}

	switch Kind(u.Scheme) {
	case KindSerial:
		port := u.Host + u.Path
		if port == "" {
			return SensorSpec{}, fmt.Errorf("sensor %q: missing serial port", s)
		}
		baud := DefaultBaud
		if b := u.Query().Get("baud"); b != "" {
			baud, err = strconv.Atoi(b)
			if err != nil || baud <= 0 {
				return SensorSpec{}, fmt.Errorf("sensor %q: invalid baud %q", s, b)
			}
		}
		return SensorSpec{Kind: KindSerial, Port: port, Baud: baud}, nil

	case KindIIO:
		device, err := strconv.Atoi(u.Host)
		if err != nil || device < 0 {
			return SensorSpec{}, fmt.Errorf("sensor %q: invalid iio device %q", s, u.Host)
		}
		channel, err := strconv.Atoi(strings.TrimPrefix(u.Path, "/"))
		if err != nil || channel < 0 {
			return SensorSpec{}, fmt.Errorf("sensor %q: invalid iio channel %q", s, u.Path)
		}
		return SensorSpec{Kind: KindIIO, Device: device, Channel: channel}, nil

	default:
		return SensorSpec{}, fmt.Errorf("sensor %q: unsupported scheme %q", s, u.Scheme)
	}
}

// Open opens the source described by spec. Samples are clamped to [0, adcMax].
func Open(spec SensorSpec, adcMax int) (Source, error) {
	switch spec.Kind {
	case KindSerial:
		return OpenSerial(spec.Port, spec.Baud, adcMax)
	case KindIIO:
		return NewIIOSource(IIOPath(spec.Device, spec.Channel), adcMax), nil
	default:
		return nil, fmt.Errorf("open sensor: unsupported kind %q", spec.Kind)
	}
}

func clamp(v, adcMax int) int {
	if v < 0 {
		return 0
	}
	if v > adcMax {
		return adcMax
	}
	return v
}
