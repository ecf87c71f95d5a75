package emg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIOPath returns the sysfs file of a raw voltage channel.
func IIOPath(device, channel int) string {
	return fmt.Sprintf("/sys/bus/iio/devices/iio:device%d/in_voltage%d_raw", device, channel)
}

// IIOSource reads a Linux industrial-I/O ADC channel through sysfs. Each Read
// triggers one conversion.
type IIOSource struct {
	path   string
	adcMax int
}

// NewIIOSource creates a source reading the given sysfs file.
func NewIIOSource(path string, adcMax int) *IIOSource {
	return &IIOSource{path: path, adcMax: adcMax}
}

// Read returns the current channel value.
func (s *IIOSource) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read iio channel: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse iio value %q: %w", strings.TrimSpace(string(data)), err)
	}
	return clamp(v, s.adcMax), nil
}

// Close is a no-op; the file is opened per read.
func (s *IIOSource) Close() error {
	return nil
}
