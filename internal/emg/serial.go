package emg

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"
)

// SerialSource reads newline-delimited decimal samples streamed by a
// microcontroller. A reader goroutine keeps only the latest value, so Read
// never waits on the wire.
type SerialSource struct {
	port   io.ReadCloser
	adcMax int

	latest  atomic.Int64 // -1 until the first sample
	invalid atomic.Int64

	done    chan struct{}
	errMu   sync.Mutex
	readErr error
}

// OpenSerial opens the serial port and starts reading samples.
func OpenSerial(port string, baud, adcMax int) (*SerialSource, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return newSerialSource(p, adcMax), nil
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

func newSerialSource(r io.ReadCloser, adcMax int) *SerialSource {
	s := &SerialSource{
		port:   r,
		adcMax: adcMax,
		done:   make(chan struct{}),
	}
	s.latest.Store(-1)
	go s.readLoop()
	return s
}

// maxLineLen bounds one sample line. Longer runs without a newline are line
// noise and are skipped up to the next newline.
const maxLineLen = 64

func (s *SerialSource) readLoop() {
	defer close(s.done)

	r := bufio.NewReaderSize(s.port, maxLineLen)
	overlong := false
	for {
		line, err := r.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			if !overlong {
				s.reject(fmt.Sprintf("%q... (no newline in %d bytes)", line[:16], len(line)))
			}
			overlong = true
			continue
		}
		if len(line) > 0 {
			if overlong {
				// Tail of a run that already overflowed the buffer.
				overlong = false
			} else {
				s.handleLine(string(line))
			}
		}
		if err != nil {
			if err != io.EOF {
				s.errMu.Lock()
				s.readErr = err
				s.errMu.Unlock()
			}
			return
		}
	}
}

func (s *SerialSource) handleLine(line string) {
	v, ok := parseLine(line)
	if !ok {
		s.reject(fmt.Sprintf("%q", strings.TrimSpace(line)))
		return
	}
	s.latest.Store(int64(clamp(v, s.adcMax)))
}

func (s *SerialSource) reject(desc string) {
	if s.invalid.Add(1) == 1 {
		log.Printf("emg: ignoring malformed serial line %s", desc)
	}
}

// parseLine accepts "523", "523\r" and "EMG:523".
func parseLine(line string) (int, bool) {
	line = strings.TrimSpace(line)
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		line = strings.TrimSpace(line[i+1:])
	}
	if line == "" {
		return 0, false
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Read returns the latest sample, ErrNoSample before the first one, or the
// error that stopped the reader.
func (s *SerialSource) Read() (int, error) {
	select {
	case <-s.done:
		s.errMu.Lock()
		err := s.readErr
		s.errMu.Unlock()
		if err != nil {
			return 0, fmt.Errorf("serial read: %w", err)
		}
		return 0, io.ErrUnexpectedEOF
	default:
	}

	v := s.latest.Load()
	if v < 0 {
		return 0, ErrNoSample
	}
	return int(v), nil
}

// Invalid returns how many malformed lines were skipped.
func (s *SerialSource) Invalid() int64 {
	return s.invalid.Load()
}

// Close closes the port, which stops the reader goroutine.
func (s *SerialSource) Close() error {
	err := s.port.Close()
	<-s.done
	return err
}
