// Package status provides a thread-safe status tracker for the myohand daemon.
// The control loop writes it once per cycle; HTTP handlers read snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/myohand/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	CycleMs               int64
	DebounceMs            int64
	HeartbeatMs           int64
	ActivationThreshold   int
	DeactivationThreshold int
	Alpha                 float64
	NoiseThreshold        int
	Center                int
	ADCMax                int
	Sensor                string
	ServoPort             string // empty = no actuator
	Broker                string // empty = telemetry off
	HTTPAddr              string
}

// NewConfig fills the pipeline fields of a display config from cfg.
func NewConfig(cycle time.Duration, heartbeat time.Duration, cfg logic.Config) Config {
	return Config{
		CycleMs:               cycle.Milliseconds(),
		DebounceMs:            cfg.DebounceTime.Milliseconds(),
		HeartbeatMs:           heartbeat.Milliseconds(),
		ActivationThreshold:   cfg.ActivationThreshold,
		DeactivationThreshold: cfg.DeactivationThreshold,
		Alpha:                 cfg.Alpha,
		NoiseThreshold:        cfg.NoiseThreshold,
		Center:                cfg.Center,
		ADCMax:                cfg.ADCMax,
	}
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Raw           int
	Filtered      int
	WindowAverage int
	Gesture       logic.Gesture // held level; empty before the first cycle
	Command       logic.Gesture // last command sent to the hand
	Active        bool
	Counts        logic.CycleCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the latest decision, counters and window average.
// Called from runLoop on every cycle.
func (t *Tracker) Update(d logic.Decision, counts logic.CycleCounts, windowAverage int) {
	t.mu.Lock()
	t.snap.Raw = d.Raw
	t.snap.Filtered = d.Filtered
	t.snap.Gesture = d.Gesture
	t.snap.Command = d.Command()
	t.snap.Active = d.Active
	t.snap.Counts = counts
	t.snap.WindowAverage = windowAverage
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
