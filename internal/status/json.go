package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Gesture       string       `json:"gesture"`
	Command       string       `json:"command"`
	Active        bool         `json:"active"`
	Raw           int          `json:"raw"`
	Filtered      int          `json:"filtered"`
	WindowAverage int          `json:"window_average"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"cycle_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle counts.
type CountsJSON struct {
	Cycles        int `json:"cycles"`
	Suppressed    int `json:"suppressed"`
	Activations   int `json:"activations"`
	Deactivations int `json:"deactivations"`
	Opens         int `json:"opens"`
	Closes        int `json:"closes"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CycleMs               int64   `json:"cycle_ms"`
	DebounceMs            int64   `json:"debounce_ms"`
	HeartbeatMs           int64   `json:"heartbeat_ms"`
	ActivationThreshold   int     `json:"activation_threshold"`
	DeactivationThreshold int     `json:"deactivation_threshold"`
	Alpha                 float64 `json:"alpha"`
	NoiseThreshold        int     `json:"noise_threshold"`
	Center                int     `json:"center"`
	ADCMax                int     `json:"adc_max"`
	Sensor                string  `json:"sensor"`
	ServoPort             string  `json:"servo_port,omitempty"`
	Broker                string  `json:"broker"`
	HTTPAddr              string  `json:"http_addr"`
}

func orUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Gesture:       orUnknown(string(snap.Gesture)),
		Command:       orUnknown(string(snap.Command)),
		Active:        snap.Active,
		Raw:           snap.Raw,
		Filtered:      snap.Filtered,
		WindowAverage: snap.WindowAverage,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Cycles:        snap.Counts.Cycles,
			Suppressed:    snap.Counts.Suppressed,
			Activations:   snap.Counts.Activations,
			Deactivations: snap.Counts.Deactivations,
			Opens:         snap.Counts.Opens,
			Closes:        snap.Counts.Closes,
		},
		Config: ConfigJSON{
			CycleMs:               snap.Config.CycleMs,
			DebounceMs:            snap.Config.DebounceMs,
			HeartbeatMs:           snap.Config.HeartbeatMs,
			ActivationThreshold:   snap.Config.ActivationThreshold,
			DeactivationThreshold: snap.Config.DeactivationThreshold,
			Alpha:                 snap.Config.Alpha,
			NoiseThreshold:        snap.Config.NoiseThreshold,
			Center:                snap.Config.Center,
			ADCMax:                snap.Config.ADCMax,
			Sensor:                snap.Config.Sensor,
			ServoPort:             snap.Config.ServoPort,
			Broker:                snap.Config.Broker,
			HTTPAddr:              snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
