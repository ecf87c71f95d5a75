// Package mqtt provides MQTT telemetry publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/myohand/internal/logic"
)

// Topic is the MQTT topic for per-cycle EMG readings.
const Topic = "prosthesis/hand/emg"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "prosthesis/hand/system"

// ClientID identifies the hand daemon to the broker.
const ClientID = "myohand"

// timestampFormat keeps millisecond resolution; readings arrive every 50ms.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Publisher publishes telemetry to MQTT.
type Publisher interface {
	// Publish sends one pipeline decision to the broker.
	// It must not block the control loop; errors are reported, never retried.
	Publish(d logic.Decision) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	EMG EMGPayload `json:"emg"`
}

// EMGPayload contains one cycle of the pipeline.
type EMGPayload struct {
	Timestamp  string `json:"timestamp"`
	Raw        int    `json:"raw"`
	Filtered   int    `json:"filtered"`
	Gesture    string `json:"gesture"`
	Command    string `json:"command"`
	Active     bool   `json:"active"`
	Suppressed bool   `json:"suppressed"`
}

// FormatPayload creates the JSON payload for a pipeline decision.
func FormatPayload(d logic.Decision) ([]byte, error) {
	payload := Payload{
		EMG: EMGPayload{
			Timestamp:  d.Timestamp.UTC().Format(timestampFormat),
			Raw:        d.Raw,
			Filtered:   d.Filtered,
			Gesture:    string(d.Gesture),
			Command:    string(d.Command()),
			Active:     d.Active,
			Suppressed: d.Suppressed,
		},
	}
	return json.Marshal(payload)
}

// ParsePayload decodes an EMG payload published by FormatPayload.
func ParsePayload(data []byte) (EMGPayload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return EMGPayload{}, fmt.Errorf("decode emg payload: %w", err)
	}
	if p.EMG.Timestamp == "" {
		return EMGPayload{}, fmt.Errorf("decode emg payload: missing emg object")
	}
	return p.EMG, nil
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
