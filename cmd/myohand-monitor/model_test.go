package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/myohand/internal/mqtt"
)

func TestModelWaitsForTelemetry(t *testing.T) {
	m := initialModel(make(chan mqtt.EMGPayload), "tcp://broker:1883", 600, 1023)

	view := m.View()
	if !strings.Contains(view, "waiting for telemetry") {
		t.Errorf("expected waiting message, got:\n%s", view)
	}
	if !strings.Contains(view, "tcp://broker:1883") {
		t.Error("expected broker in header")
	}
}

func TestModelRecordsReading(t *testing.T) {
	m := initialModel(make(chan mqtt.EMGPayload), "tcp://broker:1883", 600, 1023)

	next, cmd := m.Update(readingMsg{Raw: 900, Filtered: 617, Gesture: "CLOSE", Command: "CLOSE", Active: true})
	if cmd == nil {
		t.Error("expected a command to wait for the next reading")
	}
	mm := next.(monitorModel)
	if mm.received != 1 || mm.last == nil || mm.last.Filtered != 617 {
		t.Fatalf("got received=%d last=%+v", mm.received, mm.last)
	}

	line := mm.statusLine()
	for _, want := range []string{"CLOSE", "contracted", "raw=900", "filtered=617"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line missing %q: %s", want, line)
		}
	}
}

func TestModelShowsDebounce(t *testing.T) {
	m := initialModel(make(chan mqtt.EMGPayload), "", 600, 1023)
	next, _ := m.Update(readingMsg{Gesture: "OPEN", Command: "IDLE", Suppressed: true})

	if line := next.(monitorModel).statusLine(); !strings.Contains(line, "debounce") {
		t.Errorf("expected debounce marker, got %s", line)
	}
}

func TestWaitForReading(t *testing.T) {
	ch := make(chan mqtt.EMGPayload, 1)
	ch <- mqtt.EMGPayload{Raw: 42}

	msg := waitForReading(ch)()
	if r, ok := msg.(readingMsg); !ok || r.Raw != 42 {
		t.Errorf("got %#v, want readingMsg with Raw=42", msg)
	}
}

func TestModelQuit(t *testing.T) {
	m := initialModel(make(chan mqtt.EMGPayload), "", 600, 1023)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if view := next.(monitorModel).View(); view != "Monitor stopped.\n" {
		t.Errorf("got view %q", view)
	}
}

func TestChartSizeMinimums(t *testing.T) {
	m := initialModel(make(chan mqtt.EMGPayload), "", 600, 1023)
	if w, h := m.chartSize(); w != 80 || h != 20 {
		t.Errorf("default size: got %dx%d, want 80x20", w, h)
	}

	m.width, m.height = 20, 8
	if w, h := m.chartSize(); w != 40 || h != 10 {
		t.Errorf("minimum size: got %dx%d, want 40x10", w, h)
	}
}
