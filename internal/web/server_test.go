package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/myohand/internal/logic"
	"github.com/sweeney/myohand/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.NewConfig(50*time.Millisecond, 15*time.Minute, logic.DefaultConfig())
	cfg.Sensor = "serial:///dev/ttyUSB0"
	cfg.Broker = "tcp://192.168.1.200:1883"
	cfg.HTTPAddr = ":80"
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.Decision{Raw: 700, Filtered: 640, Gesture: logic.GestureClose, Active: true},
		logic.CycleCounts{Cycles: 12, Activations: 1, Closes: 1}, 610)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Gesture != "CLOSE" {
		t.Errorf("Gesture: got %q, want CLOSE", sj.Status.Gesture)
	}
	if !sj.Status.Active {
		t.Error("expected Active=true")
	}
	if sj.Status.Raw != 700 || sj.Status.Filtered != 640 || sj.Status.WindowAverage != 610 {
		t.Errorf("signal: got raw=%d filtered=%d avg=%d", sj.Status.Raw, sj.Status.Filtered, sj.Status.WindowAverage)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Cycles != 12 || sj.Status.Counts.Closes != 1 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config.CycleMs != 50 || sj.Status.Config.ActivationThreshold != 600 {
		t.Errorf("Config: got %+v", sj.Status.Config)
	}
}

func TestJSONUnknownGestureBeforeFirstCycle(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Gesture != "UNKNOWN" {
		t.Errorf("Gesture before first cycle: got %q, want UNKNOWN", sj.Status.Gesture)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.Decision{Raw: 700, Filtered: 640, Gesture: logic.GestureClose, Active: true}, logic.CycleCounts{}, 0)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	for _, want := range []string{`class="close">CLOSE</td>`, "contracted", "serial:///dev/ttyUSB0", "600 / 550"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "UNKNOWN") {
		t.Error("expected UNKNOWN gesture before first cycle")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestSnapshotIsNotCached(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control: got %q, want no-store", cc)
	}
}

func TestWriteMethodsRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/", "/index.json", "/ws"} {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.NewConfig(50*time.Millisecond, 15*time.Minute, logic.DefaultConfig()))
	srv := New("", tr)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.runOn(ctx, ln) }()

	getJSON(t, "http://"+ln.Addr().String()+"/index.json")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runOn: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Active {
		t.Error("expected Active=false initially")
	}

	tr.Update(logic.Decision{Gesture: logic.GestureOpen, Active: true, Suppressed: true}, logic.CycleCounts{Activations: 2}, 0)
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if !sj2.Status.Active {
		t.Error("expected Active=true after update")
	}
	if sj2.Status.Gesture != "OPEN" || sj2.Status.Command != "IDLE" {
		t.Errorf("got gesture=%q command=%q, want OPEN and IDLE", sj2.Status.Gesture, sj2.Status.Command)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestUptimeFormat(t *testing.T) {
	var sb strings.Builder
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	renderHTML(&sb, status.Snapshot{StartTime: start, Now: start.Add(26*time.Hour + 3*time.Minute + 4*time.Second)})
	if !strings.Contains(sb.String(), "1d 2h 3m 4s") {
		t.Error("expected uptime 1d 2h 3m 4s in page")
	}
}
