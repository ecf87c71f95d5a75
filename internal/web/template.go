package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/myohand/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"gestureClass": func(s string) string {
		switch s {
		case "OPEN":
			return "open"
		case "CLOSE":
			return "close"
		case "IDLE":
			return "idle"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Myoelectric Hand</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: green; font-weight: bold; }
.close { color: #06c; font-weight: bold; }
.idle { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Myoelectric Hand</h1>

<h2>Gesture</h2>
<table>
<tr><th>Held gesture</th><td id="gesture" class="{{gestureClass (printf "%s" .Gesture)}}">{{orUnknown (printf "%s" .Gesture)}}</td></tr>
<tr><th>Last command</th><td id="command" class="{{gestureClass (printf "%s" .Command)}}">{{orUnknown (printf "%s" .Command)}}</td></tr>
<tr><th>Muscle</th><td id="active">{{if .Active}}contracted{{else}}relaxed{{end}}</td></tr>
</table>

<h2>Signal</h2>
<table>
<tr><th>Raw</th><td id="raw">{{.Raw}}</td></tr>
<tr><th>Filtered</th><td id="filtered">{{.Filtered}}</td></tr>
<tr><th>Window average</th><td id="window">{{.WindowAverage}}</td></tr>
<tr><th>Thresholds</th><td>{{.Config.ActivationThreshold}} / {{.Config.DeactivationThreshold}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} / {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Cycle Counts</h2>
<table>
<tr><th>Cycles</th><td>{{.Counts.Cycles}}</td></tr>
<tr><th>Debounce suppressed</th><td>{{.Counts.Suppressed}}</td></tr>
<tr><th>Contractions</th><td>{{.Counts.Activations}}</td></tr>
<tr><th>Releases</th><td>{{.Counts.Deactivations}}</td></tr>
<tr><th>OPEN</th><td>{{.Counts.Opens}}</td></tr>
<tr><th>CLOSE</th><td>{{.Counts.Closes}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.Sensor}}</td></tr>
<tr><th>Servo bus</th><td>{{if .Config.ServoPort}}{{.Config.ServoPort}}{{else}}none{{end}}</td></tr>
<tr><th>Cycle</th><td>{{.Config.CycleMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Alpha</th><td>{{.Config.Alpha}}</td></tr>
<tr><th>Noise band</th><td>{{.Config.Center}} ± {{.Config.NoiseThreshold}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  function cls(g) {
    return g === "OPEN" ? "open" : g === "CLOSE" ? "close" : g === "IDLE" ? "idle" : "unknown";
  }
  function set(id, text, className) {
    var el = document.getElementById(id);
    el.textContent = text;
    if (className) el.className = className;
  }
  function update(s) {
    set("gesture", s.gesture, cls(s.gesture));
    set("command", s.command, cls(s.command));
    set("active", s.active ? "contracted" : "relaxed");
    set("raw", s.raw);
    set("filtered", s.filtered);
    set("window", s.window_average);
  }
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onmessage = function(ev) { update(JSON.parse(ev.data).status); };
    ws.onclose = function() { setTimeout(connect, 2000); };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
