package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/myohand/internal/logic"
	"github.com/sweeney/myohand/internal/status"
)

func readStatus(t *testing.T, conn *websocket.Conn) status.StatusJSON {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sj status.StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return sj
}

func TestLiveStreamsSnapshots(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.NewConfig(50*time.Millisecond, 0, logic.DefaultConfig()))
	srv := New(":0", tr)
	srv.liveInterval = 10 * time.Millisecond
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readStatus(t, conn)
	if first.Status.Gesture != "UNKNOWN" {
		t.Errorf("first gesture: got %q, want UNKNOWN", first.Status.Gesture)
	}

	tr.Update(logic.Decision{Raw: 900, Filtered: 617, Gesture: logic.GestureClose, Active: true}, logic.CycleCounts{Cycles: 11}, 900)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sj := readStatus(t, conn)
		if sj.Status.Gesture == "CLOSE" {
			if sj.Status.Filtered != 617 || sj.Status.Counts.Cycles != 11 {
				t.Errorf("got filtered=%d cycles=%d", sj.Status.Filtered, sj.Status.Counts.Cycles)
			}
			return
		}
	}
	t.Fatal("update never reached the websocket")
}

func TestLiveRejectsPlainHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/ws")
	if err != nil {
		t.Fatalf("GET /ws: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
