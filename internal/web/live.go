package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sweeney/myohand/internal/status"
)

// DefaultLiveInterval is how often /ws pushes a snapshot.
const DefaultLiveInterval = 200 * time.Millisecond

// The status page is served from the same host, but phones on the LAN may
// reach it by IP or mDNS name.
var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleLive streams the /index.json document over a websocket until the
// client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Drain client frames so close and ping are processed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.liveInterval)
	defer ticker.Stop()

	for {
		if err := s.writeSnapshot(conn); err != nil {
			return
		}
		select {
		case <-gone:
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	return conn.WriteMessage(websocket.TextMessage, status.FormatJSON(s.tracker.Snapshot()))
}
