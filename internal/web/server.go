// Package web serves the hand's state over HTTP: an HTML status page, the
// same snapshot as JSON, and a websocket that streams it while the loop runs.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/myohand/internal/status"
)

// shutdownGrace bounds how long Run waits for in-flight page and JSON
// requests once its context is cancelled. Hijacked /ws connections are not
// tracked by Shutdown.
const shutdownGrace = 2 * time.Second

// Server exposes a status.Tracker. Handlers only read snapshots, so the
// control loop never waits on a slow browser.
type Server struct {
	httpServer   *http.Server
	tracker      *status.Tracker
	liveInterval time.Duration
}

// New builds a Server on addr with these routes:
//
//	GET /             HTML page with gesture, signal levels and grip state
//	GET /index.html   same page
//	GET /index.json   status snapshot as JSON
//	GET /ws           websocket pushing the JSON snapshot every liveInterval
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker, liveInterval: DefaultLiveInterval}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /index.html", s.handlePage)
	mux.HandleFunc("GET /index.json", s.handleSnapshot)
	mux.HandleFunc("GET /ws", s.handleLive)

	// No WriteTimeout: it would cut off /ws streams.
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.runOn(ctx, ln)
}

func (s *Server) runOn(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

// handleSnapshot serves the document /ws streams. It goes stale within one
// cycle, so caches are told not to keep it.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(status.FormatJSON(s.tracker.Snapshot()))
}
