// Package server exposes the shared session over WebSocket: a broadcast hub,
// the fixed-rate tick loop and one goroutine pair per connection.
package server

import (
	"net"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/guillu97/battlestar/internal/analytics"
	"github.com/guillu97/battlestar/internal/session"
)

// Server ties the session, hub and optional analytics together
type Server struct {
	state    *session.State
	hub      *Hub
	tracker  *analytics.Tracker
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// New creates a Server. tracker may be nil.
func New(state *session.State, hub *Hub, tracker *analytics.Tracker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		state:   state,
		hub:     hub,
		tracker: tracker,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
	}
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients don't send Origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
