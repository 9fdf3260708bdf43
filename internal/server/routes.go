package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/guillu97/battlestar/internal/protocol"
	"github.com/guillu97/battlestar/internal/session"
)

// StatsResponse is served on /stats
type StatsResponse struct {
	session.Stats
	Subscribers int            `json:"subscribers"`
	Conns       int            `json:"conns"`
	Events      map[string]int `json:"events,omitempty"`
}

// Routes returns the HTTP handler: /ws for players, /health and /stats for
// operators. Non-WebSocket routes are access-logged.
func (s *Server) Routes() http.Handler {
	access := s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}).Writer()

	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	router.Handle("/health", handlers.CombinedLoggingHandler(access,
		http.HandlerFunc(handleHealth),
	)).Methods(http.MethodGet)
	router.Handle("/stats", handlers.CombinedLoggingHandler(access,
		http.HandlerFunc(s.handleStats),
	)).Methods(http.MethodGet)
	return router
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Stats:       s.state.Stats(),
		Subscribers: s.hub.SubscriberCount(),
		Conns:       s.hub.TotalConns(),
	}
	if events, err := s.tracker.EventCounts(1); err != nil {
		s.logger.Warn("analytics event counts", "err", err)
	} else {
		resp.Events = events
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip := extractIP(r)
	if !s.hub.CanAccept(ip) {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	s.hub.TrackConnect(ip)
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.TrackDisconnect(ip)
		s.logger.Warn("upgrade", "ip", ip, "err", err)
		return
	}

	enc := protocol.ParseEncoding(r.URL.Query().Get("enc"))
	go newConn(s, ws, enc, ip).Serve()
}
