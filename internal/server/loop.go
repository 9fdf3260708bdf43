package server

import (
	"context"
	"time"
)

// RunTickLoop advances the session once per period until ctx is done. The
// session lock is held only inside Step; broadcasting happens after it is
// released.
func (s *Server) RunTickLoop(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Server) tick() {
	frame, err := s.state.Step(s.hub.Encodings()...)
	if err != nil {
		s.logger.Error("encode tick", "err", err)
		return
	}
	s.hub.Broadcast(frame)
}
