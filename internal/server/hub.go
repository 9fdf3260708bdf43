package server

import (
	"sync"

	"github.com/guillu97/battlestar/internal/protocol"
)

const sendBufSize = 256

// Limits bounds concurrent connections
type Limits struct {
	PerIP int
	Total int
}

// DefaultLimits allows 5 connections per IP and 1000 overall
func DefaultLimits() Limits {
	return Limits{PerIP: 5, Total: 1000}
}

// Subscription is one connection's view of the broadcast feed. Frames arrive
// in tick order; a subscriber that falls sendBufSize frames behind misses
// frames until it catches up and resyncs on the next full state.
type Subscription struct {
	enc  protocol.Encoding
	send chan []byte
}

// C returns the channel of encoded frames. It is closed on Unsubscribe.
func (s *Subscription) C() <-chan []byte {
	return s.send
}

func (s *Subscription) Encoding() protocol.Encoding {
	return s.enc
}

// Hub fans each tick's frame out to every subscriber and admits connections
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}

	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	limits     Limits
}

// NewHub creates a Hub enforcing limits
func NewHub(limits Limits) *Hub {
	return &Hub{
		subs:    make(map[*Subscription]struct{}),
		ipConns: make(map[string]int),
		limits:  limits,
	}
}

// Subscribe registers a subscriber wanting frames in enc
func (h *Hub) Subscribe(enc protocol.Encoding) *Subscription {
	sub := &Subscription{enc: enc, send: make(chan []byte, sendBufSize)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
}

// Broadcast queues f for every subscriber without blocking and returns how
// many subscribers received it. Having no subscribers is not an error.
func (h *Hub) Broadcast(f protocol.Frame) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for sub := range h.subs {
		payload := f.Payload(sub.enc)
		if payload == nil {
			continue
		}
		select {
		case sub.send <- payload:
			delivered++
		default:
			// subscriber too slow, drop frame
		}
	}
	return delivered
}

// Encodings returns the encodings current subscribers want
func (h *Hub) Encodings() []protocol.Encoding {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var want [2]bool
	for sub := range h.subs {
		want[sub.enc] = true
	}
	var encs []protocol.Encoding
	for _, enc := range protocol.Encodings {
		if want[enc] {
			encs = append(encs, enc)
		}
	}
	return encs
}

// SubscriberCount returns the number of subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.limits.Total {
		return false
	}
	if h.ipConns[ip] >= h.limits.PerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
