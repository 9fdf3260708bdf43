// Package session holds the single shared aggregate that connections and the
// tick loop mutate: the world, each player's latest input, the connected set
// and per-player input rate limits. One mutex guards all of it.
package session

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/protocol"
)

const (
	DefaultTickRate         = 20
	DefaultMinInputInterval = 15 * time.Millisecond
)

// Config controls tick timing and input admission
type Config struct {
	TickRate         int
	MinInputInterval time.Duration
}

// DefaultConfig returns a 20 Hz configuration with a 15ms input interval
func DefaultConfig() Config {
	return Config{TickRate: DefaultTickRate, MinInputInterval: DefaultMinInputInterval}
}

// TickPeriod is the wall-clock duration of one tick
func (c Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Stats is a point-in-time view of the session
type Stats struct {
	Connected int    `json:"connected"`
	Ships     int    `json:"ships"`
	Tick      uint64 `json:"tick"`
}

// State is the shared session aggregate. Construct it once and pass it to the
// tick loop and to every connection.
type State struct {
	mu        sync.Mutex
	world     *game.World
	inputs    map[uint32]protocol.ClientInput
	connected map[uint32]struct{}
	limiters  map[uint32]*rate.Limiter
	removed   []uint32

	nextID atomic.Uint32

	dt       float32
	interval time.Duration
}

// New wraps world in a session
func New(world *game.World, cfg Config) *State {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	return &State{
		world:     world,
		inputs:    make(map[uint32]protocol.ClientInput),
		connected: make(map[uint32]struct{}),
		limiters:  make(map[uint32]*rate.Limiter),
		dt:        1 / float32(cfg.TickRate),
		interval:  cfg.MinInputInterval,
	}
}

// NextPlayerID returns a fresh id. Ids start at 1 and are never reused.
func (s *State) NextPlayerID() uint32 {
	return s.nextID.Add(1)
}

// Connect registers id as connected. Its ship spawns on the first applied input.
func (s *State) Connect(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected[id] = struct{}{}
}

// Disconnect forgets everything about id. If it had a ship, the removal is
// announced in the next delta.
func (s *State) Disconnect(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connected, id)
	delete(s.inputs, id)
	delete(s.limiters, id)
	if s.world.RemovePlayer(id) {
		s.removed = append(s.removed, id)
	}
}

// SubmitInput stores in as the latest input of id. The claimed player id is
// replaced with id. Inputs from unknown players or arriving sooner than the
// minimum interval after the last accepted one are dropped and false is returned.
func (s *State) SubmitInput(id uint32, in protocol.ClientInput, now time.Time) bool {
	in.PlayerID = id
	in.Clamp()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connected[id]; !ok {
		return false
	}
	lim, ok := s.limiters[id]
	if !ok {
		lim = rate.NewLimiter(rate.Every(s.interval), 1)
		s.limiters[id] = lim
	}
	if s.interval > 0 && !lim.AllowN(now, 1) {
		return false
	}
	s.inputs[id] = in
	return true
}

// Step applies every player's latest input, advances the world one tick and
// encodes the outbound message for each requested encoding. Inputs are kept
// so silent players keep their last control state. Full-state ticks produce
// a GameState, every other tick a DeltaState with queued removals.
func (s *State) Step(encs ...protocol.Encoding) (protocol.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint32, 0, len(s.inputs))
	for id := range s.inputs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		s.world.ApplyInput(id, s.inputs[id].Input(), s.dt)
	}

	s.world.Tick(s.dt)

	var msg protocol.Message
	if s.world.IsFullStateTick() {
		msg = protocol.NewGameState(s.world.ToNetworkState())
	} else {
		d := s.world.ToDeltaState()
		d.RemovedShipIDs = append(d.RemovedShipIDs, s.removed...)
		msg = protocol.NewDeltaState(d)
	}
	s.removed = s.removed[:0]

	return protocol.EncodeFrame(msg, encs...)
}

// Stats returns connection and world counters
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Connected: len(s.connected),
		Ships:     s.world.ShipCount(),
		Tick:      s.world.CurrentTick(),
	}
}

// DT is the simulation step in seconds
func (s *State) DT() float32 {
	return s.dt
}
