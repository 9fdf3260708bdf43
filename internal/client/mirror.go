package client

import (
	"slices"

	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/physics"
	"github.com/guillu97/battlestar/internal/protocol"
)

// Mirror is the client-side copy of the world. It is not safe for concurrent use.
type Mirror struct {
	cfg       Config
	constants physics.Constants

	localID   uint32
	local     *ShipState
	remote    map[uint32]*ShipState
	asteroids []game.Asteroid
	tick      uint64
	snaps     int
}

// NewMirror creates an empty mirror. constants must match the server.
func NewMirror(cfg Config, constants physics.Constants) *Mirror {
	return &Mirror{
		cfg:       cfg,
		constants: constants,
		remote:    make(map[uint32]*ShipState),
	}
}

// LocalID is the id assigned by Welcome, or 0 before it arrives
func (m *Mirror) LocalID() uint32 { return m.localID }

func (m *Mirror) Tick() uint64 { return m.tick }

// Snaps counts reconciliations that replaced the local ship outright
func (m *Mirror) Snaps() int { return m.snaps }

func (m *Mirror) Asteroids() []game.Asteroid { return slices.Clone(m.asteroids) }

// Local returns the predicted local ship
func (m *Mirror) Local() (ShipState, bool) {
	if m.local == nil {
		return ShipState{}, false
	}
	return *m.local, true
}

// Remote returns another player's ship
func (m *Mirror) Remote(id uint32) (ShipState, bool) {
	s, ok := m.remote[id]
	if !ok {
		return ShipState{}, false
	}
	return *s, true
}

// RemoteIDs lists the known remote ships in ascending order
func (m *Mirror) RemoteIDs() []uint32 {
	ids := make([]uint32, 0, len(m.remote))
	for id := range m.remote {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Predict steps the local ship with the same kernel the server runs
func (m *Mirror) Predict(in physics.Input, dt float32) {
	if m.local == nil {
		return
	}
	in.Clamp()
	physics.ApplyShipPhysics(&m.local.Position, &m.local.Velocity, &m.local.Rotation, in, dt, m.constants)
}

// Advance moves asteroids between snapshots
func (m *Mirror) Advance(dt float32) {
	for i := range m.asteroids {
		m.asteroids[i].Update(dt, m.constants.WorldLimit)
	}
}

// Apply folds a server message into the mirror
func (m *Mirror) Apply(msg protocol.Message) {
	switch msg := msg.(type) {
	case protocol.Welcome:
		m.localID = msg.AssignedID
		m.local = &ShipState{ID: msg.AssignedID}
		delete(m.remote, msg.AssignedID)
	case protocol.GameState:
		m.applyFull(msg.GameState)
	case protocol.DeltaState:
		m.applyDelta(msg.DeltaState)
	}
}

func (m *Mirror) applyFull(gs game.GameState) {
	m.tick = gs.Tick
	m.asteroids = slices.Clone(gs.Asteroids)

	seen := make(map[uint32]struct{}, len(gs.Ships))
	for i := range gs.Ships {
		s := &gs.Ships[i]
		seen[s.ID] = struct{}{}
		color := s.Color
		m.update(s.ID, s.Position, s.Velocity, s.Rotation, &color, s.IsInvincible(gs.Tick, m.cfg.InvincibilityTicks))
	}
	for id := range m.remote {
		if _, ok := seen[id]; !ok {
			delete(m.remote, id)
		}
	}
}

func (m *Mirror) applyDelta(d game.DeltaState) {
	m.tick = d.Tick
	for _, u := range d.ChangedShips {
		m.update(u.ID, u.Position, u.Velocity, u.Rotation, u.Color, u.IsInvincible)
	}
	for _, id := range d.RemovedShipIDs {
		delete(m.remote, id)
	}
}

func (m *Mirror) update(id uint32, pos, vel physics.Vec2, rot float32, color *game.Color, invincible bool) {
	limit := m.constants.WorldLimit
	var s *ShipState
	if m.local != nil && id == m.localID {
		s = m.local
		if Reconcile(s, pos, vel, rot, m.cfg.LocalBlend, m.cfg.SnapDistance, limit) {
			m.snaps++
		}
	} else if existing, ok := m.remote[id]; ok {
		s = existing
		Reconcile(s, pos, vel, rot, m.cfg.RemoteBlend, m.cfg.SnapDistance, limit)
	} else {
		// a ship is only drawn once its color is known
		if color == nil {
			return
		}
		s = &ShipState{ID: id, Position: pos, Velocity: vel, Rotation: rot}
		m.remote[id] = s
	}
	if color != nil {
		s.Color = *color
		s.HasColor = true
	}
	s.Invincible = invincible
}
