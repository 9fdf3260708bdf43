// Package game implements the authoritative world: ships, asteroids, the
// per-tick simulation and its wire snapshots.
package game

import "github.com/guillu97/battlestar/internal/physics"

// Color is an RGB triple; spawn colors are drawn from [0.3, 1.0) per channel
type Color struct {
	R float32 `json:"r" msgpack:"r"`
	G float32 `json:"g" msgpack:"g"`
	B float32 `json:"b" msgpack:"b"`
}

// Ship is a player-controlled ship
type Ship struct {
	ID       uint32       `json:"id" msgpack:"id"`
	Position physics.Vec2 `json:"position" msgpack:"position"`
	Velocity physics.Vec2 `json:"velocity" msgpack:"velocity"`
	Rotation float32      `json:"rotation" msgpack:"rotation"`
	Color    Color        `json:"color" msgpack:"color"`
	// RespawnTick is the tick of the last respawn. It is kept after the
	// invincibility window ends and simply ignored.
	RespawnTick *uint64 `json:"respawn_tick,omitempty" msgpack:"respawn_tick,omitempty"`
}

// NewShip creates a ship at the origin
func NewShip(id uint32, color Color) *Ship {
	return &Ship{ID: id, Color: color}
}

// ApplyInput moves the ship one step under player control
func (s *Ship) ApplyInput(in physics.Input, dt float32, c physics.Constants) {
	physics.ApplyShipPhysics(&s.Position, &s.Velocity, &s.Rotation, in, dt, c)
}

// Update moves the ship one step without input (drag, integrate, wrap)
func (s *Ship) Update(dt float32, c physics.Constants) {
	physics.Integrate(&s.Position, &s.Velocity, dt, c)
}

// Respawn resets the ship to the origin and starts its invincibility window
func (s *Ship) Respawn(tick uint64) {
	s.Position = physics.Zero
	s.Velocity = physics.Zero
	s.Rotation = 0
	s.RespawnTick = &tick
}

// IsInvincible reports whether tick falls inside [RespawnTick, RespawnTick+window).
// The subtraction is modular so the window survives tick wraparound.
func (s *Ship) IsInvincible(tick, window uint64) bool {
	if s.RespawnTick == nil {
		return false
	}
	return tick-*s.RespawnTick < window
}
