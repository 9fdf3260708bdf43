// Package client mirrors the server world on the client side: it predicts the
// local ship with the shared physics kernel and reconciles predicted and
// remote ships toward authoritative updates.
package client

import (
	"github.com/guillu97/battlestar/internal/game"
	"github.com/guillu97/battlestar/internal/physics"
)

// Config tunes reconciliation
type Config struct {
	// SnapDistance is the wrap-aware distance beyond which state is replaced
	// outright instead of blended (respawns, long stalls).
	SnapDistance float32
	// LocalBlend is the fraction of the error corrected per update for the
	// predicted ship, RemoteBlend for everyone else.
	LocalBlend  float32
	RemoteBlend float32
	// InvincibilityTicks must match the server to read respawn_tick in snapshots
	InvincibilityTicks uint64
}

func DefaultConfig() Config {
	return Config{
		SnapDistance:       100,
		LocalBlend:         0.3,
		RemoteBlend:        0.25,
		InvincibilityTicks: game.DefaultInvincibilityTicks,
	}
}

// ShipState is the client's view of one ship
type ShipState struct {
	ID         uint32
	Position   physics.Vec2
	Velocity   physics.Vec2
	Rotation   float32
	Color      game.Color
	HasColor   bool
	Invincible bool
}

// Reconcile moves s toward the authoritative state. Beyond snap distance the
// state is replaced and true is returned. Otherwise position moves blend of
// the way along the short path across the world seam, rotation is
// interpolated by the same fraction and velocity is taken as is.
func Reconcile(s *ShipState, pos, vel physics.Vec2, rot, blend, snap, limit float32) bool {
	if physics.WrappedDistance(s.Position, pos, limit) > snap {
		s.Position = pos
		s.Velocity = vel
		s.Rotation = rot
		return true
	}

	s.Position.X += physics.WrappedDelta(s.Position.X, pos.X, limit) * blend
	s.Position.Y += physics.WrappedDelta(s.Position.Y, pos.Y, limit) * blend
	physics.WrapPosition(&s.Position, limit)
	s.Rotation = physics.LerpAngle(s.Rotation, rot, blend)
	s.Velocity = vel
	return false
}
