package game

import "github.com/guillu97/battlestar/internal/physics"

// GameState is a full snapshot of the world
type GameState struct {
	Ships     []Ship     `json:"ships" msgpack:"ships"`
	Asteroids []Asteroid `json:"asteroids" msgpack:"asteroids"`
	Tick      uint64     `json:"tick" msgpack:"tick"`
}

// DeltaState carries per-ship motion for one tick. Asteroids are only sent
// in full snapshots.
type DeltaState struct {
	Tick           uint64       `json:"tick" msgpack:"tick"`
	ChangedShips   []ShipUpdate `json:"changed_ships" msgpack:"changed_ships"`
	RemovedShipIDs []uint32     `json:"removed_ship_ids" msgpack:"removed_ship_ids"`
	IsFullState    bool         `json:"is_full_state" msgpack:"is_full_state"`
}

// ShipUpdate is the compact per-ship record of a delta. Color is present only
// when the ship spawned or respawned this tick, or on a full-state tick.
type ShipUpdate struct {
	ID           uint32       `json:"id" msgpack:"id"`
	Position     physics.Vec2 `json:"position" msgpack:"position"`
	Velocity     physics.Vec2 `json:"velocity" msgpack:"velocity"`
	Rotation     float32      `json:"rotation" msgpack:"rotation"`
	Color        *Color       `json:"color,omitempty" msgpack:"color,omitempty"`
	IsInvincible bool         `json:"is_invincible,omitempty" msgpack:"is_invincible,omitempty"`
}

// NewShipUpdate builds an update from s, attaching the color when includeColor is set
func NewShipUpdate(s *Ship, includeColor, invincible bool) ShipUpdate {
	u := ShipUpdate{
		ID:           s.ID,
		Position:     s.Position,
		Velocity:     s.Velocity,
		Rotation:     s.Rotation,
		IsInvincible: invincible,
	}
	if includeColor {
		c := s.Color
		u.Color = &c
	}
	return u
}

// HasChanges reports whether the delta carries anything
func (d *DeltaState) HasChanges() bool {
	return len(d.ChangedShips) > 0 || len(d.RemovedShipIDs) > 0
}
