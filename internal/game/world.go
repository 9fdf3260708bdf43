package game

import (
	"math/rand/v2"
	"slices"

	"github.com/guillu97/battlestar/internal/physics"
)

const (
	DefaultFullStateInterval  = 100
	DefaultInvincibilityTicks = 20
	// spatialCellSize is about twice the largest default entity radius
	spatialCellSize = 100
)

// Options configures a World
type Options struct {
	Constants          physics.Constants
	FullStateInterval  uint64
	InvincibilityTicks uint64
	Seed               uint64
	// Asteroids overrides the default field when non-nil
	Asteroids []Asteroid
}

// DefaultOptions returns options for a standard 20 Hz world
func DefaultOptions() Options {
	return Options{
		Constants:          physics.DefaultConstants(),
		FullStateInterval:  DefaultFullStateInterval,
		InvincibilityTicks: DefaultInvincibilityTicks,
		Seed:               1,
	}
}

// World is the authoritative simulation. It is not safe for concurrent use;
// the session layer serializes access.
type World struct {
	ships     map[uint32]*Ship
	asteroids []Asteroid
	tick      uint64
	constants physics.Constants

	// needsColor holds ships whose color goes out in the current delta.
	// spawnedPending collects spawns made between ticks so the reset at the
	// start of Tick does not drop them.
	needsColor     map[uint32]struct{}
	spawnedPending map[uint32]struct{}

	fullStateInterval  uint64
	invincibilityTicks uint64

	rng      *rand.Rand
	grid     *spatialGrid
	queryBuf []int

	// OnRespawn is called after a ship respawns from a collision
	OnRespawn func(id uint32, tick uint64)
}

// NewWorld creates a world with the configured asteroid field and no ships
func NewWorld(opts Options) *World {
	if opts.FullStateInterval == 0 {
		opts.FullStateInterval = DefaultFullStateInterval
	}
	asteroids := opts.Asteroids
	if asteroids == nil {
		asteroids = DefaultAsteroids()
	}
	return &World{
		ships:              make(map[uint32]*Ship),
		asteroids:          slices.Clone(asteroids),
		constants:          opts.Constants,
		needsColor:         make(map[uint32]struct{}),
		spawnedPending:     make(map[uint32]struct{}),
		fullStateInterval:  opts.FullStateInterval,
		invincibilityTicks: opts.InvincibilityTicks,
		rng:                rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		grid:               newSpatialGrid(opts.Constants.WorldLimit, spatialCellSize),
	}
}

func (w *World) CurrentTick() uint64 { return w.tick }

func (w *World) Constants() physics.Constants { return w.constants }

func (w *World) InvincibilityTicks() uint64 { return w.invincibilityTicks }

func (w *World) ShipCount() int { return len(w.ships) }

func (w *World) Asteroids() []Asteroid { return slices.Clone(w.asteroids) }

// IsFullStateTick reports whether the current tick is a scheduled full snapshot
func (w *World) IsFullStateTick() bool { return w.tick%w.fullStateInterval == 0 }

// Ship returns a copy of the ship with the given id
func (w *World) Ship(id uint32) (Ship, bool) {
	s, ok := w.ships[id]
	if !ok {
		return Ship{}, false
	}
	return *s, true
}

// SpawnPlayer creates a ship at the origin with a random color. An existing
// ship for id is returned unchanged.
func (w *World) SpawnPlayer(id uint32) *Ship {
	if s, ok := w.ships[id]; ok {
		return s
	}
	s := NewShip(id, RandomColor(w.rng))
	w.ships[id] = s
	w.spawnedPending[id] = struct{}{}
	return s
}

// RemovePlayer deletes the ship for id and reports whether it existed
func (w *World) RemovePlayer(id uint32) bool {
	if _, ok := w.ships[id]; !ok {
		return false
	}
	delete(w.ships, id)
	delete(w.needsColor, id)
	delete(w.spawnedPending, id)
	return true
}

// ApplyInput clamps in and steps the player's ship, spawning it first if the
// id has no ship yet.
func (w *World) ApplyInput(id uint32, in physics.Input, dt float32) {
	in.Clamp()
	s := w.SpawnPlayer(id)
	s.ApplyInput(in, dt, w.constants)
}

// Tick advances the world by one step: ships drift, asteroids move, and
// vulnerable ships touching an asteroid respawn at the origin.
func (w *World) Tick(dt float32) {
	w.tick++

	clear(w.needsColor)
	for id := range w.spawnedPending {
		w.needsColor[id] = struct{}{}
	}
	clear(w.spawnedPending)

	for _, s := range w.ships {
		s.Update(dt, w.constants)
	}
	w.grid.Clear()
	for i := range w.asteroids {
		a := &w.asteroids[i]
		a.Update(dt, w.constants.WorldLimit)
		w.grid.InsertCircle(a.Position, a.Radius, i)
	}

	for _, id := range w.sortedIDs() {
		s := w.ships[id]
		if s.IsInvincible(w.tick, w.invincibilityTicks) {
			continue
		}
		if w.hitsAsteroid(s) {
			s.Respawn(w.tick)
			w.needsColor[id] = struct{}{}
			if w.OnRespawn != nil {
				w.OnRespawn(id, w.tick)
			}
		}
	}
}

func (w *World) hitsAsteroid(s *Ship) bool {
	r := w.constants.ShipRadius
	w.queryBuf = w.grid.QueryBuf(s.Position, r, w.queryBuf[:0])
	for _, i := range w.queryBuf {
		a := &w.asteroids[i]
		if physics.CheckCollision(s.Position, r, a.Position, a.Radius) {
			return true
		}
	}
	return false
}

func (w *World) sortedIDs() []uint32 {
	ids := make([]uint32, 0, len(w.ships))
	for id := range w.ships {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ToNetworkState returns a full snapshot, ships ordered by id
func (w *World) ToNetworkState() GameState {
	ships := make([]Ship, 0, len(w.ships))
	for _, id := range w.sortedIDs() {
		s := *w.ships[id]
		if s.RespawnTick != nil {
			t := *s.RespawnTick
			s.RespawnTick = &t
		}
		ships = append(ships, s)
	}
	return GameState{
		Ships:     ships,
		Asteroids: slices.Clone(w.asteroids),
		Tick:      w.tick,
	}
}

// ToDeltaState returns one update per ship. RemovedShipIDs is left empty for
// the session layer to fill.
func (w *World) ToDeltaState() DeltaState {
	full := w.IsFullStateTick()
	d := DeltaState{
		Tick:           w.tick,
		ChangedShips:   make([]ShipUpdate, 0, len(w.ships)),
		RemovedShipIDs: []uint32{},
		IsFullState:    full,
	}
	for _, id := range w.sortedIDs() {
		s := w.ships[id]
		_, colored := w.needsColor[id]
		d.ChangedShips = append(d.ChangedShips,
			NewShipUpdate(s, colored || full, s.IsInvincible(w.tick, w.invincibilityTicks)))
	}
	return d
}
