package game

import "github.com/guillu97/battlestar/internal/physics"

// Asteroid drifts at constant velocity and wraps around the world
type Asteroid struct {
	ID       uint32       `json:"id" msgpack:"id"`
	Position physics.Vec2 `json:"position" msgpack:"position"`
	Velocity physics.Vec2 `json:"velocity" msgpack:"velocity"`
	Radius   float32      `json:"radius" msgpack:"radius"`
}

// NewAsteroid creates an asteroid
func NewAsteroid(id uint32, pos, vel physics.Vec2, radius float32) Asteroid {
	return Asteroid{ID: id, Position: pos, Velocity: vel, Radius: radius}
}

// Update integrates position and wraps at the world edge
func (a *Asteroid) Update(dt, worldLimit float32) {
	a.Position.X += a.Velocity.X * dt
	a.Position.Y += a.Velocity.Y * dt
	physics.WrapPosition(&a.Position, worldLimit)
}

// DefaultAsteroids is the fixed field every world starts with
func DefaultAsteroids() []Asteroid {
	v := physics.V
	return []Asteroid{
		NewAsteroid(1, v(200, 100), v(20, 15), 20),
		NewAsteroid(2, v(-150, -120), v(-10, 25), 24),
		NewAsteroid(3, v(500, -400), v(-15, 20), 18),
		NewAsteroid(4, v(-600, 300), v(25, -10), 22),
		NewAsteroid(5, v(100, 600), v(-20, -15), 16),
		NewAsteroid(6, v(400, 400), v(10, -25), 20),
		NewAsteroid(7, v(-500, -500), v(15, 15), 25),
		NewAsteroid(8, v(700, -100), v(-10, 20), 19),
		NewAsteroid(9, v(-300, 700), v(18, -12), 21),
	}
}
