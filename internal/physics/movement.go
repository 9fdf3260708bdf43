package physics

import "math"

// Constants parameterize ship motion. Client and server must use the same values.
type Constants struct {
	ThrustAccel   float32 `json:"thrust_accel"`   // units/s²
	RotationSpeed float32 `json:"rotation_speed"` // radians/s
	MaxSpeed      float32 `json:"max_speed"`      // units/s
	Drag          float32 `json:"drag"`           // velocity multiplier per 1/60 s
	WorldLimit    float32 `json:"world_limit"`    // half-width of the toroidal world
	ShipRadius    float32 `json:"ship_radius"`
}

// DefaultConstants are the tuned gameplay values
func DefaultConstants() Constants {
	return Constants{
		ThrustAccel:   2000,
		RotationSpeed: 6,
		MaxSpeed:      1000,
		Drag:          0.98,
		WorldLimit:    2000,
		ShipRadius:    25,
	}
}

// Input is one frame of ship control
type Input struct {
	Thrust float32
	Rotate float32
}

// Clamp restricts both axes to [-1, 1]
func (in *Input) Clamp() {
	in.Thrust = Clamp(in.Thrust, -1, 1)
	in.Rotate = Clamp(in.Rotate, -1, 1)
}

// Clamp restricts v to [min, max]. NaN is mapped to 0.
func Clamp(v, min, max float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ApplyShipPhysics advances a controlled ship by dt. Rotation, thrust and drag
// math lives only here and in Integrate.
func ApplyShipPhysics(pos, vel *Vec2, rot *float32, in Input, dt float32, c Constants) {
	// positive rotate turns clockwise
	*rot -= in.Rotate * c.RotationSpeed * dt

	// heading is +Y at rotation 0
	sin, cos := math.Sincos(float64(*rot))
	vel.X -= in.Thrust * float32(sin) * c.ThrustAccel * dt
	vel.Y += in.Thrust * float32(cos) * c.ThrustAccel * dt

	Integrate(pos, vel, dt, c)
}

// Integrate applies drag, the speed cap, position integration and wrapping.
// It is the no-input update path.
func Integrate(pos, vel *Vec2, dt float32, c Constants) {
	drag := float32(math.Pow(float64(c.Drag), float64(dt*60)))
	vel.X *= drag
	vel.Y *= drag

	if speed := vel.Length(); speed > c.MaxSpeed {
		scale := c.MaxSpeed / speed
		vel.X *= scale
		vel.Y *= scale
	}

	pos.X += vel.X * dt
	pos.Y += vel.Y * dt

	WrapPosition(pos, c.WorldLimit)
}

// WrapPosition teleports a coordinate past the world edge to the opposite edge
func WrapPosition(p *Vec2, limit float32) {
	if p.X > limit {
		p.X = -limit
	} else if p.X < -limit {
		p.X = limit
	}
	if p.Y > limit {
		p.Y = -limit
	} else if p.Y < -limit {
		p.Y = limit
	}
}
