// Package physics holds the motion kernel shared by the authoritative
// simulation and client-side prediction.
package physics

import "math"

// Vec2 is a 2D vector used for positions and velocities
type Vec2 struct {
	X float32 `json:"x" msgpack:"x"`
	Y float32 `json:"y" msgpack:"y"`
}

// Zero is the origin
var Zero = Vec2{}

// V is shorthand for Vec2{x, y}
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the euclidean norm
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSquared())))
}

// DistanceTo returns the distance between v and o
func (v Vec2) DistanceTo(o Vec2) float32 {
	return v.Sub(o).Length()
}

// Normalized returns a unit vector, or v itself when it has zero length
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}
