package physics

import "math"

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	for a > math.Pi {
		a -= twoPi
	}
	for a < -math.Pi {
		a += twoPi
	}
	return a
}

// LerpAngle interpolates between two angles taking the short path
func LerpAngle(from, to, t float32) float32 {
	diff := NormalizeAngle(to - from)
	return from + diff*t
}

// WrappedDelta returns to-from on one axis of a toroidal world, choosing the
// short way across the seam when the raw delta exceeds half the world width.
func WrappedDelta(from, to, limit float32) float32 {
	d := to - from
	width := 2 * limit
	if d > limit {
		d -= width
	} else if d < -limit {
		d += width
	}
	return d
}

// WrappedDistance is the toroidal distance between a and b
func WrappedDistance(a, b Vec2, limit float32) float32 {
	return Vec2{X: WrappedDelta(a.X, b.X, limit), Y: WrappedDelta(a.Y, b.Y, limit)}.Length()
}
