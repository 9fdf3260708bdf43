package physics

// Distance returns the distance between two points
func Distance(a, b Vec2) float32 {
	return a.DistanceTo(b)
}

// CheckCollision reports whether two circles overlap. Touching circles do not collide.
func CheckCollision(posA Vec2, radiusA float32, posB Vec2, radiusB float32) bool {
	return Distance(posA, posB) < radiusA+radiusB
}
