package game

import (
	"math"
	"math/rand/v2"
)

const (
	colorMin   = 0.3
	colorRange = 0.7
)

// RandomColor draws each channel uniformly from [0.3, 1.0)
func RandomColor(rng *rand.Rand) Color {
	return Color{R: channel(rng), G: channel(rng), B: channel(rng)}
}

func channel(rng *rand.Rand) float32 {
	v := colorMin + rng.Float32()*colorRange
	if v >= 1 {
		v = math.Nextafter32(1, 0)
	}
	return v
}
