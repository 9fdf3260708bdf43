package client

import "math"

// BlinkFrequency is the invincibility pulse rate in Hz
const BlinkFrequency = 3

// BlinkOpacity returns the draw opacity of a ship elapsed seconds into the
// game. Invincible ships pulse between 0.3 and 1.0.
func BlinkOpacity(invincible bool, elapsed float32) float32 {
	if !invincible {
		return 1
	}
	phase := float64(elapsed) * BlinkFrequency * 2 * math.Pi
	return 0.3 + 0.7*(float32(math.Sin(phase))*0.5+0.5)
}
