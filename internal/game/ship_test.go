package game

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/guillu97/battlestar/internal/physics"
)

func TestShipInvincibilityWindow(t *testing.T) {
	s := NewShip(1, Color{R: 1, G: 1, B: 1})
	if s.IsInvincible(0, 20) {
		t.Error("never-respawned ship should not be invincible")
	}

	s.Respawn(10)
	cases := []struct {
		tick uint64
		want bool
	}{
		{10, true},
		{11, true},
		{29, true},
		{30, false},
		{500, false},
	}
	for _, c := range cases {
		if got := s.IsInvincible(c.tick, 20); got != c.want {
			t.Errorf("tick %d: invincible=%v, want %v", c.tick, got, c.want)
		}
	}
	if s.RespawnTick == nil || *s.RespawnTick != 10 {
		t.Error("respawn tick should be kept after the window ends")
	}
}

func TestShipInvincibilityAcrossWraparound(t *testing.T) {
	s := NewShip(1, Color{})
	s.Respawn(math.MaxUint64 - 5)
	if !s.IsInvincible(3, 20) {
		t.Error("window should survive tick counter wraparound")
	}
	if s.IsInvincible(14, 20) {
		t.Error("window should end 20 ticks after respawn")
	}
}

func TestShipRespawnResetsMotion(t *testing.T) {
	s := NewShip(3, Color{})
	s.Position = physics.V(120, -40)
	s.Velocity = physics.V(5, 5)
	s.Rotation = 1.2

	s.Respawn(42)

	if s.Position != physics.Zero || s.Velocity != physics.Zero || s.Rotation != 0 {
		t.Errorf("respawn should reset motion, got pos=%v vel=%v rot=%f", s.Position, s.Velocity, s.Rotation)
	}
}

func TestAsteroidMovesAndWraps(t *testing.T) {
	a := NewAsteroid(1, physics.V(0, 0), physics.V(20, -10), 20)
	a.Update(1, 2000)
	if a.Position != physics.V(20, -10) {
		t.Errorf("expected (20,-10), got %v", a.Position)
	}

	a.Position = physics.V(1995, 0)
	a.Update(1, 2000)
	if a.Position.X != -2000 {
		t.Errorf("expected wrap to -2000, got %f", a.Position.X)
	}
}

func TestDefaultAsteroidField(t *testing.T) {
	field := DefaultAsteroids()
	if len(field) != 9 {
		t.Fatalf("expected 9 asteroids, got %d", len(field))
	}
	seen := map[uint32]bool{}
	for _, a := range field {
		if seen[a.ID] {
			t.Errorf("duplicate asteroid id %d", a.ID)
		}
		seen[a.ID] = true
		if a.Radius <= 0 {
			t.Errorf("asteroid %d has radius %f", a.ID, a.Radius)
		}
	}
}

func TestRandomColorRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 1000; i++ {
		c := RandomColor(rng)
		for _, v := range []float32{c.R, c.G, c.B} {
			if v < 0.3 || v >= 1.0 {
				t.Fatalf("channel %f outside [0.3, 1.0)", v)
			}
		}
	}
}

func TestShipJSONShape(t *testing.T) {
	s := NewShip(5, Color{R: 0.5, G: 0.6, B: 0.7})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "respawn_tick") {
		t.Errorf("respawn_tick should be omitted when unset: %s", data)
	}

	s.Respawn(8)
	data, _ = json.Marshal(s)
	if !strings.Contains(string(data), `"respawn_tick":8`) {
		t.Errorf("respawn_tick missing: %s", data)
	}

	u := NewShipUpdate(s, false, false)
	data, _ = json.Marshal(u)
	if strings.Contains(string(data), "color") {
		t.Errorf("color should be omitted: %s", data)
	}
	u = NewShipUpdate(s, true, true)
	data, _ = json.Marshal(u)
	for _, key := range []string{`"color":{"r":0.5`, `"is_invincible":true`, `"position":{"x":0,"y":0}`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
}
