package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/guillu97/battlestar/internal/physics"
)

// LoadConstants reads physics constants from a JSON file. Keys missing from
// the file keep their default values. An empty path returns the defaults.
func LoadConstants(path string) (physics.Constants, error) {
	c := physics.DefaultConstants()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "read constants")
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, errors.Wrapf(err, "parse constants %s", path)
	}
	if err := validateConstants(c); err != nil {
		return c, errors.Wrapf(err, "constants %s", path)
	}
	return c, nil
}

func validateConstants(c physics.Constants) error {
	switch {
	case c.ThrustAccel < 0:
		return errors.New("thrust_accel must not be negative")
	case c.RotationSpeed < 0:
		return errors.New("rotation_speed must not be negative")
	case c.MaxSpeed <= 0:
		return errors.New("max_speed must be positive")
	case c.Drag <= 0 || c.Drag > 1:
		return errors.New("drag must be in (0, 1]")
	case c.WorldLimit <= 0:
		return errors.New("world_limit must be positive")
	case c.ShipRadius <= 0:
		return errors.New("ship_radius must be positive")
	}
	return nil
}
