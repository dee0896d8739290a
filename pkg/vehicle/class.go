package vehicle

import (
	"fmt"
	"strings"
)

// Class holds the handling constants shared by every vehicle of a kind.
type Class struct {
	Name             string  `json:"name"`
	MaxSpeed         float64 `json:"max_speed"`         // units/s, horizontal
	AccelerationRate float64 `json:"acceleration_rate"` // units/s² at full throttle
	BrakeRate        float64 `json:"brake_rate"`        // units/s² at full brake
	SteeringRate     float64 `json:"steering_rate"`     // rad/s at full lock
	Grip             float64 `json:"grip"`              // 0-1, share of velocity realigned per tick
	Drag             float64 `json:"drag"`              // per-tick on-track velocity factor
}

// Built-in classes. Each accelerates hard enough to reach its top speed on
// track at 60 ticks per second.
var (
	Light = Class{
		Name:             "light",
		MaxSpeed:         50,
		AccelerationRate: 40,
		BrakeRate:        60,
		SteeringRate:     2.6,
		Grip:             0.95,
		Drag:             trackDrag,
	}
	Balanced = Class{
		Name:             "balanced",
		MaxSpeed:         55,
		AccelerationRate: 36,
		BrakeRate:        50,
		SteeringRate:     2.2,
		Grip:             0.9,
		Drag:             trackDrag,
	}
	Heavy = Class{
		Name:             "heavy",
		MaxSpeed:         60,
		AccelerationRate: 38,
		BrakeRate:        45,
		SteeringRate:     1.8,
		Grip:             0.8,
		Drag:             trackDrag,
	}
)

// Classes lists the built-in classes from lightest to heaviest.
var Classes = []Class{Light, Balanced, Heavy}

// ClassByName looks up a built-in class, ignoring case.
func ClassByName(name string) (Class, error) {
	for _, c := range Classes {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Class{}, fmt.Errorf("%w: unknown vehicle class %q", ErrInvalidParameter, name)
}

// Validate reports the first out-of-range constant.
func (c Class) Validate() error {
	switch {
	case !(c.MaxSpeed > 0):
		return fmt.Errorf("%w: max speed must be positive, got %v", ErrInvalidParameter, c.MaxSpeed)
	case !(c.AccelerationRate > 0):
		return fmt.Errorf("%w: acceleration rate must be positive, got %v", ErrInvalidParameter, c.AccelerationRate)
	case !(c.BrakeRate >= 0):
		return fmt.Errorf("%w: brake rate must not be negative, got %v", ErrInvalidParameter, c.BrakeRate)
	case !(c.SteeringRate > 0):
		return fmt.Errorf("%w: steering rate must be positive, got %v", ErrInvalidParameter, c.SteeringRate)
	case !(c.Grip > 0 && c.Grip <= 1):
		return fmt.Errorf("%w: grip must be in (0, 1], got %v", ErrInvalidParameter, c.Grip)
	case !(c.Drag > 0 && c.Drag <= 1):
		return fmt.Errorf("%w: drag must be in (0, 1], got %v", ErrInvalidParameter, c.Drag)
	}
	return nil
}
