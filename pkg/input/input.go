// Package input defines the normalized per-tick control contract shared by
// players and AI, and the sources that produce it.
package input

import (
	"math"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// Buttons is a bitmask of edge-triggered actions.
type Buttons uint8

const (
	ButtonPause Buttons = 1 << iota
	ButtonReset
	ButtonCamera
)

// Has reports whether every bit in b is set.
func (bs Buttons) Has(b Buttons) bool {
	return bs&b == b
}

// Input is one tick of controls.
type Input struct {
	Steering float64 // [-1, 1], positive turns toward increasing yaw
	Throttle float64 // [0, 1]
	Brake    float64 // [0, 1]
	Buttons  Buttons
}

// Clamp returns in with every axis forced into range. NaN maps to zero.
func (in Input) Clamp() Input {
	in.Steering = math3d.Clamp(finite(in.Steering), -1, 1)
	in.Throttle = math3d.Clamp(finite(in.Throttle), 0, 1)
	in.Brake = math3d.Clamp(finite(in.Brake), 0, 1)
	return in
}

func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Source produces the controls for the next tick.
type Source interface {
	Poll() Input
}
