package ai

import (
	"fmt"
	"strings"
)

// Difficulty selects an opponent's driving profile.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

// Profile holds the tuning a difficulty maps to.
type Profile struct {
	Skill       float64 // steering gain multiplier
	Aggression  float64 // avoidance nudge strength
	ErrorRate   float64 // per-tick chance of a new wander bias
	SpeedFactor float64 // fraction of the vehicle's top speed used
	LookAhead   float64 // base target distance, world units
}

var profiles = [...]Profile{
	Easy:   {Skill: 0.6, Aggression: 0.2, ErrorRate: 0.15, SpeedFactor: 0.85, LookAhead: 15},
	Medium: {Skill: 0.75, Aggression: 0.4, ErrorRate: 0.08, SpeedFactor: 0.92, LookAhead: 20},
	Hard:   {Skill: 0.9, Aggression: 0.6, ErrorRate: 0.03, SpeedFactor: 0.97, LookAhead: 25},
	Expert: {Skill: 0.98, Aggression: 0.8, ErrorRate: 0.01, SpeedFactor: 1.0, LookAhead: 30},
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Expert
}

// Profile returns the tuning for d. Unknown values get Medium.
func (d Difficulty) Profile() Profile {
	if !d.Valid() {
		return profiles[Medium]
	}
	return profiles[d]
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty accepts a difficulty name, ignoring case.
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Expert; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidParameter, s)
}
