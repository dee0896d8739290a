// Package race orchestrates a race: it builds the track and grid, runs the
// per-tick order (AI, physics, collisions), keeps standings and tallies
// Grand Prix points.
package race

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taigrr/tuikart/pkg/ai"
	"github.com/taigrr/tuikart/pkg/track"
	"github.com/taigrr/tuikart/pkg/vehicle"
)

// ErrInvalidParameter is wrapped by configuration errors.
var ErrInvalidParameter = errors.New("invalid race parameter")

// MaxOpponents is the grid size minus the player.
const MaxOpponents = 7

// Mode is the kind of race.
type Mode int

const (
	SingleRace Mode = iota
	GrandPrix
	TimeTrial
)

func (m Mode) String() string {
	switch m {
	case SingleRace:
		return "single"
	case GrandPrix:
		return "grandprix"
	case TimeTrial:
		return "timetrial"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for m := SingleRace; m <= TimeTrial; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParameter, s)
}

// Config describes one race.
type Config struct {
	Mode       Mode
	Laps       int
	Opponents  int
	Difficulty ai.Difficulty
	Class      vehicle.Class
	Track      track.Params
	PlayerName string

	// Countdown is the frozen time before the start, in seconds.
	Countdown float64
	// TimeLimit ends the race after this many seconds; 0 disables it.
	TimeLimit float64
	// AutoPilot hands the player's car to an AI controller.
	AutoPilot bool

	Logger *slog.Logger
}

// DefaultConfig returns a three-lap single race against five opponents.
func DefaultConfig() Config {
	return Config{
		Mode:       SingleRace,
		Laps:       3,
		Opponents:  5,
		Difficulty: ai.Medium,
		Class:      vehicle.Balanced,
		Track:      track.DefaultParams(),
		PlayerName: "Player",
		Countdown:  3,
	}
}

// Validate reports the first invalid field. Track and class values are
// checked by their own packages when the race starts.
func (c Config) Validate() error {
	switch {
	case c.Mode < SingleRace || c.Mode > TimeTrial:
		return fmt.Errorf("%w: mode %d", ErrInvalidParameter, int(c.Mode))
	case c.Laps < 1:
		return fmt.Errorf("%w: laps must be at least 1, got %d", ErrInvalidParameter, c.Laps)
	case c.Opponents < 0 || c.Opponents > MaxOpponents:
		return fmt.Errorf("%w: opponents must be in 0..%d, got %d", ErrInvalidParameter, MaxOpponents, c.Opponents)
	case !c.Difficulty.Valid():
		return fmt.Errorf("%w: difficulty %d", ErrInvalidParameter, int(c.Difficulty))
	case c.Countdown < 0 || c.TimeLimit < 0:
		return fmt.Errorf("%w: countdown and time limit must not be negative", ErrInvalidParameter)
	}
	return nil
}

// opponentNames label AI cars in grid order.
var opponentNames = [MaxOpponents]string{
	"Bolt", "Comet", "Dash", "Ember", "Flux", "Glint", "Havoc",
}
