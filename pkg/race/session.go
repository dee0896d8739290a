package race

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taigrr/tuikart/pkg/ai"
	"github.com/taigrr/tuikart/pkg/input"
	"github.com/taigrr/tuikart/pkg/math3d"
	"github.com/taigrr/tuikart/pkg/track"
	"github.com/taigrr/tuikart/pkg/vehicle"
)

// Phase is the session's race state.
type Phase int

const (
	Countdown Phase = iota
	Running
	Over
)

func (p Phase) String() string {
	switch p {
	case Countdown:
		return "countdown"
	case Running:
		return "running"
	case Over:
		return "over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Grid spacing in world units.
const (
	gridFront = 1.0
	gridRow   = 4.0
)

// Session owns everything for one race: the track, every vehicle and the
// AI controllers. It is not safe for concurrent use.
type Session struct {
	ID     uuid.UUID
	Config Config
	Track  *track.Track
	Phase  Phase
	Paused bool

	// Vehicles in grid order; the player is last.
	Vehicles    []*vehicle.Vehicle
	Player      *vehicle.Vehicle
	Controllers []*ai.Controller

	Ticks     int
	Elapsed   float64 // race time since the start signal
	countdown float64

	finishOrder []*vehicle.Vehicle
	log         *slog.Logger
}

// Start generates the track, builds the grid and returns a session in the
// countdown phase.
func Start(cfg Config) (*Session, error) {
	if cfg.Mode == TimeTrial {
		cfg.Opponents = 0
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t, err := track.Generate(cfg.Track)
	if err != nil {
		return nil, fmt.Errorf("generate track: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		ID:        uuid.New(),
		Config:    cfg,
		Track:     t,
		countdown: cfg.Countdown,
	}
	s.log = log.With("session", s.ID.String())
	if s.countdown <= 0 {
		s.Phase = Running
	}

	total := cfg.Opponents + 1
	seed := uint64(cfg.Track.Seed) << 8
	for i := range cfg.Opponents {
		v, err := s.addVehicle(opponentNames[i], cfg.Class, i, total)
		if err != nil {
			return nil, err
		}
		c, err := ai.New(v, cfg.Difficulty, seed+uint64(i))
		if err != nil {
			return nil, fmt.Errorf("opponent %d: %w", i, err)
		}
		s.Controllers = append(s.Controllers, c)
	}

	name := cfg.PlayerName
	if name == "" {
		name = "Player"
	}
	s.Player, err = s.addVehicle(name, cfg.Class, cfg.Opponents, total)
	if err != nil {
		return nil, err
	}
	if cfg.AutoPilot {
		c, err := ai.New(s.Player, cfg.Difficulty, seed+uint64(cfg.Opponents))
		if err != nil {
			return nil, fmt.Errorf("autopilot: %w", err)
		}
		s.Controllers = append(s.Controllers, c)
	}

	s.updatePlaces()
	s.log.Info("race started",
		"mode", cfg.Mode,
		"seed", t.Seed,
		"segments", len(t.Segments),
		"length", t.TotalLength,
		"closure_gap", t.ClosureGap(),
		"laps", cfg.Laps,
		"opponents", cfg.Opponents,
		"difficulty", cfg.Difficulty,
	)
	return s, nil
}

func (s *Session) addVehicle(name string, c vehicle.Class, slot, total int) (*vehicle.Vehicle, error) {
	pos, dir := GridPosition(s.Track, slot, total)
	v, err := vehicle.New(name, c, pos, dir, s.Config.Laps)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", name, err)
	}
	v.ID = len(s.Vehicles)
	v.Segment = s.Track.NearestSegment(pos, -1)
	v.TrackProgress = s.Track.Progress(pos, v.Segment)
	s.Vehicles = append(s.Vehicles, v)
	return v, nil
}

// GridPosition returns the starting spot for slot (0 is pole) on a
// two-wide grid of total cars laid out along the start straight.
func GridPosition(t *track.Track, slot, total int) (math3d.Vec3, math3d.Vec3) {
	rows := (total + 1) / 2
	row := slot / 2
	d := gridFront + gridRow*float64(rows-1-row)
	pos, dir := t.PositionAt(d)

	width := t.Params.Width
	if len(t.Segments) > 0 {
		width = t.Segments[t.SegmentAt(d)].Width
	}
	lane := -1.0
	if slot%2 == 1 {
		lane = 1
	}
	return pos.Add(math3d.SideDir(dir.Yaw()).Scale(lane * width / 4)), dir
}

// Restart begins a fresh race with the same configuration.
func (s *Session) Restart() (*Session, error) {
	return Start(s.Config)
}

// CountdownRemaining returns the seconds left before the start.
func (s *Session) CountdownRemaining() float64 {
	return max(s.countdown, 0)
}

// Tick advances the race one fixed step. in is the player's input.
func (s *Session) Tick(dt float64, in input.Input) {
	if in.Buttons.Has(input.ButtonPause) && s.Phase != Over {
		s.Paused = !s.Paused
	}
	if s.Paused {
		return
	}

	switch s.Phase {
	case Over:
		return
	case Countdown:
		s.countdown -= dt
		if s.countdown > 0 {
			return
		}
		s.Phase = Running
		s.log.Debug("green flag")
	}

	if in.Buttons.Has(input.ButtonReset) {
		s.Player.Respawn(s.Track)
		s.log.Debug("player respawned", "progress", s.Player.TrackProgress)
	}
	if !s.Config.AutoPilot {
		if s.Player.Finished {
			in = input.Input{Brake: 0.3}
		}
		s.Player.SetControls(in)
	}

	for _, c := range s.Controllers {
		c.Update(s.Track, s.Vehicles, dt)
	}

	laps := make([]int, len(s.Vehicles))
	lapTimes := make([]float64, len(s.Vehicles))
	for i, v := range s.Vehicles {
		laps[i], lapTimes[i] = v.CurrentLap, v.LapTime
		v.Update(s.Track, dt)
	}

	vehicle.CollideAll(s.Vehicles)

	s.Ticks++
	s.Elapsed += dt
	for i, v := range s.Vehicles {
		if v.CurrentLap > laps[i] {
			s.log.Info("lap completed",
				"driver", v.Name,
				"lap", v.CurrentLap,
				"lap_time", lapTimes[i]+dt,
				"best", v.BestLapTime,
			)
		}
		if v.Finished && !s.hasFinished(v) {
			s.finishOrder = append(s.finishOrder, v)
			s.log.Info("driver finished", "driver", v.Name, "place", len(s.finishOrder), "time", v.TotalTime)
		}
	}
	s.updatePlaces()

	if s.done() {
		s.Phase = Over
		s.log.Info("race over", "ticks", s.Ticks, "elapsed", s.Elapsed, "winner", s.Leader().Name)
	}
}

func (s *Session) hasFinished(v *vehicle.Vehicle) bool {
	for _, f := range s.finishOrder {
		if f == v {
			return true
		}
	}
	return false
}

// done reports whether the race should end: everyone finished, or the time
// limit ran out.
func (s *Session) done() bool {
	if s.Config.TimeLimit > 0 && s.Elapsed >= s.Config.TimeLimit {
		return true
	}
	return len(s.finishOrder) == len(s.Vehicles)
}

// Leader returns the vehicle in first place.
func (s *Session) Leader() *vehicle.Vehicle {
	for _, v := range s.Vehicles {
		if v.Place == 1 {
			return v
		}
	}
	return s.Vehicles[0]
}
