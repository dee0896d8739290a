package race

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/taigrr/tuikart/pkg/ai"
	"github.com/taigrr/tuikart/pkg/input"
	"github.com/taigrr/tuikart/pkg/vehicle"
)

const step = 1.0 / TickRate

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Track.Seed = 42
	cfg.Countdown = 0
	cfg.Logger = slog.New(slog.DiscardHandler)
	return cfg
}

func mustStart(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := Start(cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestStart(t *testing.T) {
	s := mustStart(t, testConfig())

	if s.ID == uuid.Nil {
		t.Error("session has no ID")
	}
	if got := len(s.Vehicles); got != 6 {
		t.Errorf("vehicles = %d, want 6", got)
	}
	if got := len(s.Controllers); got != 5 {
		t.Errorf("controllers = %d, want 5", got)
	}
	if s.Vehicles[len(s.Vehicles)-1] != s.Player {
		t.Error("player should start from the last grid slot")
	}
	for i, v := range s.Vehicles {
		if v.ID != i {
			t.Errorf("vehicle %d has ID %d", i, v.ID)
		}
		if v.TotalLaps != 3 {
			t.Errorf("vehicle %d laps = %d, want 3", i, v.TotalLaps)
		}
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero laps", func(c *Config) { c.Laps = 0 }},
		{"too many opponents", func(c *Config) { c.Opponents = MaxOpponents + 1 }},
		{"negative opponents", func(c *Config) { c.Opponents = -1 }},
		{"bad difficulty", func(c *Config) { c.Difficulty = ai.Expert + 1 }},
		{"bad mode", func(c *Config) { c.Mode = 9 }},
		{"negative countdown", func(c *Config) { c.Countdown = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := Start(cfg); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Start error = %v, want ErrInvalidParameter", err)
			}
		})
	}

	cfg := testConfig()
	cfg.Track.Segments = 0
	if _, err := Start(cfg); err == nil {
		t.Error("expected track generation error")
	}
}

func TestTimeTrialHasNoOpponents(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = TimeTrial
	s := mustStart(t, cfg)
	if len(s.Vehicles) != 1 || len(s.Controllers) != 0 {
		t.Errorf("vehicles=%d controllers=%d, want 1 and 0", len(s.Vehicles), len(s.Controllers))
	}
}

func TestGridDoesNotOverlap(t *testing.T) {
	cfg := testConfig()
	cfg.Opponents = MaxOpponents
	s := mustStart(t, cfg)

	for i, a := range s.Vehicles {
		for _, b := range s.Vehicles[i+1:] {
			if d := a.Position.Distance(b.Position); d < 2*vehicle.CollisionRadius {
				t.Errorf("%s and %s start %v apart", a.Name, b.Name, d)
			}
		}
	}
	if s.Player.Place != len(s.Vehicles) {
		t.Errorf("player starts in place %d, want %d", s.Player.Place, len(s.Vehicles))
	}
}

func TestCountdownFreezes(t *testing.T) {
	cfg := testConfig()
	cfg.Countdown = 1
	s := mustStart(t, cfg)
	start := s.Player.Position

	for range 30 {
		s.Tick(step, input.Input{Throttle: 1})
	}
	if s.Phase != Countdown {
		t.Fatalf("phase = %v, want countdown", s.Phase)
	}
	if s.Player.Position != start {
		t.Error("player moved during the countdown")
	}

	for range 40 {
		s.Tick(step, input.Input{Throttle: 1})
	}
	if s.Phase != Running {
		t.Fatalf("phase = %v, want running", s.Phase)
	}
	if s.Player.Speed == 0 {
		t.Error("player did not move after the start")
	}
}

func TestAIDecidesBeforePhysics(t *testing.T) {
	s := mustStart(t, testConfig())
	s.Tick(step, input.Input{})

	// The controllers set throttle this tick and physics consumed it.
	for _, c := range s.Controllers {
		if c.Vehicle().Speed == 0 {
			t.Errorf("%s did not move on the first tick", c.Vehicle().Name)
		}
	}
	if s.Player.Speed != 0 {
		t.Errorf("idle player moved at speed %v", s.Player.Speed)
	}
}

func TestTimeLimitEndsRace(t *testing.T) {
	cfg := testConfig()
	cfg.TimeLimit = 2
	s := mustStart(t, cfg)

	for range 200 {
		s.Tick(step, input.Input{Throttle: 1})
	}
	if s.Phase != Over {
		t.Fatalf("phase = %v, want over", s.Phase)
	}
	ticks := s.Ticks
	s.Tick(step, input.Input{Throttle: 1})
	if s.Ticks != ticks {
		t.Error("session kept ticking after the race ended")
	}
	if math.Abs(s.Elapsed-2) > step {
		t.Errorf("elapsed = %v, want about 2", s.Elapsed)
	}
}

func TestPauseAndReset(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = TimeTrial
	s := mustStart(t, cfg)
	s.Tick(step, input.Input{Buttons: input.ButtonPause})
	if !s.Paused || s.Ticks != 0 {
		t.Fatalf("paused=%v ticks=%d, want paused before any tick", s.Paused, s.Ticks)
	}
	s.Tick(step, input.Input{Throttle: 1})
	if s.Ticks != 0 {
		t.Error("paused session ticked")
	}
	s.Tick(step, input.Input{Buttons: input.ButtonPause})
	if s.Paused || s.Ticks != 1 {
		t.Errorf("paused=%v ticks=%d after unpausing", s.Paused, s.Ticks)
	}

	for range 60 {
		s.Tick(step, input.Input{Throttle: 1})
	}
	s.Tick(step, input.Input{Buttons: input.ButtonReset})
	if s.Player.Speed > 1 {
		t.Errorf("speed after reset = %v, want near standstill", s.Player.Speed)
	}
}

func TestStandingsOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Opponents = 3
	s := mustStart(t, cfg)
	a, b, c, d := s.Vehicles[0], s.Vehicles[1], s.Vehicles[2], s.Vehicles[3]

	a.CurrentLap, a.CurrentCheckpoint, a.TrackProgress = 1, 1, 0.3
	b.CurrentLap, b.CurrentCheckpoint, b.TrackProgress = 1, 2, 0.1
	c.CurrentLap, c.CurrentCheckpoint, c.TrackProgress = 1, 2, 0.6
	d.Finished = true
	s.finishOrder = []*vehicle.Vehicle{d}

	got := s.Standings()
	want := []*vehicle.Vehicle{d, c, b, a}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("place %d = %s, want %s", i+1, got[i].Name, want[i].Name)
		}
	}

	res := s.Results()
	if res[0].Name != d.Name || res[0].Points != 10 || !res[0].Player {
		t.Errorf("winner result = %+v", res[0])
	}
}

func TestPoints(t *testing.T) {
	want := []int{0, 10, 8, 6, 5, 4, 3, 2, 1, 0}
	for place, w := range want {
		if got := Points(place); got != w {
			t.Errorf("Points(%d) = %d, want %d", place, got, w)
		}
	}
}

func TestChampionship(t *testing.T) {
	cfg := testConfig()
	cfg.TimeLimit = 1
	gp, err := NewChampionship(cfg, 2)
	if err != nil {
		t.Fatalf("NewChampionship: %v", err)
	}

	var seeds []uint32
	for !gp.Done() {
		s, err := gp.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		seeds = append(seeds, s.Track.Seed)
		for s.Phase != Over {
			s.Tick(step, input.Input{Throttle: 1})
		}
		gp.Record(s.Results())
	}
	if seeds[0] == seeds[1] {
		t.Errorf("rounds share seed %d", seeds[0])
	}
	if _, err := gp.Next(); err == nil {
		t.Error("expected error after the last round")
	}

	standings := gp.Standings()
	if len(standings) != 6 {
		t.Fatalf("standings = %d drivers, want 6", len(standings))
	}
	total := 0
	for i, st := range standings {
		total += st.Points
		if i > 0 && st.Points > standings[i-1].Points {
			t.Errorf("standings not sorted at %d", i)
		}
	}
	// Places 1-6 are worth 36 points per round.
	if total != 72 {
		t.Errorf("total points = %d, want 72", total)
	}
}

func TestChampionshipRecord(t *testing.T) {
	gp, err := NewChampionship(testConfig(), 3)
	if err != nil {
		t.Fatalf("NewChampionship: %v", err)
	}
	gp.Record([]Result{{Name: "a", Points: 10}, {Name: "b", Points: 8}})
	gp.Record([]Result{{Name: "b", Points: 10}, {Name: "a", Points: 8}})
	gp.Record([]Result{{Name: "b", Points: 10}, {Name: "a", Points: 8}})

	got := gp.Standings()
	if got[0] != (Standing{"b", 28}) || got[1] != (Standing{"a", 26}) {
		t.Errorf("standings = %+v", got)
	}
	if _, err := NewChampionship(testConfig(), 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero races error = %v", err)
	}
}

func TestClock(t *testing.T) {
	c := NewClock(TickRate)

	total := 0
	for range 60 {
		total += c.Advance(1.0 / 60)
	}
	if total < 59 || total > 60 {
		t.Errorf("one second of frames ran %d ticks", total)
	}

	// A long stall is capped.
	if n := c.Advance(5); n > 7 {
		t.Errorf("stall produced %d ticks, want at most 7", n)
	}
	if n := c.Advance(-1); n != 0 {
		t.Errorf("negative frame produced %d ticks", n)
	}
	if a := c.Alpha(); a < 0 || a >= 1 {
		t.Errorf("alpha = %v, want [0, 1)", a)
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.TimeLimit = 0.5
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	s := mustStart(t, cfg)
	for s.Phase != Over {
		s.Tick(step, input.Input{})
	}

	out := buf.String()
	for _, want := range []string{"race started", "race over", s.ID.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{SingleRace, GrandPrix, TimeTrial} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("drift"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown mode error = %v", err)
	}
}

func TestAutoPilot(t *testing.T) {
	cfg := testConfig()
	cfg.AutoPilot = true
	s := mustStart(t, cfg)
	for range 60 {
		s.Tick(step, input.Input{})
	}
	if s.Player.Speed == 0 {
		t.Error("autopilot did not drive the player")
	}
}

func TestRaceFinishes(t *testing.T) {
	for _, seed := range []uint32{1, 42} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Track.Seed = seed
			cfg.AutoPilot = true
			cfg.TimeLimit = 0
			cfg.Logger = slog.New(slog.DiscardHandler)
			s := mustStart(t, cfg)

			const limit = 20 * 60 * TickRate
			for i := 0; i < limit && s.Phase != Over; i++ {
				s.Tick(step, input.Input{})
			}
			if s.Phase != Over {
				t.Fatalf("race still %v after %v simulated seconds", s.Phase, s.Elapsed)
			}
			for _, v := range s.Vehicles {
				if !v.Finished || v.CurrentLap != cfg.Laps {
					t.Errorf("%s: finished = %v, lap = %d, want finished on lap %d", v.Name, v.Finished, v.CurrentLap, cfg.Laps)
				}
			}
			if got := len(s.Standings()); got != len(s.Vehicles) {
				t.Errorf("standings = %d, want %d", got, len(s.Vehicles))
			}
		})
	}
}
