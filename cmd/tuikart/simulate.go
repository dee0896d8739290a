package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/taigrr/tuikart/pkg/input"
	"github.com/taigrr/tuikart/pkg/race"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// newTable returns a bordered table in the style every report shares.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// simulation is the JSON form of a headless run.
type simulation struct {
	Races     []raceReport    `json:"races"`
	Standings []race.Standing `json:"standings,omitempty"`
}

type raceReport struct {
	Session string        `json:"session"`
	Seed    uint32        `json:"seed"`
	Elapsed float64       `json:"elapsed"`
	Results []race.Result `json:"results"`
}

func simulateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	rc, err := cfg.RaceConfig()
	if err != nil {
		return err
	}
	limit := cmd.Float64("time-limit")
	if limit <= 0 {
		return fmt.Errorf("time limit must be positive, got %g", limit)
	}
	rc.TimeLimit = limit
	rc.AutoPilot = true
	rc.Logger = logger

	var out simulation
	if rc.Mode == race.GrandPrix {
		champ, err := race.NewChampionship(rc, cfg.GrandPrix)
		if err != nil {
			return err
		}
		for !champ.Done() {
			s, err := champ.Next()
			if err != nil {
				return err
			}
			if err := runHeadless(ctx, s); err != nil {
				return err
			}
			champ.Record(s.Results())
			out.Races = append(out.Races, report(s))
		}
		out.Standings = champ.Standings()
	} else {
		s, err := race.Start(rc)
		if err != nil {
			return err
		}
		if err := runHeadless(ctx, s); err != nil {
			return err
		}
		out.Races = append(out.Races, report(s))
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printSimulation(os.Stdout, out)
	return nil
}

// runHeadless ticks s at the fixed rate until the race is over.
func runHeadless(ctx context.Context, s *race.Session) error {
	idle := input.Constant(input.Input{})
	for s.Phase != race.Over {
		if s.Ticks%race.TickRate == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		s.Tick(1.0/race.TickRate, idle.Poll())
	}
	return nil
}

func report(s *race.Session) raceReport {
	return raceReport{
		Session: s.ID.String(),
		Seed:    s.Config.Track.Seed,
		Elapsed: s.Elapsed,
		Results: s.Results(),
	}
}

func printSimulation(w io.Writer, sim simulation) {
	for i, r := range sim.Races {
		if len(sim.Races) > 1 {
			fmt.Fprintf(w, "Race %d of %d\n", i+1, len(sim.Races))
		}
		fmt.Fprintf(w, "Seed %d, %s simulated\n", r.Seed, formatTime(r.Elapsed))
		t := newTable("Pos", "Driver", "Laps", "Best lap", "Time", "Pts")
		for _, res := range r.Results {
			total := formatTime(res.TotalTime)
			if !res.Finished {
				total = fmt.Sprintf("DNF %.0f%%", res.Progress*100)
			}
			t.Row(strconv.Itoa(res.Place), res.Name, strconv.Itoa(res.Laps),
				formatTime(res.BestLap), total, strconv.Itoa(res.Points))
		}
		fmt.Fprintln(w, t)
		fmt.Fprintln(w)
	}

	if len(sim.Standings) == 0 {
		return
	}
	fmt.Fprintln(w, "Championship")
	t := newTable("Pos", "Driver", "Pts")
	for i, st := range sim.Standings {
		t.Row(strconv.Itoa(i+1), st.Name, strconv.Itoa(st.Points))
	}
	fmt.Fprintln(w, t)
}
