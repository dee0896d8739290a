package main

import (
	"fmt"
	"math"

	"github.com/taigrr/tuikart/pkg/race"
	"github.com/taigrr/tuikart/pkg/render"
)

// formatTime renders seconds as m:ss.cc, or dashes before the first value.
func formatTime(t float64) string {
	if t <= 0 {
		return "-:--.--"
	}
	cs := int(math.Round(t * 100))
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, cs/100%60, cs%100)
}

func ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}

// drawHUD overlays race status text. champ is nil outside a Grand Prix.
func drawHUD(r render.Renderer, s *race.Session, champ *race.Championship, cols, rows int) {
	p := s.Player
	white, yellow, dim := render.ColorWhite, render.ColorYellow, render.RGB(170, 170, 170)

	lap := min(p.CurrentLap+1, p.TotalLaps)
	r.DrawText(1, 0, fmt.Sprintf(" LAP %d/%d ", lap, p.TotalLaps), white)
	if len(s.Vehicles) > 1 {
		r.DrawText(12, 0, fmt.Sprintf(" %s of %d ", ordinal(p.Place), len(s.Vehicles)), yellow)
	}
	speed := fmt.Sprintf(" %3.0f km/h ", p.Speed*3.6)
	r.DrawText(max(cols-len(speed)-1, 0), 0, speed, white)

	r.DrawText(1, 1, fmt.Sprintf(" TIME %s  LAP %s  BEST %s ",
		formatTime(p.TotalTime), formatTime(p.LapTime), formatTime(p.BestLapTime)), dim)
	if champ != nil {
		r.DrawText(1, 2, fmt.Sprintf(" GRAND PRIX %d/%d ", min(champ.Round+1, champ.Races), champ.Races), dim)
	}

	center := func(row int, text string, c render.Color) {
		r.DrawText(max((cols-len(text))/2, 0), row, text, c)
	}
	mid := rows / 3

	switch {
	case s.Paused:
		center(mid, " PAUSED - P to resume ", yellow)
	case s.Phase == race.Countdown:
		center(mid, fmt.Sprintf(" %d ", int(math.Ceil(s.CountdownRemaining()))), yellow)
	case s.Phase == race.Running && s.Elapsed < 1:
		center(mid, " GO! ", render.ColorGreen)
	case s.Phase == race.Running && !p.OnTrack:
		center(mid, " OFF TRACK - R to reset ", render.ColorOrange)
	case s.Phase == race.Running && p.Finished:
		center(mid, fmt.Sprintf(" FINISHED %s ", ordinal(p.Place)), yellow)
	case s.Phase == race.Over:
		drawResults(center, s, champ, mid)
	}

	r.DrawText(1, rows-1, " arrows/WASD drive  P pause  R reset  C camera  Esc quit ", dim)
}

func drawResults(center func(int, string, render.Color), s *race.Session, champ *race.Championship, row int) {
	center(row, " RACE OVER ", render.ColorYellow)
	row += 2
	for _, res := range s.Results() {
		c := render.ColorWhite
		if res.Player {
			c = render.ColorYellow
		}
		total := formatTime(res.TotalTime)
		if !res.Finished {
			total = "DNF"
		}
		center(row, fmt.Sprintf(" %-4s %-8s %9s  best %s  +%2d ",
			ordinal(res.Place), res.Name, total, formatTime(res.BestLap), res.Points), c)
		row++
	}

	if champ != nil {
		row++
		center(row, fmt.Sprintf(" CHAMPIONSHIP after %d/%d ", champ.Round, champ.Races), render.ColorYellow)
		row++
		for i, st := range champ.Standings() {
			center(row, fmt.Sprintf(" %-4s %-8s %3d pts ", ordinal(i+1), st.Name, st.Points), render.ColorWhite)
			row++
		}
	}

	next := " Enter: race again   Esc: quit "
	if champ != nil {
		next = " Enter: next race   Esc: quit "
		if champ.Done() {
			next = " Esc: quit "
		}
	}
	center(row+1, next, render.RGB(170, 170, 170))
}
