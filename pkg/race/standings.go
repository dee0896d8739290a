package race

import (
	"cmp"
	"slices"

	"github.com/taigrr/tuikart/pkg/vehicle"
)

// Standings returns the vehicles ordered by race position: finishers in
// finishing order, then by laps, checkpoint and lap progress.
func (s *Session) Standings() []*vehicle.Vehicle {
	finished := make(map[*vehicle.Vehicle]int, len(s.finishOrder))
	for i, v := range s.finishOrder {
		finished[v] = i
	}

	out := slices.Clone(s.Vehicles)
	slices.SortStableFunc(out, func(a, b *vehicle.Vehicle) int {
		fa, aDone := finished[a]
		fb, bDone := finished[b]
		switch {
		case aDone && bDone:
			return cmp.Compare(fa, fb)
		case aDone:
			return -1
		case bDone:
			return 1
		}
		return cmp.Or(
			cmp.Compare(b.CurrentLap, a.CurrentLap),
			cmp.Compare(b.CurrentCheckpoint, a.CurrentCheckpoint),
			cmp.Compare(b.TrackProgress, a.TrackProgress),
		)
	})
	return out
}

func (s *Session) updatePlaces() {
	for i, v := range s.Standings() {
		v.Place = i + 1
	}
}

// Result is one driver's line on the results table.
type Result struct {
	Place     int     `json:"place"`
	Name      string  `json:"name"`
	Player    bool    `json:"player"`
	Finished  bool    `json:"finished"`
	Laps      int     `json:"laps"`
	BestLap   float64 `json:"best_lap"`
	TotalTime float64 `json:"total_time"`
	Progress  float64 `json:"progress"`
	Points    int     `json:"points"`
}

// Results returns the current classification with the points each place
// is worth.
func (s *Session) Results() []Result {
	standings := s.Standings()
	out := make([]Result, len(standings))
	for i, v := range standings {
		out[i] = Result{
			Place:     i + 1,
			Name:      v.Name,
			Player:    v == s.Player,
			Finished:  v.Finished,
			Laps:      v.CurrentLap,
			BestLap:   v.BestLapTime,
			TotalTime: v.TotalTime,
			Progress:  v.TrackProgress,
			Points:    Points(i + 1),
		}
	}
	return out
}
