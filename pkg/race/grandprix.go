package race

import (
	"cmp"
	"fmt"
	"slices"
)

// pointsTable is indexed by place - 1.
var pointsTable = [...]int{10, 8, 6, 5, 4, 3, 2, 1}

// Points returns the championship points for a finishing place.
func Points(place int) int {
	if place < 1 || place > len(pointsTable) {
		return 0
	}
	return pointsTable[place-1]
}

// Championship runs a series of races on consecutive seeds and tallies
// points by driver name.
type Championship struct {
	Config Config
	Races  int
	Round  int // races completed

	points map[string]int
	order  []string
}

// NewChampionship creates a Grand Prix of races rounds.
func NewChampionship(cfg Config, races int) (*Championship, error) {
	if races < 1 {
		return nil, fmt.Errorf("%w: races must be at least 1, got %d", ErrInvalidParameter, races)
	}
	cfg.Mode = GrandPrix
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Championship{Config: cfg, Races: races, points: make(map[string]int)}, nil
}

// Done reports whether every round has been recorded.
func (c *Championship) Done() bool {
	return c.Round >= c.Races
}

// Next starts the next round's race. Each round gets its own track.
func (c *Championship) Next() (*Session, error) {
	if c.Done() {
		return nil, fmt.Errorf("%w: championship already complete", ErrInvalidParameter)
	}
	cfg := c.Config
	cfg.Track.Seed += uint32(c.Round)
	return Start(cfg)
}

// Record adds a finished race's points to the tally.
func (c *Championship) Record(results []Result) {
	for _, r := range results {
		if _, ok := c.points[r.Name]; !ok {
			c.order = append(c.order, r.Name)
		}
		c.points[r.Name] += r.Points
	}
	c.Round++
}

// Standing is one driver's championship total.
type Standing struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Standings returns drivers by points, ties kept in first-seen order.
func (c *Championship) Standings() []Standing {
	out := make([]Standing, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Standing{Name: name, Points: c.points[name]})
	}
	slices.SortStableFunc(out, func(a, b Standing) int {
		return cmp.Compare(b.Points, a.Points)
	})
	return out
}
