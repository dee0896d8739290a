package track

import (
	"math"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// Closing layout constants.
const (
	closingRadius  = 5.0  // turn radius in track widths
	closingStepMin = 5.0  // degrees
	closingStepMax = 30.0 // degrees
	rampRun        = 8.0  // horizontal units per unit of descent
	minLeg         = 1e-6
	turnEpsilon    = 1e-6 // radians
)

// closeLoop appends segments that lead from the end of the drawn layout at
// pos, heading yaw, back onto the start line. The path is the shorter of
// two same-direction turn arcs joined by a straight, built from chords no
// sharper than the layout's own corners. It then runs a lead-in straight, a
// ramp down to the start plane when the layout ends above it, and a final
// straight that finishes exactly on StartPosition.
func (t *Track) closeLoop(pos math3d.Vec3, yaw float64) {
	p := t.Params
	step := math3d.Radians(math3d.Clamp(p.MaxCurveAngle, closingStepMin, closingStepMax))
	radius := closingRadius * p.Width
	back := t.StartDirection.Scale(-1)

	rise := t.StartPosition.Y - pos.Y
	ramp := 0.0
	if rise < 0 {
		ramp = max(p.MinStraight, -rise*rampRun)
	}
	entry := t.StartPosition.Add(back.Scale(p.MinStraight))
	rampStart := entry.Add(back.Scale(ramp))
	rampStart.Y = pos.Y
	goal := rampStart.Add(back.Scale(p.MinStraight))

	c := cursor{t: t, pos: pos, yaw: yaw}
	path := shortestTurns(pos, yaw, goal, t.StartDirection.Yaw(), radius)

	c.arc(yaw, path.first, radius, step)
	c.to(path.tangentPoint)
	c.arc(path.heading, path.second, radius, step)
	c.to(rampStart)
	if ramp > 0 {
		c.climb(entry, rise)
	}
	c.climb(t.StartPosition, t.StartPosition.Y-c.pos.Y)
}

// cursor appends segments one after another from a moving position and
// heading.
type cursor struct {
	t   *Track
	pos math3d.Vec3
	yaw float64
}

// arc appends chords of a turn of angle radians (positive turns right) on
// a circle of radius r, entered at heading h0. No chord turns by more than
// step from its predecessor.
func (c *cursor) arc(h0, angle, r, step float64) {
	if math.Abs(angle) < turnEpsilon {
		return
	}
	n := max(1, int(math.Ceil(math.Abs(angle)/step)))
	d := angle / float64(n)
	chord := 2 * r * math.Sin(math.Abs(d)/2)
	for i := range n {
		yaw := h0 + (float64(i)+0.5)*d
		c.extend(yaw, chord, 0, c.pos.Add(math3d.YawDir(yaw).Scale(chord)))
	}
}

// to appends a level segment ending at target.
func (c *cursor) to(target math3d.Vec3) {
	c.climb(target, 0)
}

// climb appends a segment ending at target's horizontal position and rise
// above the current height.
func (c *cursor) climb(target math3d.Vec3, rise float64) {
	d := target.Sub(c.pos).Flat()
	c.extend(d.Yaw(), d.HorizontalLen(), rise, target)
}

func (c *cursor) extend(yaw, length, rise float64, end math3d.Vec3) {
	if length < minLeg {
		return
	}
	turn := math3d.WrapAngle(yaw - c.yaw)
	seg := Segment{
		Type:      Straight,
		Start:     c.pos,
		Direction: math3d.YawDir(yaw),
		Width:     c.t.Params.Width,
		Length:    length,
	}
	switch {
	case rise < 0:
		seg.Type = HillDown
		seg.ElevationChange = rise
	case rise > 0:
		seg.Type = HillUp
		seg.ElevationChange = rise
	case turn > turnEpsilon:
		seg.Type = CurveRight
		seg.CurveAngle = math3d.Degrees(turn)
	case turn < -turnEpsilon:
		seg.Type = CurveLeft
		seg.CurveAngle = math3d.Degrees(turn)
	}
	seg.End = math3d.V3(end.X, c.pos.Y+rise, end.Z)

	c.t.push(seg)
	c.pos = seg.End
	c.yaw = yaw
}

// turnPath is a turn, a straight and a second turn in the same direction.
type turnPath struct {
	first        float64 // signed sweep, radians, positive turns right
	tangentPoint math3d.Vec3
	heading      float64 // yaw of the joining straight
	second       float64
	length       float64
}

// shortestTurns returns the shorter of the right-straight-right and
// left-straight-left paths of radius r from (from, fromYaw) to (to, toYaw).
// Heights are ignored; the tangent point keeps from's height.
func shortestTurns(from math3d.Vec3, fromYaw float64, to math3d.Vec3, toYaw, r float64) turnPath {
	var best turnPath
	for i, s := range []float64{1, -1} {
		c1 := from.Add(math3d.SideDir(fromYaw).Scale(s * r)).Flat()
		c2 := to.Add(math3d.SideDir(toYaw).Scale(s * r)).Flat()
		gap := c2.Sub(c1)
		span := gap.HorizontalLen()

		heading := fromYaw
		if span > minLeg {
			heading = gap.Yaw()
		}
		first := sweep(s, fromYaw, heading)
		second := sweep(s, heading, toYaw)

		tp := c2.Sub(math3d.SideDir(heading).Scale(s * r))
		tp.Y = from.Y
		path := turnPath{
			first:        first,
			tangentPoint: tp,
			heading:      heading,
			second:       second,
			length:       r*(math.Abs(first)+math.Abs(second)) + span,
		}
		if i == 0 || path.length < best.length {
			best = path
		}
	}
	return best
}

// sweep returns the turn from heading a to heading b made in direction s
// (1 right, -1 left). Turns within turnEpsilon of a full circle are none.
func sweep(s, a, b float64) float64 {
	w := math3d.Wrap(s*(b-a), 2*math.Pi)
	if w > 2*math.Pi-turnEpsilon {
		w = 0
	}
	return s * w
}
