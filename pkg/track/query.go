package track

import (
	"math"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// PositionAt maps a track distance to a centerline point and the owning
// segment's direction. Distances wrap around the lap. The direction is the
// segment's fixed heading, so it changes in steps at segment boundaries.
func (t *Track) PositionAt(distance float64) (math3d.Vec3, math3d.Vec3) {
	i, frac := t.locate(distance)
	if i < 0 {
		return t.StartPosition, t.StartDirection
	}
	seg := t.Segments[i]
	return seg.Start.Lerp(seg.End, frac), seg.Direction
}

// SegmentAt returns the index of the segment containing a track distance.
func (t *Track) SegmentAt(distance float64) int {
	i, _ := t.locate(distance)
	return max(i, 0)
}

// locate returns the segment index and fractional offset within it for a
// distance, or -1 for an empty track.
func (t *Track) locate(distance float64) (int, float64) {
	if len(t.Segments) == 0 {
		return -1, 0
	}
	d := math3d.Wrap(distance, t.TotalLength)
	acc := 0.0
	for i, seg := range t.Segments {
		if d < acc+seg.Length {
			return i, (d - acc) / seg.Length
		}
		acc += seg.Length
	}
	// Float drift at the very end of the lap lands on the last segment.
	return len(t.Segments) - 1, 1
}

// FindSegment returns the segment whose midpoint is nearest to pos.
//
// This is a nearest-midpoint heuristic, not a containment test; near
// segment boundaries and on tight curves it can pick a neighbour, and it
// can jump to another part of the lap where the layout doubles back.
// Moving vehicles use NearestSegment instead.
func (t *Track) FindSegment(pos math3d.Vec3) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, seg := range t.Segments {
		d := seg.Midpoint().Sub(pos).LenSq()
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Segment tracking window around a hint, and the distance in track widths
// beyond which the window is abandoned for a full search.
const (
	trackBehind = 1
	trackAhead  = 3
	lostWidths  = 3.0
)

// NearestSegment returns the segment whose centerline passes closest to
// pos. A valid hint, usually the segment pos was on last tick, limits the
// search to a short window around it so a car keeps to its own stretch
// where the layout crosses itself. A negative hint, or a pos more than a
// few widths from every segment in the window, searches the whole track.
func (t *Track) NearestSegment(pos math3d.Vec3, hint int) int {
	n := len(t.Segments)
	if n == 0 {
		return 0
	}
	if hint >= 0 && hint < n {
		best, bestDist := hint, math.MaxFloat64
		for k := -trackBehind; k <= trackAhead; k++ {
			i := ((hint+k)%n + n) % n
			if d := t.centerlineDistance(pos, i); d < bestDist {
				best, bestDist = i, d
			}
		}
		if bestDist <= t.Segments[best].Width*lostWidths {
			return best
		}
	}
	best, bestDist := 0, math.MaxFloat64
	for i := range t.Segments {
		if d := t.centerlineDistance(pos, i); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// centerlineDistance is the horizontal distance from pos to the centerline
// of segment i.
func (t *Track) centerlineDistance(pos math3d.Vec3, i int) float64 {
	s := t.Segments[i]
	rel := pos.Sub(s.Start).Flat()
	along := math3d.Clamp(rel.Dot(s.Direction), 0, s.Length)
	return rel.Sub(s.Direction.Scale(along)).HorizontalLen()
}

// OnSurface reports whether pos is over the drivable surface and the
// surface height under it, judged against FindSegment(pos).
func (t *Track) OnSurface(pos math3d.Vec3) (bool, float64) {
	if len(t.Segments) == 0 {
		return false, 0
	}
	return t.SurfaceAt(pos, t.FindSegment(pos))
}

// SurfaceAt is OnSurface against a known segment i.
func (t *Track) SurfaceAt(pos math3d.Vec3, i int) (bool, float64) {
	if i < 0 || i >= len(t.Segments) {
		return false, 0
	}
	seg := t.Segments[i]
	rel := pos.Sub(seg.Start).Flat()

	lateral := math.Abs(rel.Dot(perpendicular(seg.Direction)))
	along := math3d.Clamp(rel.Dot(seg.Direction)/seg.Length, 0, 1)
	height := math3d.Lerp(seg.Start.Y, seg.End.Y, along)

	return lateral <= seg.Width/2+SurfaceMargin, height
}

// LateralOffset returns the signed distance of pos from the centerline of
// segment i, positive toward the segment's side direction.
func (t *Track) LateralOffset(pos math3d.Vec3, i int) float64 {
	if i < 0 || i >= len(t.Segments) {
		return 0
	}
	seg := t.Segments[i]
	return pos.Sub(seg.Start).Flat().Dot(perpendicular(seg.Direction))
}

// Progress returns the fraction of the lap covered at pos, assuming pos is
// on segment seg. The result is in [0, 1).
func (t *Track) Progress(pos math3d.Vec3, seg int) float64 {
	if len(t.Segments) == 0 || t.TotalLength <= 0 {
		return 0
	}
	seg = math3d.Clamp(seg, 0, len(t.Segments)-1)
	s := t.Segments[seg]

	along := math3d.Clamp(pos.Sub(s.Start).Flat().Dot(s.Direction)/s.Length, 0, 1)
	p := (t.SegmentStart(seg) + along*s.Length) / t.TotalLength
	if p >= 1 {
		p = 0
	}
	return p
}

// CheckCheckpoint tests only the checkpoint after last. It returns the
// next index when pos is within that checkpoint's width, otherwise last.
// Checkpoints therefore advance at most one step per call and in order.
func (t *Track) CheckCheckpoint(pos math3d.Vec3, last int) int {
	n := len(t.Checkpoints)
	if n == 0 {
		return last
	}
	next := (last + 1) % n
	if next < 0 {
		next = 0
	}
	cp := t.Checkpoints[next]
	if pos.Distance(cp.Position) <= cp.Width {
		return next
	}
	return last
}

// perpendicular returns the horizontal unit normal of a heading.
func perpendicular(dir math3d.Vec3) math3d.Vec3 {
	return math3d.V3(dir.Z, 0, -dir.X)
}
