// Package track generates procedural race tracks and answers track-relative
// queries: where a distance lies, which segment a point belongs to, whether
// a point is on the drivable surface and how far around the lap it is.
package track

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/tuikart/pkg/math3d"
	"github.com/taigrr/tuikart/pkg/rng"
)

// ErrInvalidParameter is wrapped by every generation parameter error.
var ErrInvalidParameter = errors.New("invalid track parameter")

// MaxSegments caps the number of segments in a generated track.
const MaxSegments = 256

// SurfaceMargin is the forgiveness added to half the track width before a
// point counts as off the surface.
const SurfaceMargin = 2.0

// minCurveAngle and minElevation are the lower bounds of the curve and hill
// draws, in degrees and world units.
const (
	minCurveAngle = 15.0
	minElevation  = 1.0
)

// checkpointsPer is the number of segments per evenly spaced checkpoint.
const checkpointsPer = 8

// SegmentType classifies a track segment.
type SegmentType int

const (
	Straight SegmentType = iota
	CurveLeft
	CurveRight
	HillUp
	HillDown
)

func (t SegmentType) String() string {
	switch t {
	case Straight:
		return "straight"
	case CurveLeft:
		return "curve-left"
	case CurveRight:
		return "curve-right"
	case HillUp:
		return "hill-up"
	case HillDown:
		return "hill-down"
	}
	return fmt.Sprintf("SegmentType(%d)", int(t))
}

// Segment is one piece of the track centerline.
type Segment struct {
	Type      SegmentType
	Start     math3d.Vec3
	End       math3d.Vec3
	Direction math3d.Vec3 // horizontal unit heading, constant over the segment
	Width     float64
	Length    float64 // distance-space length, always > 0

	CurveAngle      float64 // degrees, signed; curves only
	ElevationChange float64 // world units, signed; hills only
}

// Midpoint returns the point halfway between Start and End.
func (s Segment) Midpoint() math3d.Vec3 {
	return s.Start.Lerp(s.End, 0.5)
}

// Checkpoint is a stateless gate. Checkpoint 0 is the start/finish line.
type Checkpoint struct {
	Position  math3d.Vec3
	Direction math3d.Vec3
	Width     float64
	Segment   int
}

// Params controls track generation.
type Params struct {
	Segments      int     `json:"segments"`
	Width         float64 `json:"width"`
	MinStraight   float64 `json:"min_straight"`
	MaxStraight   float64 `json:"max_straight"`
	MaxCurveAngle float64 `json:"max_curve_angle"` // degrees
	MaxElevation  float64 `json:"max_elevation"`
	Difficulty    int     `json:"difficulty"` // 1-5, used by callers to pick the other values
	Seed          uint32  `json:"seed"`
}

// DefaultParams returns a medium-length track layout.
func DefaultParams() Params {
	return Params{
		Segments:      32,
		Width:         12,
		MinStraight:   20,
		MaxStraight:   60,
		MaxCurveAngle: 45,
		MaxElevation:  5,
		Difficulty:    3,
		Seed:          1,
	}
}

// ParamsForDifficulty scales the default layout for a difficulty level:
// higher levels get narrower roads, more segments and sharper corners.
func ParamsForDifficulty(level int, seed uint32) Params {
	level = math3d.Clamp(level, 1, 5)
	p := DefaultParams()
	p.Difficulty = level
	p.Seed = seed
	p.Segments = 16 + 8*level
	p.Width = 16 - float64(level)
	p.MaxCurveAngle = 25 + 10*float64(level)
	p.MaxElevation = 2 + 1.5*float64(level)
	return p
}

// Validate reports the first invalid parameter.
func (p Params) Validate() error {
	switch {
	case p.Segments <= 0:
		return fmt.Errorf("%w: segments must be positive, got %d", ErrInvalidParameter, p.Segments)
	case p.Segments > MaxSegments:
		return fmt.Errorf("%w: segments must be at most %d, got %d", ErrInvalidParameter, MaxSegments, p.Segments)
	case !(p.Width > 0):
		return fmt.Errorf("%w: width must be positive, got %v", ErrInvalidParameter, p.Width)
	case !(p.MinStraight > 0):
		return fmt.Errorf("%w: min straight must be positive, got %v", ErrInvalidParameter, p.MinStraight)
	case p.MaxStraight < p.MinStraight:
		return fmt.Errorf("%w: max straight %v below min straight %v", ErrInvalidParameter, p.MaxStraight, p.MinStraight)
	case !(p.MaxCurveAngle > 0):
		return fmt.Errorf("%w: max curve angle must be positive, got %v", ErrInvalidParameter, p.MaxCurveAngle)
	case p.MaxElevation < 0 || math.IsNaN(p.MaxElevation):
		return fmt.Errorf("%w: max elevation must not be negative, got %v", ErrInvalidParameter, p.MaxElevation)
	case p.Difficulty < 1 || p.Difficulty > 5:
		return fmt.Errorf("%w: difficulty must be in 1..5, got %d", ErrInvalidParameter, p.Difficulty)
	}
	return nil
}

// Track is a generated circuit. It is immutable after Generate returns.
type Track struct {
	Segments       []Segment
	Checkpoints    []Checkpoint
	StartPosition  math3d.Vec3
	StartDirection math3d.Vec3
	TotalLength    float64
	Seed           uint32
	Params         Params

	// ClosingStart is the index of the first segment added to bring the
	// layout back to the start line. Segments before it are drawn from
	// the seed.
	ClosingStart int

	// offsets[i] is the track distance at the start of segment i.
	offsets []float64
}

// Generate builds a track from p. The same Params always yield the same
// segment sequence: the layout draws from a private LCG seeded once here.
// The p.Segments drawn segments are followed by closing segments that turn
// the layout back onto the start line.
func Generate(p Params) (*Track, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r := rng.NewLCG(p.Seed)
	t := &Track{
		Segments:       make([]Segment, 0, p.Segments),
		StartPosition:  math3d.Zero3(),
		StartDirection: math3d.YawDir(0),
		Seed:           p.Seed,
		Params:         p,
		offsets:        make([]float64, 0, p.Segments),
	}

	pos := t.StartPosition
	yaw := 0.0
	curveLo := math.Min(minCurveAngle, p.MaxCurveAngle)
	elevLo := math.Min(minElevation, p.MaxElevation)

	for i := range p.Segments {
		kind := drawType(r)
		if i == 0 || i == p.Segments-1 {
			kind = Straight
		}
		length := rng.Range(r, p.MinStraight, p.MaxStraight)

		seg := Segment{Type: kind, Start: pos, Width: p.Width, Length: length}
		switch kind {
		case CurveLeft, CurveRight:
			angle := rng.Range(r, curveLo, p.MaxCurveAngle)
			if kind == CurveLeft {
				angle = -angle
			}
			yaw = math3d.WrapAngle(yaw + math3d.Radians(angle))
			seg.CurveAngle = angle
		case HillUp, HillDown:
			delta := rng.Range(r, elevLo, p.MaxElevation)
			if kind == HillDown {
				delta = -delta
			}
			// Elevation never goes below the start plane.
			if pos.Y+delta < 0 {
				delta = -pos.Y
			}
			seg.ElevationChange = delta
		}

		seg.Direction = math3d.YawDir(yaw)
		seg.End = pos.Add(seg.Direction.Scale(length))
		seg.End.Y = pos.Y + seg.ElevationChange

		t.push(seg)
		pos = seg.End
	}

	t.ClosingStart = len(t.Segments)
	t.closeLoop(pos, yaw)
	t.Checkpoints = t.placeCheckpoints(p.Segments)
	return t, nil
}

func (t *Track) push(seg Segment) {
	t.offsets = append(t.offsets, t.TotalLength)
	t.Segments = append(t.Segments, seg)
	t.TotalLength += seg.Length
}

// drawType picks a segment type: 40% straight, 20% each curve, 10% each hill.
func drawType(r rng.Source) SegmentType {
	v := r.Float64()
	switch {
	case v < 0.4:
		return Straight
	case v < 0.6:
		return CurveLeft
	case v < 0.8:
		return CurveRight
	case v < 0.9:
		return HillUp
	}
	return HillDown
}

// placeCheckpoints spaces one gate every checkpointsPer body segments,
// starting on the start line, and appends the finish gate.
func (t *Track) placeCheckpoints(body int) []Checkpoint {
	width := t.Params.Width
	count := max(1, body/checkpointsPer)
	spacing := body / count

	cps := make([]Checkpoint, 0, count+2)
	for i := range count {
		seg := t.Segments[i*spacing]
		cps = append(cps, Checkpoint{
			Position:  seg.Start,
			Direction: seg.Direction,
			Width:     width,
			Segment:   i * spacing,
		})
	}
	// A lone gate 0 would leave the finish as the next gate, both on the
	// start line, and a car parked there would count laps. Add one halfway
	// round the lap.
	if count == 1 {
		d := t.TotalLength / 2
		pos, dir := t.PositionAt(d)
		cps = append(cps, Checkpoint{
			Position:  pos,
			Direction: dir,
			Width:     width,
			Segment:   t.SegmentAt(d),
		})
	}
	// The finish gate sits on the start line; reaching it and then gate 0
	// closes the lap.
	cps = append(cps, Checkpoint{
		Position:  t.StartPosition,
		Direction: t.StartDirection,
		Width:     width,
		Segment:   0,
	})
	return cps
}

// SegmentStart returns the track distance at which segment i begins.
func (t *Track) SegmentStart(i int) float64 {
	if i < 0 || i >= len(t.Segments) {
		return 0
	}
	if len(t.offsets) == len(t.Segments) {
		return t.offsets[i]
	}
	d := 0.0
	for _, s := range t.Segments[:i] {
		d += s.Length
	}
	return d
}

// Bounds returns the axis-aligned box enclosing every segment endpoint.
func (t *Track) Bounds() (lo, hi math3d.Vec3) {
	if len(t.Segments) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}
	lo, hi = t.Segments[0].Start, t.Segments[0].Start
	for _, s := range t.Segments {
		lo = lo.Min(s.End)
		hi = hi.Max(s.End)
	}
	return lo, hi
}

// ClosureGap is the distance between the end of the last segment and the
// start line. Generated tracks end exactly on the start line, so it is only
// nonzero for hand-built tracks.
func (t *Track) ClosureGap() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End.Distance(t.StartPosition)
}
