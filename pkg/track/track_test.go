package track

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/tuikart/pkg/math3d"
)

func scenarioParams() Params {
	return Params{
		Segments:      32,
		Width:         12,
		MinStraight:   20,
		MaxStraight:   60,
		MaxCurveAngle: 45,
		MaxElevation:  5,
		Difficulty:    3,
		Seed:          42,
	}
}

func mustGenerate(t testing.TB, p Params) *Track {
	t.Helper()
	tr, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return tr
}

func TestGenerateScenario(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())

	if got := tr.ClosingStart; got != 32 {
		t.Fatalf("drawn segments = %d, want 32", got)
	}
	if len(tr.Segments) <= 32 {
		t.Fatalf("segments = %d, want closing segments after the drawn 32", len(tr.Segments))
	}
	if tr.Segments[0].Type != Straight {
		t.Errorf("first segment = %v, want straight", tr.Segments[0].Type)
	}
	if tr.Segments[31].Type != Straight {
		t.Errorf("last segment = %v, want straight", tr.Segments[31].Type)
	}
	if got := len(tr.Checkpoints); got != 5 {
		t.Errorf("checkpoints = %d, want 5", got)
	}
	if !(tr.TotalLength > 0) {
		t.Errorf("total length = %v, want > 0", tr.TotalLength)
	}
	if got := tr.Checkpoints[len(tr.Checkpoints)-1].Position; got != tr.StartPosition {
		t.Errorf("finish checkpoint at %v, want start %v", got, tr.StartPosition)
	}
	if gap := tr.ClosureGap(); gap != 0 {
		t.Errorf("closure gap = %v, want 0", gap)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	for _, seed := range []uint32{0, 1, 42, 0xFFFFFFFF} {
		p := scenarioParams()
		p.Seed = seed
		a := mustGenerate(t, p)
		b := mustGenerate(t, p)

		if a.TotalLength != b.TotalLength {
			t.Errorf("seed %d: total length %v != %v", seed, a.TotalLength, b.TotalLength)
		}
		for i := range a.Segments {
			if a.Segments[i] != b.Segments[i] {
				t.Errorf("seed %d: segment %d differs: %+v vs %+v", seed, i, a.Segments[i], b.Segments[i])
			}
		}
		for i := range a.Checkpoints {
			if a.Checkpoints[i] != b.Checkpoints[i] {
				t.Errorf("seed %d: checkpoint %d differs", seed, i)
			}
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	p := scenarioParams()
	a := mustGenerate(t, p)
	p.Seed = 43
	b := mustGenerate(t, p)
	if a.TotalLength == b.TotalLength {
		t.Errorf("seeds 42 and 43 produced the same total length %v", a.TotalLength)
	}
}

func TestGenerateInvariants(t *testing.T) {
	for seed := range uint32(50) {
		p := scenarioParams()
		p.Seed = seed
		tr := mustGenerate(t, p)

		sum := 0.0
		for i, s := range tr.Segments {
			drawn := i < tr.ClosingStart
			if drawn && (s.Length < p.MinStraight || s.Length > p.MaxStraight) {
				t.Errorf("seed %d seg %d: length %v outside [%v, %v]", seed, i, s.Length, p.MinStraight, p.MaxStraight)
			}
			if !(s.Length > 0) {
				t.Errorf("seed %d seg %d: length %v, want > 0", seed, i, s.Length)
			}
			if s.End.Y < 0 || s.Start.Y < 0 {
				t.Errorf("seed %d seg %d: negative elevation", seed, i)
			}
			if i > 0 && s.Start != tr.Segments[i-1].End {
				t.Errorf("seed %d seg %d: start does not continue previous end", seed, i)
			}
			if math.Abs(s.Direction.Len()-1) > 1e-9 || s.Direction.Y != 0 {
				t.Errorf("seed %d seg %d: direction %v is not a horizontal unit vector", seed, i, s.Direction)
			}
			switch {
			case !drawn:
				if math.Abs(s.CurveAngle) > closingStepMax+1e-9 {
					t.Errorf("seed %d seg %d: closing curve angle %v", seed, i, s.CurveAngle)
				}
			case s.Type == CurveLeft:
				if s.CurveAngle > -minCurveAngle || s.CurveAngle < -p.MaxCurveAngle {
					t.Errorf("seed %d seg %d: left curve angle %v", seed, i, s.CurveAngle)
				}
			case s.Type == CurveRight:
				if s.CurveAngle < minCurveAngle || s.CurveAngle > p.MaxCurveAngle {
					t.Errorf("seed %d seg %d: right curve angle %v", seed, i, s.CurveAngle)
				}
			}
			sum += s.Length
		}
		if math.Abs(sum-tr.TotalLength) > 1e-9 {
			t.Errorf("seed %d: total length %v, sum of lengths %v", seed, tr.TotalLength, sum)
		}
	}
}

func TestCheckpointCount(t *testing.T) {
	tests := []struct {
		segments int
		want     int
	}{
		{1, 3},
		{7, 3},
		{8, 3},
		{15, 3},
		{16, 3},
		{32, 5},
		{256, 33},
	}

	for _, tc := range tests {
		p := scenarioParams()
		p.Segments = tc.segments
		tr := mustGenerate(t, p)
		if got := len(tr.Checkpoints); got != tc.want {
			t.Errorf("segments=%d: checkpoints = %d, want %d", tc.segments, got, tc.want)
		}
	}
}

func TestCheckpointsLeaveStartLine(t *testing.T) {
	for _, segments := range []int{1, 2, 7, 8, 15, 16, 32} {
		p := scenarioParams()
		p.Segments = segments
		tr := mustGenerate(t, p)

		// Only gate 0 and the finish gate may sit on the start line.
		cps := tr.Checkpoints
		for i, cp := range cps[1 : len(cps)-1] {
			if d := cp.Position.Distance(tr.StartPosition); d <= 2*cp.Width {
				t.Errorf("segments=%d: checkpoint %d is %v from the start line", segments, i+1, d)
			}
		}
	}
}

func TestTrackCloses(t *testing.T) {
	for level := 1; level <= 5; level++ {
		for seed := range uint32(20) {
			p := ParamsForDifficulty(level, seed)
			tr := mustGenerate(t, p)
			n := len(tr.Segments)

			last := tr.Segments[n-1]
			if last.End != tr.StartPosition {
				t.Errorf("level %d seed %d: last segment ends at %v, want %v", level, seed, last.End, tr.StartPosition)
			}
			if !last.Direction.ApproxEqual(tr.StartDirection, 1e-9) {
				t.Errorf("level %d seed %d: last direction %v, want %v", level, seed, last.Direction, tr.StartDirection)
			}

			// Every joint turns by the curve angle of the segment after it.
			for i, s := range tr.Segments {
				prev := tr.Segments[(i+n-1)%n]
				turn := math3d.Degrees(math3d.WrapAngle(s.Direction.Yaw() - prev.Direction.Yaw()))
				if math.Abs(turn-s.CurveAngle) > 1e-4 {
					t.Errorf("level %d seed %d seg %d (%v): joint turns %v, curve angle %v", level, seed, i, s.Type, turn, s.CurveAngle)
				}
				if i >= tr.ClosingStart && math.Abs(s.CurveAngle) > max(p.MaxCurveAngle, closingStepMin)+1e-9 {
					t.Errorf("level %d seed %d seg %d: closing turn %v sharper than %v", level, seed, i, s.CurveAngle, p.MaxCurveAngle)
				}
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero segments", func(p *Params) { p.Segments = 0 }},
		{"too many segments", func(p *Params) { p.Segments = MaxSegments + 1 }},
		{"zero width", func(p *Params) { p.Width = 0 }},
		{"nan width", func(p *Params) { p.Width = math.NaN() }},
		{"zero min straight", func(p *Params) { p.MinStraight = 0 }},
		{"max below min", func(p *Params) { p.MaxStraight = p.MinStraight - 1 }},
		{"zero curve", func(p *Params) { p.MaxCurveAngle = 0 }},
		{"negative elevation", func(p *Params) { p.MaxElevation = -1 }},
		{"difficulty zero", func(p *Params) { p.Difficulty = 0 }},
		{"difficulty six", func(p *Params) { p.Difficulty = 6 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := scenarioParams()
			tc.mutate(&p)
			_, err := Generate(p)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Generate error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestSmallCurveAndElevationBounds(t *testing.T) {
	p := scenarioParams()
	p.MaxCurveAngle = 5
	p.MaxElevation = 0
	tr := mustGenerate(t, p)
	for i, s := range tr.Segments {
		if math.Abs(s.CurveAngle) > 5+1e-9 {
			t.Errorf("seg %d: curve angle %v exceeds max 5", i, s.CurveAngle)
		}
		if s.ElevationChange != 0 {
			t.Errorf("seg %d: elevation change %v with max 0", i, s.ElevationChange)
		}
	}
}

func TestPositionAtWraps(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())

	p0, d0 := tr.PositionAt(0)
	if p0 != tr.StartPosition {
		t.Errorf("PositionAt(0) = %v, want %v", p0, tr.StartPosition)
	}
	if d0 != tr.Segments[0].Direction {
		t.Errorf("direction at 0 = %v, want %v", d0, tr.Segments[0].Direction)
	}

	d := tr.TotalLength * 0.37
	a, _ := tr.PositionAt(d)
	b, _ := tr.PositionAt(d + tr.TotalLength)
	c, _ := tr.PositionAt(d - 2*tr.TotalLength)
	if !a.ApproxEqual(b, 1e-6) || !a.ApproxEqual(c, 1e-6) {
		t.Errorf("PositionAt does not wrap: %v %v %v", a, b, c)
	}
}

func TestProgressMonotonic(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())

	const steps = 2000
	prev := -1.0
	for i := range steps {
		d := tr.TotalLength * float64(i) / steps
		pos, _ := tr.PositionAt(d)
		got := tr.Progress(pos, tr.SegmentAt(d))
		if got < 0 || got >= 1 {
			t.Fatalf("progress %v outside [0, 1) at distance %v", got, d)
		}
		if got+1e-9 < prev {
			t.Fatalf("progress went backwards at distance %v: %v after %v", d, got, prev)
		}
		prev = got
	}
}

func TestSegmentStart(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())
	acc := 0.0
	for i, s := range tr.Segments {
		if got := tr.SegmentStart(i); math.Abs(got-acc) > 1e-9 {
			t.Errorf("SegmentStart(%d) = %v, want %v", i, got, acc)
		}
		acc += s.Length
	}

	// Hand-built tracks have no cached offsets.
	manual := &Track{Segments: tr.Segments, TotalLength: tr.TotalLength}
	if got, want := manual.SegmentStart(5), tr.SegmentStart(5); math.Abs(got-want) > 1e-9 {
		t.Errorf("uncached SegmentStart(5) = %v, want %v", got, want)
	}
}

func TestOnSurface(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())
	seg := tr.Segments[0]
	mid := seg.Midpoint()
	side := perpendicular(seg.Direction)

	tests := []struct {
		name   string
		offset float64
		want   bool
	}{
		{"centerline", 0, true},
		{"edge", seg.Width / 2, true},
		{"inside margin", seg.Width/2 + SurfaceMargin - 0.1, true},
		{"outside margin", seg.Width/2 + SurfaceMargin + 0.5, false},
		{"far side", -(seg.Width/2 + SurfaceMargin + 0.5), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			on, h := tr.OnSurface(mid.Add(side.Scale(tc.offset)))
			if on != tc.want {
				t.Errorf("OnSurface = %v, want %v", on, tc.want)
			}
			if on && math.Abs(h-mid.Y) > 1e-9 {
				t.Errorf("height = %v, want %v", h, mid.Y)
			}
		})
	}
}

func TestFindSegmentAtMidpoints(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())
	for i, s := range tr.Segments {
		if got := tr.FindSegment(s.Midpoint()); got != i {
			// Tight curves can put another midpoint equally close.
			if tr.Segments[got].Midpoint().Distance(s.Midpoint()) > 1e-9 {
				t.Errorf("FindSegment(midpoint %d) = %d", i, got)
			}
		}
	}
}

// polyline builds a flat closed track through points in the XZ plane.
func polyline(width float64, points ...[2]float64) *Track {
	t := &Track{StartDirection: math3d.YawDir(0)}
	for i, p := range points {
		q := points[(i+1)%len(points)]
		start, end := math3d.V3(p[0], 0, p[1]), math3d.V3(q[0], 0, q[1])
		t.Segments = append(t.Segments, Segment{
			Type:      Straight,
			Start:     start,
			End:       end,
			Direction: end.Sub(start).Normalize(),
			Width:     width,
			Length:    end.Distance(start),
		})
		t.TotalLength += end.Distance(start)
	}
	t.StartPosition = t.Segments[0].Start
	return t
}

func TestNearestSegment(t *testing.T) {
	// Segment 5 crosses segment 1 at (0, 60).
	tr := polyline(12,
		[2]float64{0, 0}, [2]float64{0, 40}, [2]float64{0, 80}, [2]float64{0, 120},
		[2]float64{60, 120}, [2]float64{60, 60}, [2]float64{-60, 60}, [2]float64{-60, 0},
	)
	crossing := math3d.V3(2, 0, 60.5)

	tests := []struct {
		name string
		pos  math3d.Vec3
		hint int
		want int
	}{
		{"no hint", crossing, -1, 5},
		{"on the first pass", crossing, 1, 1},
		{"on the second pass", crossing, 5, 5},
		{"hint past the end", crossing, len(tr.Segments), 5},
		{"moved ahead within window", math3d.V3(0, 0, 100), 1, 2},
		{"wraps past the last segment", math3d.V3(-1, 0, 10), 7, 0},
		{"lost falls back to full search", math3d.V3(-60, 0, 30), 1, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tr.NearestSegment(tc.pos, tc.hint); got != tc.want {
				t.Errorf("NearestSegment(%v, %d) = %d, want %d", tc.pos, tc.hint, got, tc.want)
			}
		})
	}

	if got := (&Track{}).NearestSegment(crossing, 0); got != 0 {
		t.Errorf("empty track NearestSegment = %d, want 0", got)
	}
}

func TestSurfaceAt(t *testing.T) {
	tr := polyline(12, [2]float64{0, 0}, [2]float64{0, 100}, [2]float64{100, 100})
	if on, _ := tr.SurfaceAt(math3d.V3(3, 0, 50), 0); !on {
		t.Error("point 3 units off segment 0 reported off the surface")
	}
	if on, _ := tr.SurfaceAt(math3d.V3(3, 0, 50), 1); on {
		t.Error("point 50 units off segment 1 reported on the surface")
	}
	if on, _ := tr.SurfaceAt(math3d.V3(0, 0, 0), -1); on {
		t.Error("invalid segment reported on the surface")
	}
}

func TestCheckCheckpointOrdering(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())
	n := len(tr.Checkpoints)

	// Standing on every checkpoint never advances more than one step.
	for last := range n {
		for _, cp := range tr.Checkpoints {
			got := tr.CheckCheckpoint(cp.Position, last)
			if got != last && got != (last+1)%n {
				t.Errorf("CheckCheckpoint(last=%d) = %d", last, got)
			}
		}
	}

	// Skipping ahead is rejected.
	if got := tr.CheckCheckpoint(tr.Checkpoints[2].Position, 0); got != 0 {
		t.Errorf("skipping to checkpoint 2 returned %d, want 0", got)
	}
	if got := tr.CheckCheckpoint(tr.Checkpoints[1].Position, 0); got != 1 {
		t.Errorf("reaching checkpoint 1 returned %d, want 1", got)
	}
	// The finish gate wraps to 0.
	if got := tr.CheckCheckpoint(tr.StartPosition, n-1); got != 0 {
		t.Errorf("wrap from %d returned %d, want 0", n-1, got)
	}
}

func TestLateralOffsetSign(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())
	seg := tr.Segments[0]
	p := seg.Midpoint().Add(perpendicular(seg.Direction).Scale(3))
	if got := tr.LateralOffset(p, 0); math.Abs(got-3) > 1e-9 {
		t.Errorf("LateralOffset = %v, want 3", got)
	}
}

func TestParamsForDifficulty(t *testing.T) {
	for level := 1; level <= 5; level++ {
		p := ParamsForDifficulty(level, 7)
		if err := p.Validate(); err != nil {
			t.Errorf("level %d: %v", level, err)
		}
	}
	if easy, hard := ParamsForDifficulty(1, 7), ParamsForDifficulty(5, 7); hard.Width >= easy.Width {
		t.Errorf("hard width %v not narrower than easy %v", hard.Width, easy.Width)
	}
}

func TestMesh(t *testing.T) {
	tr := mustGenerate(t, scenarioParams())
	m := tr.Mesh()

	// Three quads per segment plus the finish line, two triangles each.
	want := (3*len(tr.Segments) + 1) * 2
	if got := m.TriangleCount(); got != want {
		t.Errorf("triangles = %d, want %d", got, want)
	}
	lo, hi := tr.Bounds()
	if m.BoundsMin.X > lo.X || m.BoundsMax.X < hi.X {
		t.Errorf("mesh bounds %v..%v do not cover track %v..%v", m.BoundsMin, m.BoundsMax, lo, hi)
	}
	for i := range m.TriangleCount() {
		if m.GetMaterial(m.GetFaceMaterial(i)) == nil {
			t.Fatalf("face %d has no material", i)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	p := scenarioParams()
	for b.Loop() {
		_, _ = Generate(p)
	}
}

func BenchmarkOnSurface(b *testing.B) {
	tr := mustGenerate(b, scenarioParams())
	pos, _ := tr.PositionAt(tr.TotalLength / 3)
	for b.Loop() {
		tr.OnSurface(pos)
	}
}
