package math3d

import (
	"math"
	"testing"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"pi stays", math.Pi, math.Pi},
		{"minus pi flips", -math.Pi, math.Pi},
		{"just over pi", math.Pi + 0.5, -math.Pi + 0.5},
		{"three turns", 6*math.Pi + 0.25, 0.25},
		{"negative", -3 * math.Pi / 2, math.Pi / 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapAngle(tc.in)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("WrapAngle(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, period, want float64
	}{
		{5, 10, 5},
		{10, 10, 0},
		{-1, 10, 9},
		{25, 10, 5},
		{3, 0, 0},
	}
	for _, tc := range tests {
		if got := Wrap(tc.v, tc.period); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Wrap(%v, %v) = %v, want %v", tc.v, tc.period, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, -1.0, 1.0); got != 1 {
		t.Errorf("Clamp float = %v, want 1", got)
	}
	if got := Clamp(-3, 0, 10); got != 0 {
		t.Errorf("Clamp int = %v, want 0", got)
	}
	if got := Clamp(0.25, 0.0, 1.0); got != 0.25 {
		t.Errorf("Clamp passthrough = %v, want 0.25", got)
	}
}

func TestNormalizeOrFallback(t *testing.T) {
	got := Zero3().NormalizeOr(UnitX())
	if got != UnitX() {
		t.Errorf("got %v, want +X fallback", got)
	}
	got = V3(0, 0, 5).NormalizeOr(UnitX())
	if !got.ApproxEqual(V3(0, 0, 1), 1e-12) {
		t.Errorf("got %v, want +Z", got)
	}
}

func TestYawConventions(t *testing.T) {
	for _, yaw := range []float64{0, 0.3, -1.2, 2.9} {
		fwd := YawDir(yaw)
		side := SideDir(yaw)
		if math.Abs(fwd.Dot(side)) > 1e-12 {
			t.Errorf("yaw %v: forward and side not perpendicular", yaw)
		}
		if math.Abs(fwd.Yaw()-yaw) > 1e-9 {
			t.Errorf("yaw %v: YawDir().Yaw() = %v", yaw, fwd.Yaw())
		}
		rotated := RotateY(yaw).MulVec3Dir(V3(0, 0, 1))
		if !rotated.ApproxEqual(fwd, 1e-12) {
			t.Errorf("yaw %v: RotateY(+Z) = %v, want %v", yaw, rotated, fwd)
		}
		// A small positive yaw step moves forward toward side.
		next := YawDir(yaw + 1e-3)
		if next.Sub(fwd).Dot(side) <= 0 {
			t.Errorf("yaw %v: increasing yaw does not turn toward SideDir", yaw)
		}
	}
}

func TestModelTransform(t *testing.T) {
	m := Model(V3(10, 2, -3), math.Pi/2, 0, 0)
	got := m.MulVec3(V3(0, 0, 1))
	want := V3(11, 2, -3)
	if !got.ApproxEqual(want, 1e-9) {
		t.Errorf("Model forward point = %v, want %v", got, want)
	}
	if m.Translation() != V3(10, 2, -3) {
		t.Errorf("Translation = %v", m.Translation())
	}
}
