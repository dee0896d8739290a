package vehicle

import (
	"math"
	"testing"

	"github.com/taigrr/tuikart/pkg/math3d"
)

func at(t *testing.T, x, z float64, vel math3d.Vec3) *Vehicle {
	t.Helper()
	v := newVehicle(t, 1)
	v.Position = math3d.V3(x, 0, z)
	v.Velocity = vel
	v.Speed = vel.HorizontalLen()
	return v
}

func TestCollide(t *testing.T) {
	tests := []struct {
		name     string
		a, b     math3d.Vec3
		va, vb   math3d.Vec3
		hit      bool
		wantDist float64
	}{
		{"apart", math3d.V3(0, 0, 0), math3d.V3(3, 0, 0), math3d.Zero3(), math3d.Zero3(), false, 3},
		{"touching", math3d.V3(0, 0, 0), math3d.V3(2, 0, 0), math3d.Zero3(), math3d.Zero3(), false, 2},
		{"overlap", math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.Zero3(), math3d.Zero3(), true, 2},
		{"coincident", math3d.V3(5, 0, 5), math3d.V3(5, 0, 5), math3d.Zero3(), math3d.Zero3(), true, 2},
		{"closing", math3d.V3(0, 0, 0), math3d.V3(0, 0, 1.5), math3d.V3(0, 0, 10), math3d.Zero3(), true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := at(t, tt.a.X, tt.a.Z, tt.va)
			b := at(t, tt.b.X, tt.b.Z, tt.vb)
			if got := Collide(a, b); got != tt.hit {
				t.Fatalf("Collide = %v, want %v", got, tt.hit)
			}
			if d := a.Position.Distance(b.Position); math.Abs(d-tt.wantDist) > 1e-9 {
				t.Errorf("distance after = %v, want %v", d, tt.wantDist)
			}
		})
	}
}

func TestCollideSymmetric(t *testing.T) {
	a := at(t, 0, 0, math3d.V3(0, 0, 10))
	b := at(t, 0.5, 1.2, math3d.V3(-1, 0, 2))
	midBefore := a.Position.Add(b.Position).Scale(0.5)
	momBefore := a.Velocity.Add(b.Velocity)

	Collide(a, b)

	midAfter := a.Position.Add(b.Position).Scale(0.5)
	if midAfter.Distance(midBefore) > 1e-9 {
		t.Errorf("midpoint moved from %v to %v", midBefore, midAfter)
	}
	momAfter := a.Velocity.Add(b.Velocity)
	if momAfter.Distance(momBefore) > 1e-9 {
		t.Errorf("velocity sum changed from %v to %v", momBefore, momAfter)
	}
	if a.Velocity.Z >= 10 {
		t.Errorf("rear car kept speed %v", a.Velocity.Z)
	}
}

func TestCollideCoincidentUsesX(t *testing.T) {
	a := at(t, 1, 1, math3d.Zero3())
	b := at(t, 1, 1, math3d.Zero3())
	Collide(a, b)
	if a.Position.X != 0 || b.Position.X != 2 {
		t.Errorf("positions = %v, %v, want x 0 and 2", a.Position, b.Position)
	}
}

func TestCollideSeparatingKeepsVelocity(t *testing.T) {
	a := at(t, 0, 0, math3d.V3(0, 0, -5))
	b := at(t, 0, 1, math3d.V3(0, 0, 5))
	Collide(a, b)
	if a.Velocity.Z != -5 || b.Velocity.Z != 5 {
		t.Errorf("velocities = %v, %v, want unchanged", a.Velocity, b.Velocity)
	}
}

func TestCollideAll(t *testing.T) {
	vs := []*Vehicle{
		at(t, 0, 0, math3d.Zero3()),
		at(t, 1, 0, math3d.Zero3()),
		at(t, 50, 0, math3d.Zero3()),
	}
	if n := CollideAll(vs); n != 1 {
		t.Errorf("contacts = %d, want 1", n)
	}
	if n := CollideAll(vs); n != 0 {
		t.Errorf("contacts after separation = %d, want 0", n)
	}
}
