package vehicle

import "github.com/taigrr/tuikart/pkg/math3d"

// CollisionRadius is the bounding-circle radius of every vehicle.
const CollisionRadius = 1.0

// closingDamping scales the velocity correction applied to closing pairs.
const closingDamping = 0.5

// Collide separates a and b if their bounding circles overlap and reports
// whether they did. Each vehicle moves half the penetration along the
// contact normal; if they are closing, each loses half the closing speed.
// Mass plays no part. Coincident vehicles separate along +X.
func Collide(a, b *Vehicle) bool {
	delta := b.Position.Sub(a.Position)
	dist := delta.Len()
	minDist := 2 * CollisionRadius
	if dist >= minDist {
		return false
	}

	n := delta.NormalizeOr(math3d.UnitX())
	push := n.Scale((minDist - dist) / 2)
	a.Position = a.Position.Sub(push)
	b.Position = b.Position.Add(push)

	closing := b.Velocity.Sub(a.Velocity).Dot(n)
	if closing < 0 {
		impulse := n.Scale(closing * closingDamping)
		a.Velocity = a.Velocity.Add(impulse)
		b.Velocity = b.Velocity.Sub(impulse)
		a.Speed = a.Velocity.HorizontalLen()
		b.Speed = b.Velocity.HorizontalLen()
	}
	return true
}

// CollideAll resolves every pair once in row-major order and returns the
// number of contacts.
func CollideAll(vs []*Vehicle) int {
	contacts := 0
	for i := range vs {
		for j := i + 1; j < len(vs); j++ {
			if Collide(vs[i], vs[j]) {
				contacts++
			}
		}
	}
	return contacts
}
