package models

import "github.com/taigrr/tuikart/pkg/math3d"

// KartLength is the nose-to-tail length of the built-in kart, matching the
// two-unit collision diameter used by the simulation.
const KartLength = 2.0

// NewKart builds a low-poly kart facing +Z with its wheels resting on y=0.
// The body takes the given color; wheels, seat and spoiler are fixed.
func NewKart(name string, r, g, b float64) *Mesh {
	m := NewMesh(name)
	body := m.AddMaterial("body", r, g, b)
	tire := m.AddMaterial("tire", 0.08, 0.08, 0.08)
	seat := m.AddMaterial("seat", 0.2, 0.2, 0.25)
	trim := m.AddMaterial("trim", r*0.6, g*0.6, b*0.6)

	// chassis
	m.AddBox(math3d.V3(-0.55, 0.15, -0.95), math3d.V3(0.55, 0.4, 0.95), body)
	// nose cone
	m.AddBox(math3d.V3(-0.35, 0.15, 0.95), math3d.V3(0.35, 0.32, 1.0), trim)
	// seat back
	m.AddBox(math3d.V3(-0.3, 0.4, -0.6), math3d.V3(0.3, 0.85, -0.35), seat)
	// spoiler
	m.AddBox(math3d.V3(-0.6, 0.7, -1.0), math3d.V3(0.6, 0.8, -0.8), trim)

	for _, w := range [4]math3d.Vec3{
		math3d.V3(-0.75, 0, 0.55),
		math3d.V3(0.55, 0, 0.55),
		math3d.V3(-0.75, 0, -0.75),
		math3d.V3(0.55, 0, -0.75),
	} {
		m.AddBox(w, w.Add(math3d.V3(0.2, 0.35, 0.2)), tire)
	}

	m.CalculateBounds()
	return m
}
