package track

import (
	"github.com/taigrr/tuikart/pkg/math3d"
	"github.com/taigrr/tuikart/pkg/models"
)

// Mesh dimensions in world units.
const (
	curbWidth  = 1.0
	curbHeight = 0.05
	lineDepth  = 1.5
)

// Mesh builds a renderable mesh for the track: one road quad and two curb
// strips per segment, plus a start/finish line. Curbs alternate red and
// white by segment.
func (t *Track) Mesh() *models.Mesh {
	m := models.NewMesh("track")
	road := m.AddMaterial("road", 0.32, 0.32, 0.36)
	red := m.AddMaterial("curb-red", 0.85, 0.15, 0.15)
	white := m.AddMaterial("curb-white", 0.95, 0.95, 0.95)
	line := m.AddMaterial("finish", 1, 1, 1)

	up := math3d.Up()
	lift := math3d.V3(0, curbHeight, 0)
	for i, seg := range t.Segments {
		side := perpendicular(seg.Direction)
		half := side.Scale(seg.Width / 2)
		curb := side.Scale(seg.Width/2 + curbWidth)

		m.AddQuad(
			seg.Start.Sub(half), seg.End.Sub(half),
			seg.End.Add(half), seg.Start.Add(half),
			up, road,
		)

		mat := red
		if i%2 == 1 {
			mat = white
		}
		m.AddQuad(
			seg.Start.Sub(curb).Add(lift), seg.End.Sub(curb).Add(lift),
			seg.End.Sub(half).Add(lift), seg.Start.Sub(half).Add(lift),
			up, mat,
		)
		m.AddQuad(
			seg.Start.Add(half).Add(lift), seg.End.Add(half).Add(lift),
			seg.End.Add(curb).Add(lift), seg.Start.Add(curb).Add(lift),
			up, mat,
		)
	}

	if len(t.Segments) > 0 {
		half := perpendicular(t.StartDirection).Scale(t.Segments[0].Width / 2)
		depth := t.StartDirection.Scale(lineDepth)
		p := t.StartPosition.Add(lift.Scale(0.5))
		m.AddQuad(p.Sub(half), p.Sub(half).Add(depth), p.Add(half).Add(depth), p.Add(half), up, line)
	}

	m.CalculateBounds()
	return m
}
