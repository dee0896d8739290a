package render

import (
	"github.com/taigrr/tuikart/pkg/math3d"
)

// Marker is a dot plotted on the minimap.
type Marker struct {
	Position math3d.Vec3
	Color    Color
}

// Minimap is a top-down outline of a path fitted into a pixel box, +Z up
// and +X right.
type Minimap struct {
	Width, Height int

	path     []math3d.Vec3
	min, max math3d.Vec3
	scale    float64
}

// NewMinimap fits path into width x height pixels, keeping aspect.
func NewMinimap(path []math3d.Vec3, width, height int) *Minimap {
	m := &Minimap{Width: width, Height: height, path: path}
	if len(path) == 0 {
		return m
	}

	m.min, m.max = path[0], path[0]
	for _, p := range path[1:] {
		m.min = m.min.Min(p)
		m.max = m.max.Max(p)
	}
	spanX := m.max.X - m.min.X
	spanZ := m.max.Z - m.min.Z
	m.scale = 1
	if spanX > 0 || spanZ > 0 {
		m.scale = min(float64(width-1)/max(spanX, 1e-9), float64(height-1)/max(spanZ, 1e-9))
	}
	return m
}

// Project maps a world point to minimap pixel offsets.
func (m *Minimap) Project(p math3d.Vec3) (x, y int) {
	return int((p.X - m.min.X) * m.scale), int((m.max.Z - p.Z) * m.scale)
}

// Draw plots the path and markers with the box's top-left at (ox, oy).
// Markers are drawn as 2x2 dots in order, so later ones sit on top.
func (m *Minimap) Draw(fb *Framebuffer, ox, oy int, line Color, markers []Marker) {
	for i := 1; i < len(m.path); i++ {
		x0, y0 := m.Project(m.path[i-1])
		x1, y1 := m.Project(m.path[i])
		fb.DrawLine(ox+x0, oy+y0, ox+x1, oy+y1, line)
	}
	for _, mk := range markers {
		x, y := m.Project(mk.Position)
		fb.DrawRect(ox+x-1, oy+y-1, 2, 2, mk.Color)
	}
}
