// Package models provides the mesh representation shared by track geometry,
// vehicle bodies and the GLB import/export path.
package models

import (
	"github.com/taigrr/tuikart/pkg/math3d"
)

// Mesh represents a triangle mesh with per-face materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle referencing three vertices and a material.
type Face struct {
	V        [3]int
	Material int // index into Mesh.Materials, -1 for none
}

// Material is a flat base color in 0-1 RGBA.
type Material struct {
	Name      string
	BaseColor [4]float64
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// AddMaterial appends a material and returns its index.
func (m *Mesh) AddMaterial(name string, r, g, b float64) int {
	m.Materials = append(m.Materials, Material{Name: name, BaseColor: [4]float64{r, g, b, 1}})
	return len(m.Materials) - 1
}

// AddQuad appends two triangles covering a, b, c, d (in winding order)
// with a shared normal.
func (m *Mesh) AddQuad(a, b, c, d, normal math3d.Vec3, material int) {
	base := len(m.Vertices)
	uvs := [4]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)}
	for i, p := range [4]math3d.Vec3{a, b, c, d} {
		m.Vertices = append(m.Vertices, MeshVertex{Position: p, Normal: normal, UV: uvs[i]})
	}
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 1, base + 2}, Material: material},
		Face{V: [3]int{base, base + 2, base + 3}, Material: material},
	)
}

// AddBox appends an axis-aligned box spanning min to max with outward
// normals.
func (m *Mesh) AddBox(min, max math3d.Vec3, material int) {
	p := func(x, y, z int) math3d.Vec3 {
		v := min
		if x == 1 {
			v.X = max.X
		}
		if y == 1 {
			v.Y = max.Y
		}
		if z == 1 {
			v.Z = max.Z
		}
		return v
	}
	m.AddQuad(p(0, 1, 0), p(0, 1, 1), p(1, 1, 1), p(1, 1, 0), math3d.V3(0, 1, 0), material)
	m.AddQuad(p(0, 0, 0), p(1, 0, 0), p(1, 0, 1), p(0, 0, 1), math3d.V3(0, -1, 0), material)
	m.AddQuad(p(0, 0, 1), p(1, 0, 1), p(1, 1, 1), p(0, 1, 1), math3d.V3(0, 0, 1), material)
	m.AddQuad(p(0, 0, 0), p(0, 1, 0), p(1, 1, 0), p(1, 0, 0), math3d.V3(0, 0, -1), material)
	m.AddQuad(p(1, 0, 0), p(1, 1, 0), p(1, 1, 1), p(1, 0, 1), math3d.V3(1, 0, 0), material)
	m.AddQuad(p(0, 0, 0), p(0, 0, 1), p(0, 1, 1), p(0, 1, 0), math3d.V3(-1, 0, 0), material)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	// Unnormalized face normals weight larger faces more.
	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// FitTo recenters the mesh on the origin, rests it on y=0 and scales it so
// its longest horizontal side equals length.
func (m *Mesh) FitTo(length float64) {
	m.CalculateBounds()
	size := m.Size()
	longest := max(size.X, size.Z)
	if longest <= 0 {
		return
	}
	s := length / longest
	c := m.Center()
	c.Y = m.BoundsMin.Y
	m.Transform(math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(c.Negate())))
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index for face i, -1 if none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i, or nil when out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// FaceColor returns the base color of face i's material. ok is false for
// faces without a material.
func (m *Mesh) FaceColor(i int) (c [4]float64, ok bool) {
	mat := m.GetMaterial(m.Faces[i].Material)
	if mat == nil {
		return c, false
	}
	return mat.BaseColor, true
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
