package render

import (
	"math"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// MeshRenderer is the read side of a triangle mesh. It keeps render free of
// the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer adds bounds for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// ColoredMeshRenderer adds per-face base colors in 0-1 RGBA.
type ColoredMeshRenderer interface {
	MeshRenderer
	FaceColor(i int) ([4]float64, bool)
}

// Rasterizer fills flat-shaded triangles into a framebuffer with a Z-buffer.
// Triangles are drawn regardless of winding.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64
	frustum      Frustum
	frustumDirty bool

	LightDir     math3d.Vec3 // towards the light
	Ambient      float64     // minimum brightness, 0-1
	CullingStats CullingStats
}

// CullingStats counts per-frame culling work.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
	Triangles    int // triangles that reached the fill stage
}

// NewRasterizer creates a rasterizer drawing through camera into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		LightDir:     math3d.V3(0.4, 1, -0.3).Normalize(),
		Ambient:      0.45,
	}
	r.Resize()
	return r
}

// Resize matches the Z-buffer to the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	if n := r.fb.Width * r.fb.Height; len(r.zbuffer) != n {
		r.zbuffer = make([]float64, n)
	}
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the Z-buffer. Call before each frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// InvalidateFrustum marks the frustum stale after the camera moved.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// Frustum returns the current view frustum.
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjectionMatrix())
		r.frustumDirty = false
	}
	return r.frustum
}

// ResetCullingStats zeroes the counters. Call once per frame.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests a world-space box against the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.Frustum().IntersectAABB(worldBounds)
}

type screenVertex struct {
	X, Y float64
	Z    float64 // NDC depth
}

// DrawTriangle fills a world-space triangle with a flat color. Parts behind
// the near plane are clipped away.
func (r *Rasterizer) DrawTriangle(v0, v1, v2 math3d.Vec3, c Color) {
	vp := r.camera.ViewProjectionMatrix()
	clip := [3]math3d.Vec4{
		vp.MulVec4(math3d.V4FromV3(v0, 1)),
		vp.MulVec4(math3d.V4FromV3(v1, 1)),
		vp.MulVec4(math3d.V4FromV3(v2, 1)),
	}
	if outsideClip(clip) {
		return
	}

	// One plane turns a triangle into at most a quad.
	var buf [4]math3d.Vec4
	poly := clipNear(clip[:], buf[:0])
	if len(poly) < 3 {
		return
	}

	var sv [4]screenVertex
	for i, p := range poly {
		sv[i] = r.toScreen(p)
	}
	for i := 1; i+1 < len(poly); i++ {
		r.fill(sv[0], sv[i], sv[i+1], c)
	}
}

// DrawTriangleLit shades base by the face normal against LightDir and
// fills the triangle. Lighting is two-sided.
func (r *Rasterizer) DrawTriangleLit(v0, v1, v2 math3d.Vec3, base Color) {
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	k := r.Ambient + (1-r.Ambient)*math.Abs(n.Dot(r.LightDir))
	r.DrawTriangle(v0, v1, v2, Shade(base, k))
}

// DrawMesh renders a mesh under transform. Face material colors are
// modulated by c; faces without a material use c as is. Meshes that
// report bounds are frustum culled first.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, c Color) {
	if r.cull(mesh, transform) {
		return
	}

	colored, _ := mesh.(ColoredMeshRenderer)
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		p0, _, _ := mesh.GetVertex(face[0])
		p1, _, _ := mesh.GetVertex(face[1])
		p2, _, _ := mesh.GetVertex(face[2])

		col := c
		if colored != nil {
			if fc, ok := colored.FaceColor(i); ok {
				col = Modulate(ColorFromFloat(fc), c)
			}
		}

		r.DrawTriangleLit(transform.MulVec3(p0), transform.MulVec3(p1), transform.MulVec3(p2), col)
	}
}

// DrawBillboard fills an unlit width x height rectangle centered on pos
// facing the camera.
func (r *Rasterizer) DrawBillboard(pos math3d.Vec3, width, height float64, c Color) {
	fwd := r.camera.Forward()
	right := fwd.Cross(r.camera.Up).NormalizeOr(math3d.UnitX())
	up := right.Cross(fwd)

	hr := right.Scale(width / 2)
	hu := up.Scale(height / 2)
	a := pos.Sub(hr).Sub(hu)
	b := pos.Add(hr).Sub(hu)
	cc := pos.Add(hr).Add(hu)
	d := pos.Sub(hr).Add(hu)
	r.DrawTriangle(a, b, cc, c)
	r.DrawTriangle(a, cc, d, c)
}

func (r *Rasterizer) cull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisible(NewAABB(lo, hi).Transform(transform)) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

func (r *Rasterizer) toScreen(p math3d.Vec4) screenVertex {
	ndc := p.PerspectiveDivide()
	return screenVertex{
		X: (ndc.X + 1) * 0.5 * float64(r.Width()),
		Y: (1 - ndc.Y) * 0.5 * float64(r.Height()),
		Z: ndc.Z,
	}
}

func (r *Rasterizer) fill(a, b, c screenVertex, col Color) {
	area := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(area) < 1e-9 {
		return
	}
	r.CullingStats.Triangles++

	w, h := r.Width(), r.Height()
	minX := int(math.Max(0, math.Floor(min(a.X, b.X, c.X))))
	maxX := int(math.Min(float64(w-1), math.Ceil(max(a.X, b.X, c.X))))
	minY := int(math.Max(0, math.Floor(min(a.Y, b.Y, c.Y))))
	maxY := int(math.Min(float64(h-1), math.Ceil(max(a.Y, b.Y, c.Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			bc := barycentric(a.X, a.Y, b.X, b.Y, c.X, c.Y, px, py)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*a.Z + bc.Y*b.Z + bc.Z*c.Z
			i := y*w + x
			if z >= r.zbuffer[i] {
				continue
			}
			r.zbuffer[i] = z
			r.fb.Pixels[i] = col
		}
	}
}

// outsideClip reports whether all three vertices lie beyond the same clip
// plane.
func outsideClip(v [3]math3d.Vec4) bool {
	all := func(out func(p math3d.Vec4) bool) bool {
		return out(v[0]) && out(v[1]) && out(v[2])
	}
	return all(func(p math3d.Vec4) bool { return p.X > p.W }) ||
		all(func(p math3d.Vec4) bool { return p.X < -p.W }) ||
		all(func(p math3d.Vec4) bool { return p.Y > p.W }) ||
		all(func(p math3d.Vec4) bool { return p.Y < -p.W }) ||
		all(func(p math3d.Vec4) bool { return p.Z > p.W }) ||
		all(func(p math3d.Vec4) bool { return p.Z < -p.W })
}

// clipNear clips a convex polygon against z >= -w (Sutherland-Hodgman).
func clipNear(in, out []math3d.Vec4) []math3d.Vec4 {
	for i := range in {
		a, b := in[i], in[(i+1)%len(in)]
		da, db := a.Z+a.W, b.Z+b.W
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, a.Lerp(b, da/(da-db)))
		}
	}
	return out
}

// barycentric returns the weights of (px, py) for vertices 0, 1, 2.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}
