package render

import (
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// Renderer is everything the game draws through. Frames are bracketed by
// BeginFrame and EndFrame; text is overlaid after the 3D scene.
type Renderer interface {
	BeginFrame()
	Clear(c Color)
	DrawMesh(mesh MeshRenderer, transform math3d.Mat4, c Color)
	DrawQuad(pos math3d.Vec3, width, height float64, c Color)
	DrawText(x, y int, text string, c Color)
	EndFrame() error
}

// Screen is a cell surface that can be flushed to the display.
// *uv.Terminal satisfies it.
type Screen interface {
	uv.Screen
	Display() error
}

type textOp struct {
	x, y int
	text string
	fg   Color
}

// TerminalRenderer rasterizes into a half-block framebuffer and presents it
// on a terminal screen.
type TerminalRenderer struct {
	screen Screen
	camera *Camera
	fb     *Framebuffer
	raster *Rasterizer
	text   []textOp

	// TextBackground fills behind overlay text; transparent leaves the
	// scene color.
	TextBackground Color
}

var _ Renderer = (*TerminalRenderer)(nil)

// NewTerminalRenderer sizes a renderer to the screen bounds.
func NewTerminalRenderer(scr Screen, cam *Camera) *TerminalRenderer {
	b := scr.Bounds()
	fb := NewFramebuffer(b.Dx(), b.Dy()*2)
	t := &TerminalRenderer{
		screen:         scr,
		camera:         cam,
		fb:             fb,
		raster:         NewRasterizer(cam, fb),
		TextBackground: RGB(10, 10, 16),
	}
	t.Resize(b.Dx(), b.Dy())
	return t
}

// Resize adapts the framebuffer to cols x rows terminal cells.
func (t *TerminalRenderer) Resize(cols, rows int) {
	t.fb.Resize(max(cols, 0), max(rows, 0)*2)
	t.raster.Resize()
	if cols > 0 && rows > 0 {
		t.camera.SetAspectRatio(float64(t.fb.Width) / float64(t.fb.Height))
	}
}

// FramebufferSize returns the pixel dimensions.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.fb.Width, t.fb.Height
}

// Framebuffer exposes the pixel grid for 2D overlays such as the minimap.
func (t *TerminalRenderer) Framebuffer() *Framebuffer {
	return t.fb
}

// Camera returns the camera frames are drawn through.
func (t *TerminalRenderer) Camera() *Camera {
	return t.camera
}

// Stats returns the culling counters of the current frame.
func (t *TerminalRenderer) Stats() CullingStats {
	return t.raster.CullingStats
}

// BeginFrame resets depth, culling state and queued text.
func (t *TerminalRenderer) BeginFrame() {
	t.text = t.text[:0]
	t.raster.ClearDepth()
	t.raster.InvalidateFrustum()
	t.raster.ResetCullingStats()
}

// Clear fills the framebuffer.
func (t *TerminalRenderer) Clear(c Color) {
	t.fb.Clear(c)
}

// DrawMesh rasterizes a mesh, tinting material colors by c.
func (t *TerminalRenderer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, c Color) {
	t.raster.DrawMesh(mesh, transform, c)
}

// DrawQuad draws a camera-facing rectangle centered on pos.
func (t *TerminalRenderer) DrawQuad(pos math3d.Vec3, width, height float64, c Color) {
	t.raster.DrawBillboard(pos, width, height, c)
}

// DrawText queues text at cell (x, y). Text lands on top of the scene at
// EndFrame.
func (t *TerminalRenderer) DrawText(x, y int, text string, c Color) {
	t.text = append(t.text, textOp{x: x, y: y, text: text, fg: c})
}

// EndFrame copies the framebuffer and text to the screen and displays it.
func (t *TerminalRenderer) EndFrame() error {
	area := t.screen.Bounds()
	t.fb.Draw(t.screen, area)

	for _, op := range t.text {
		x := op.x
		for _, r := range op.text {
			if x >= area.Max.X {
				break
			}
			if x >= area.Min.X && op.y >= area.Min.Y && op.y < area.Max.Y {
				t.screen.SetCell(x, op.y, &uv.Cell{
					Content: string(r),
					Width:   1,
					Style: uv.Style{
						Fg: op.fg,
						Bg: rgbaToColor(t.TextBackground),
					},
				})
			}
			x++
		}
	}

	return t.screen.Display()
}
