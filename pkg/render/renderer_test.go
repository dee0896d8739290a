package render

import (
	"image/color"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tuikart/pkg/math3d"
)

type bufferScreen struct {
	uv.ScreenBuffer
	displays int
}

func (s *bufferScreen) Display() error {
	s.displays++
	return nil
}

func newTestRenderer(cols, rows int) (*TerminalRenderer, *bufferScreen) {
	scr := &bufferScreen{ScreenBuffer: uv.NewScreenBuffer(cols, rows)}
	cam := forwardCamera(true)
	return NewTerminalRenderer(scr, cam), scr
}

func TestTerminalRendererSize(t *testing.T) {
	tr, _ := newTestRenderer(20, 10)
	w, h := tr.FramebufferSize()
	if w != 20 || h != 20 {
		t.Errorf("framebuffer = %dx%d, want 20x20", w, h)
	}
	if got := tr.Camera().AspectRatio; got != 1 {
		t.Errorf("aspect = %v, want 1", got)
	}

	tr.Resize(30, 5)
	w, h = tr.FramebufferSize()
	if w != 30 || h != 10 {
		t.Errorf("after resize = %dx%d, want 30x10", w, h)
	}
	if got := tr.Camera().AspectRatio; got != 3 {
		t.Errorf("aspect = %v, want 3", got)
	}
}

func TestTerminalRendererFrame(t *testing.T) {
	tr, scr := newTestRenderer(20, 10)

	tr.BeginFrame()
	tr.Clear(ColorSky)
	tr.DrawText(1, 0, "LAP 1/3", ColorWhite)
	if err := tr.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}

	if scr.displays != 1 {
		t.Errorf("displays = %d, want 1", scr.displays)
	}

	cell := scr.CellAt(5, 6)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("scene cell = %+v, want half block", cell)
	}
	if cell.Style.Fg != color.Color(ColorSky) || cell.Style.Bg != color.Color(ColorSky) {
		t.Errorf("scene colors = %v/%v, want sky", cell.Style.Fg, cell.Style.Bg)
	}

	for i, want := range "LAP 1/3" {
		got := scr.CellAt(1+i, 0)
		if got == nil || got.Content != string(want) {
			t.Errorf("text cell %d = %+v, want %q", i, got, want)
		}
	}
	if got := scr.CellAt(0, 0); got.Content != "▀" {
		t.Errorf("cell before text = %q, want half block", got.Content)
	}
}

func TestTerminalRendererTextClipped(t *testing.T) {
	tr, scr := newTestRenderer(5, 2)

	tr.BeginFrame()
	tr.Clear(ColorBlack)
	tr.DrawText(3, 1, "overflow", ColorWhite)
	tr.DrawText(0, 9, "offscreen", ColorWhite)
	if err := tr.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}

	if got := scr.CellAt(4, 1).Content; got != "v" {
		t.Errorf("last column = %q, want %q", got, "v")
	}
}

func TestTerminalRendererQueuedTextResets(t *testing.T) {
	tr, scr := newTestRenderer(10, 2)

	tr.BeginFrame()
	tr.DrawText(0, 0, "X", ColorWhite)
	_ = tr.EndFrame()

	tr.BeginFrame()
	tr.Clear(ColorBlack)
	_ = tr.EndFrame()

	if got := scr.CellAt(0, 0).Content; got != "▀" {
		t.Errorf("text from the previous frame survived: %q", got)
	}
}

func TestTerminalRendererDrawsScene(t *testing.T) {
	tr, _ := newTestRenderer(40, 20)
	tr.BeginFrame()
	tr.Clear(ColorBlack)
	tr.DrawMesh(facingTriangle(), math3d.Identity(), ColorRed)
	tr.DrawQuad(math3d.V3(0, 0, 9), 0.5, 0.5, ColorYellow)

	fb := tr.Framebuffer()
	if got := fb.GetPixel(20, 20); got != ColorYellow {
		t.Errorf("quad center = %v, want %v", got, ColorYellow)
	}
	lit := 0
	for _, p := range fb.Pixels {
		if p != ColorBlack && p != ColorYellow {
			lit++
		}
	}
	if lit == 0 {
		t.Error("mesh drew no pixels")
	}
	if s := tr.Stats(); s.MeshesDrawn != 1 {
		t.Errorf("stats = %+v, want one mesh drawn", s)
	}
}

func TestColorHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  Color
		want Color
	}{
		{"from float", ColorFromFloat([4]float64{1, 0.5, 0, 1}), Color{R: 255, G: 128, B: 0, A: 255}},
		{"from float clamps", ColorFromFloat([4]float64{2, -1, 0, 1}), Color{R: 255, G: 0, B: 0, A: 255}},
		{"shade half", Shade(RGB(200, 100, 50), 0.5), Color{R: 100, G: 50, B: 25, A: 255}},
		{"shade clamps", Shade(RGB(200, 100, 50), 3), RGB(200, 100, 50)},
		{"modulate white", Modulate(RGB(10, 20, 30), ColorWhite), RGB(10, 20, 30)},
		{"modulate black", Modulate(RGB(10, 20, 30), ColorBlack), Color{R: 0, G: 0, B: 0, A: 255}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestFramebuffer(t *testing.T) {
	fb := NewFramebuffer(8, 4)
	fb.Clear(ColorBlack)
	fb.DrawLine(0, 0, 7, 3, ColorWhite)

	if fb.GetPixel(0, 0) != ColorWhite || fb.GetPixel(7, 3) != ColorWhite {
		t.Error("line endpoints not drawn")
	}
	if got := fb.GetPixel(-1, 0); got != (Color{}) {
		t.Errorf("out of bounds = %v, want zero", got)
	}
	fb.SetPixel(100, 100, ColorRed)

	fb.Resize(3, 2)
	if len(fb.Pixels) != 6 {
		t.Errorf("pixels = %d, want 6", len(fb.Pixels))
	}

	img := fb.ToImage()
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("image bounds = %v, want 3x2", b)
	}
}

func TestMinimap(t *testing.T) {
	path := []math3d.Vec3{
		math3d.V3(0, 0, 0),
		math3d.V3(0, 0, 100),
		math3d.V3(50, 0, 100),
	}
	m := NewMinimap(path, 21, 21)

	tests := []struct {
		name  string
		p     math3d.Vec3
		wantX int
		wantY int
	}{
		{"start bottom left", path[0], 0, 20},
		{"north is up", path[1], 0, 0},
		{"east is right", path[2], 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := m.Project(tc.p)
			if x != tc.wantX || y != tc.wantY {
				t.Errorf("got (%d, %d), want (%d, %d)", x, y, tc.wantX, tc.wantY)
			}
		})
	}

	fb := NewFramebuffer(30, 30)
	m.Draw(fb, 2, 2, ColorWhite, []Marker{{Position: path[2], Color: ColorRed}})
	if got := fb.GetPixel(2, 12); got != ColorWhite {
		t.Errorf("path pixel = %v, want white", got)
	}
	if got := fb.GetPixel(12, 2); got != ColorRed {
		t.Errorf("marker pixel = %v, want red", got)
	}
}
