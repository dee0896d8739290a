package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tuikart/pkg/math3d"
)

// Draw converts the framebuffer to half-block cells on scr. Each cell shows
// two pixels: ▀ with the top pixel as foreground and the bottom one as
// background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			})
		}
	}
}

func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an alias for color.RGBA.
type Color = color.RGBA

var (
	ColorBlack  = color.RGBA{0, 0, 0, 255}
	ColorWhite  = color.RGBA{255, 255, 255, 255}
	ColorRed    = color.RGBA{230, 40, 40, 255}
	ColorGreen  = color.RGBA{40, 200, 60, 255}
	ColorBlue   = color.RGBA{40, 90, 230, 255}
	ColorYellow = color.RGBA{250, 210, 30, 255}
	ColorCyan   = color.RGBA{40, 210, 230, 255}
	ColorOrange = color.RGBA{250, 140, 20, 255}
	ColorPurple = color.RGBA{150, 60, 210, 255}
	ColorPink   = color.RGBA{240, 110, 180, 255}
	ColorGray   = color.RGBA{128, 128, 128, 255}
	ColorSky    = color.RGBA{120, 180, 235, 255}
	ColorGrass  = color.RGBA{46, 120, 50, 255}
)

// KartColors is the livery palette handed out by grid slot.
var KartColors = []Color{
	ColorRed, ColorBlue, ColorGreen, ColorYellow,
	ColorPurple, ColorOrange, ColorCyan, ColorPink,
}

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// ColorFromFloat converts a 0-1 RGBA quadruple.
func ColorFromFloat(c [4]float64) Color {
	to8 := func(v float64) uint8 {
		return uint8(math3d.Clamp(v, 0, 1)*255 + 0.5)
	}
	return Color{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3])}
}

// Shade scales the RGB channels by k, clamped to 0-1.
func Shade(c Color, k float64) Color {
	k = math3d.Clamp(k, 0, 1)
	return Color{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}

// Modulate multiplies two colors channel by channel.
func Modulate(a, b Color) Color {
	mul := func(x, y uint8) uint8 {
		return uint8(uint16(x) * uint16(y) / 255)
	}
	return Color{R: mul(a.R, b.R), G: mul(a.G, b.G), B: mul(a.B, b.B), A: mul(a.A, b.A)}
}
