package label

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Defaults for a 62 mm continuous tape at 300 dpi.
const (
	DefaultWidth       = 696
	DefaultHeight      = 271
	DefaultLineSpacing = 2
	DefaultMargin      = 16
)

// face is monospaced: every glyph advances glyphWidth pixels and a line is
// glyphHeight pixels tall before LineSpacing is added.
var face = basicfont.Face7x13

const (
	glyphWidth  = 7
	glyphHeight = 13
)

// Renderer draws label lines onto a fixed-size canvas. Lines are
// left-aligned within their block and the block is centered on the canvas,
// scaled up by the largest whole factor that fits inside the margins. A block
// larger than the area inside the margins is shrunk to fit.
type Renderer struct {
	Width       int
	Height      int
	LineSpacing int
	Margin      int
}

// NewRenderer returns a Renderer with the default label geometry.
func NewRenderer() Renderer {
	return Renderer{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		LineSpacing: DefaultLineSpacing,
		Margin:      DefaultMargin,
	}
}

// LinePitch is the vertical distance in unscaled pixels between baselines.
func (r Renderer) LinePitch() int {
	return glyphHeight + r.LineSpacing
}

// Render returns a white Width x Height image with lines drawn in black.
func (r Renderer) Render(lines []string) *image.NRGBA {
	canvas := imaging.New(r.Width, r.Height, color.White)
	if len(lines) == 0 {
		return canvas
	}

	block := r.drawBlock(lines)
	b := block.Bounds()
	availW, availH := r.Width-2*r.Margin, r.Height-2*r.Margin
	switch {
	case availW > 0 && availH > 0 && (b.Dx() > availW || b.Dy() > availH):
		slog.Warn("Label text does not fit, scaling down",
			"width", b.Dx(), "height", b.Dy(), "available_width", availW, "available_height", availH)
		block = imaging.Fit(block, availW, availH, imaging.Lanczos)
	default:
		if scale := r.scale(b); scale > 1 {
			block = imaging.Resize(block, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
		}
	}
	return imaging.PasteCenter(canvas, block)
}

// drawBlock renders the lines at their natural size on a tight white block.
func (r Renderer) drawBlock(lines []string) *image.NRGBA {
	cols := 1
	for _, line := range lines {
		if n := len([]rune(line)); n > cols {
			cols = n
		}
	}
	width := cols * glyphWidth
	height := len(lines)*r.LinePitch() - r.LineSpacing
	if height < glyphHeight {
		height = glyphHeight
	}

	block := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(block, block.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  block,
		Src:  image.Black,
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(0, i*r.LinePitch()+face.Ascent)
		d.DrawString(line)
	}
	return block
}

func (r Renderer) scale(b image.Rectangle) int {
	availW := r.Width - 2*r.Margin
	availH := r.Height - 2*r.Margin
	if b.Dx() == 0 || b.Dy() == 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	scale := availW / b.Dx()
	if s := availH / b.Dy(); s < scale {
		scale = s
	}
	if scale < 1 {
		return 1
	}
	return scale
}
