package quesimg

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DefaultMargin is the gap in pixels between the canvas edge and the text,
// on every side.
const DefaultMargin = 10

// Palette holds the two colours a canvas is painted with.
type Palette struct {
	BG color.Color
	FG color.Color
}

// DefaultPalette is black text on opaque white.
var DefaultPalette = Palette{
	BG: color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
	FG: color.RGBA{0x00, 0x00, 0x00, 0xFF},
}

// Canvas is a background filled raster owned by a single job.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas allocates a width x height canvas filled with bg.
func NewCanvas(width, height int, bg color.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	if bg == nil {
		bg = DefaultPalette.BG
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{img: img}, nil
}

// Image exposes the underlying pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// DrawLines draws block top to bottom, left aligned at margin. The first
// line's top edge sits at margin and the cursor advances by each line's
// measured height. Nothing past the bottom edge is checked; size the canvas
// with CanvasHeight first.
func (c *Canvas) DrawLines(block LineBlock, face font.Face, fg color.Color, margin int) {
	if fg == nil {
		fg = DefaultPalette.FG
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(fg),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	y := margin
	for _, ln := range block {
		d.Dot = fixed.P(margin, y+ascent)
		d.DrawString(ln.Text)
		y += ln.Height
	}
}

// CanvasHeight is the height needed to hold textHeight pixels of lines with
// margin above and below, but never less than minHeight.
func CanvasHeight(textHeight, margin, minHeight int) int {
	return max(textHeight+2*margin, minHeight)
}

// ParseColor accepts a CSS colour name ("white", "navy") or a hex value in
// #rgb, #rrggbb or #rrggbbaa form.
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, fmt.Errorf("%w: empty colour", ErrConfig)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return nil, fmt.Errorf("%w: unknown colour %q", ErrConfig, s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("%w: bad hex colour %q", ErrConfig, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex colour %q", ErrConfig, s)
	}
	return color.NRGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
