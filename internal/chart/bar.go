package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 960
	Height = 540

	marginLeft   = 60
	marginRight  = 20
	marginTop    = 50
	marginBottom = 70
)

// ErrNoData is returned when a series has no points to draw.
var ErrNoData = errors.New("chart: no data")

// Series is one labelled column of values.
type Series struct {
	Title  string
	Unit   string
	Labels []string
	Values []float64
	Color  color.RGBA
}

var (
	background = color.RGBA{255, 255, 255, 255}
	axisColor  = color.RGBA{60, 60, 60, 255}
	textColor  = color.RGBA{30, 30, 30, 255}
)

// RenderBar draws s as a vertical bar chart and encodes it as PNG.
// Negative values extend below the zero line.
func RenderBar(w io.Writer, s Series) error {
	if len(s.Values) == 0 || len(s.Values) != len(s.Labels) {
		return ErrNoData
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	lo, hi := 0.0, 0.0
	for _, v := range s.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	plotW := Width - marginLeft - marginRight
	plotH := Height - marginTop - marginBottom
	yFor := func(v float64) int {
		return marginTop + int(float64(plotH)*(hi-v)/(hi-lo))
	}
	zeroY := yFor(0)

	// axes
	fillRect(img, marginLeft, marginTop, marginLeft+1, marginTop+plotH, axisColor)
	fillRect(img, marginLeft, zeroY, marginLeft+plotW, zeroY+1, axisColor)

	slot := plotW / len(s.Values)
	barW := max(slot*2/3, 1)
	for i, v := range s.Values {
		x0 := marginLeft + i*slot + (slot-barW)/2
		y := yFor(v)
		top, bottom := y, zeroY
		if v < 0 {
			top, bottom = zeroY, y
		}
		fillRect(img, x0, top, x0+barW, bottom, s.Color)

		label := fmt.Sprintf("%.1f", v)
		drawText(img, label, x0, top-4, textColor)
		drawText(img, truncate(s.Labels[i], slot/7), x0, Height-marginBottom+20, textColor)
	}

	title := s.Title
	if s.Unit != "" {
		title = fmt.Sprintf("%s (%s)", s.Title, s.Unit)
	}
	drawText(img, title, marginLeft, marginTop-25, textColor)

	return png.Encode(w, img)
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// drawText draws ASCII text with its baseline at y.
func drawText(img *image.RGBA, text string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func truncate(s string, n int) string {
	if n < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
