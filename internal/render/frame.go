package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kriansa/drive-pi/internal/session"
)

// Display geometry, in pixels
const (
	Width  = 128
	Height = 64
)

const (
	glyphWidth  = 7
	lineHeight  = 12
	boxPadding  = 2
	labelHeight = 13
	maxColumns  = Width / glyphWidth
)

var (
	face = basicfont.Face7x13
	on   = color.Gray{Y: 0xff}
	off  = color.Gray{Y: 0x00}
)

// Frame draws the screen on a Width x Height grayscale image where every
// pixel is either fully on or off.
func Frame(sc session.Screen) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(off), image.Point{}, draw.Src)

	drawLabels(img, Labels(sc))
	drawCentered(img, face.Ascent-1, Title)

	lines := Lines(sc)
	switch sc.(type) {
	case session.DeviceList:
		for i, line := range lines {
			drawText(img, 0, bodyBaseline(i), line)
		}
	default:
		for i, line := range lines {
			drawCentered(img, bodyBaseline(i), line)
		}
	}

	return img
}

// bodyBaseline is the baseline of body row i, rows sit between the label boxes
func bodyBaseline(row int) int {
	return labelHeight + face.Ascent + row*lineHeight
}

// drawLabels draws each non-empty label inside a box at its corner: A top
// left, B top right, C bottom left, D bottom right.
func drawLabels(img *image.Gray, labels [4]string) {
	for i, label := range labels {
		if label == "" {
			continue
		}

		w := textWidth(label) + 2*boxPadding
		x := 0
		if i == 1 || i == 3 {
			x = Width - w
		}
		y := 0
		if i >= 2 {
			y = Height - labelHeight
		}

		drawBox(img, image.Rect(x, y, x+w, y+labelHeight))
		drawText(img, x+boxPadding, y+face.Ascent, label)
	}
}

func drawBox(img *image.Gray, r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetGray(x, r.Min.Y, on)
		img.SetGray(x, r.Max.Y-1, on)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetGray(r.Min.X, y, on)
		img.SetGray(r.Max.X-1, y, on)
	}
}

func drawCentered(img *image.Gray, baseline int, s string) {
	drawText(img, (Width-textWidth(s))/2, baseline, s)
}

func drawText(img *image.Gray, x, baseline int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(on),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}
