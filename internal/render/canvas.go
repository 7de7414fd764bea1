package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Background selects how a canvas is filled before drawing.
type Background int

const (
	// Transparent leaves every pixel at zero alpha.
	Transparent Background = iota
	// White fills the canvas with opaque white.
	White
)

// Canvas is an RGBA bitmap that text is drawn onto.
type Canvas struct {
	img  *image.RGBA
	face font.Face
	ink  image.Image
}

// NewCanvas allocates a width×height canvas.
func NewCanvas(width, height int, bg Background, face font.Face) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if bg == White {
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	}
	return &Canvas{
		img:  img,
		face: face,
		ink:  image.NewUniform(color.Black),
	}
}

// DrawText draws text with its baseline starting at (x, y).
func (c *Canvas) DrawText(text string, x, y int) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  c.ink,
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawLines draws every wrapped line at its own position.
func (c *Canvas) DrawLines(lines []Line) {
	for _, line := range lines {
		c.DrawText(line.Text, line.X, line.Y)
	}
}

// EncodePNG encodes the canvas losslessly, alpha included.
func (c *Canvas) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}
