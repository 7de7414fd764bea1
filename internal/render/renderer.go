package render

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
)

// ErrRenderFailure wraps every error produced while drawing or writing images.
var ErrRenderFailure = errors.New("render failed")

// Placeholder is shown for a bot that has not spoken yet.
const Placeholder = "No message yet"

// Layout holds the canvas sizes and spacing shared by all images.
type Layout struct {
	PortraitWidth  int
	PortraitHeight int
	PreviewWidth   int
	PreviewHeight  int
	Padding        int
	LineHeight     int
}

// DefaultLayout is an 800×400 preview with 40px padding and 30px lines.
func DefaultLayout() Layout {
	return Layout{
		PortraitWidth:  800,
		PortraitHeight: 200,
		PreviewWidth:   800,
		PreviewHeight:  400,
		Padding:        40,
		LineHeight:     30,
	}
}

// Renderer draws portraits and previews. Font faces keep internal state, so
// calls are serialized.
type Renderer struct {
	mu     sync.Mutex
	face   font.Face
	layout Layout
}

// NewRenderer returns a Renderer drawing with face.
func NewRenderer(face font.Face, layout Layout) *Renderer {
	return &Renderer{face: face, layout: layout}
}

// Portrait renders one bot's label and utterance on a transparent canvas.
// The canvas is PortraitWidth wide and at least PortraitHeight tall; it grows
// downward when the wrapped text would otherwise run past the bottom padding.
func (r *Renderer) Portrait(id bot.ID, text string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.layout
	if l.PortraitWidth <= 0 || l.PortraitHeight <= 0 {
		return nil, fmt.Errorf("%w: invalid portrait size %dx%d", ErrRenderFailure, l.PortraitWidth, l.PortraitHeight)
	}

	sec := r.layoutSection(id, text, l.Padding, l.PortraitWidth)
	canvas := NewCanvas(l.PortraitWidth, max(l.PortraitHeight, sec.bottom()+l.Padding), Transparent, r.face)
	sec.draw(canvas)
	return canvas.EncodePNG()
}

// Preview renders both bots on one white canvas: A in the top half, B from
// the vertical midpoint down. A long reply from A pushes B further down, and
// the canvas grows to hold B's last line.
func (r *Renderer) Preview(latestA, latestB string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.layout
	if l.PreviewWidth <= 0 || l.PreviewHeight <= 0 {
		return nil, fmt.Errorf("%w: invalid preview size %dx%d", ErrRenderFailure, l.PreviewWidth, l.PreviewHeight)
	}

	a, b := r.previewSections(latestA, latestB)
	canvas := NewCanvas(l.PreviewWidth, max(l.PreviewHeight, b.bottom()+l.Padding), White, r.face)
	a.draw(canvas)
	b.draw(canvas)
	return canvas.EncodePNG()
}

// section is a label plus its wrapped text, positioned but not yet drawn.
type section struct {
	label  string
	x      int
	labelY int
	lines  []Line
}

// bottom is the baseline of the last thing drawn in the section.
func (s section) bottom() int {
	if len(s.lines) == 0 {
		return s.labelY
	}
	return s.lines[len(s.lines)-1].Y
}

func (s section) draw(canvas *Canvas) {
	canvas.DrawText(s.label, s.x, s.labelY)
	canvas.DrawLines(s.lines)
}

func (r *Renderer) previewSections(latestA, latestB string) (section, section) {
	l := r.layout
	a := r.layoutSection(bot.A, latestA, l.Padding, l.PreviewWidth)
	// Keep one empty line between A's last line and B's label.
	top := max(l.PreviewHeight/2, a.bottom()+2*l.LineHeight)
	return a, r.layoutSection(bot.B, latestB, top, l.PreviewWidth)
}

func (r *Renderer) layoutSection(id bot.ID, text string, top, width int) section {
	l := r.layout
	if text == "" {
		text = Placeholder
	}

	origin := image.Pt(l.Padding, top+l.LineHeight)
	return section{
		label:  id.Label() + ":",
		x:      l.Padding,
		labelY: top,
		lines:  Wrap(r.face, text, origin, width-l.Padding*2, l.LineHeight),
	}
}
