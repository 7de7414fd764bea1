package render

import (
	"image"
	"strings"

	"golang.org/x/image/font"

	"github.com/zhouzirui/bot-duet/internal/analysis/script"
)

// Line is one wrapped line and the baseline position it is drawn at.
type Line struct {
	Text string
	X    int
	Y    int
}

// Wrap lays text out greedily: units from script.SegmentForWrap are appended
// to the current line until the measured width would exceed maxWidth, at
// which point the line is flushed and the unit starts the next one. A unit
// wider than maxWidth on its own still occupies a line. Spaces never count
// toward a line's width at its end and are dropped at its start.
func Wrap(face font.Face, text string, origin image.Point, maxWidth, lineHeight int) []Line {
	var (
		lines   []Line
		current string
		y       = origin.Y
	)

	flush := func() {
		if trimmed := strings.TrimRight(current, " "); trimmed != "" {
			lines = append(lines, Line{Text: trimmed, X: origin.X, Y: y})
		}
	}

	for _, unit := range script.SegmentForWrap(text) {
		if current == "" {
			unit = strings.TrimLeft(unit, " ")
			if unit == "" {
				continue
			}
		}

		candidate := current + unit
		width := font.MeasureString(face, strings.TrimRight(candidate, " ")).Ceil()
		if width > maxWidth && current != "" {
			flush()
			current = strings.TrimLeft(unit, " ")
			y += lineHeight
			continue
		}
		current = candidate
	}
	flush()

	return lines
}
