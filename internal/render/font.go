package render

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize matches the 20px text used by the preview image.
const DefaultFontSize = 20.0

// LoadFace returns a face for the font at path, or Go Regular when path is
// empty. CJK text needs a font file that carries those glyphs.
func LoadFace(path string, size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultFontSize
	}

	if strings.TrimSpace(path) == "" {
		return parseFace(goregular.TTF, size)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".ttc") {
		collection, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse font collection %s: %w", path, err)
		}
		f, err := collection.Font(0)
		if err != nil {
			return nil, fmt.Errorf("load first font of %s: %w", path, err)
		}
		return newFace(f, size)
	}

	face, err := parseFace(data, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return face, nil
}

// FallbackFace is the fixed 7x13 bitmap face; it never fails to load.
func FallbackFace() font.Face {
	return basicfont.Face7x13
}

func parseFace(data []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return newFace(f, size)
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}
