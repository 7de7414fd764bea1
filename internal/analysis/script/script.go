package script

import (
	"strings"
	"unicode"
)

// Kind 表示文本的书写系统类别，决定换行的最小单位。
type Kind int

const (
	// Spaced scripts separate words with whitespace and wrap per word.
	Spaced Kind = iota
	// Dense scripts (Japanese, Chinese) have no word spaces and wrap per character.
	Dense
)

func (k Kind) String() string {
	if k == Dense {
		return "dense"
	}
	return "spaced"
}

var denseTables = []*unicode.RangeTable{
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Han,
}

// IsDenseRune reports whether r belongs to Hiragana, Katakana or the CJK
// ideograph blocks.
func IsDenseRune(r rune) bool {
	return unicode.In(r, denseTables...)
}

// Detect returns Dense as soon as one CJK rune is found.
func Detect(text string) Kind {
	for _, r := range text {
		if IsDenseRune(r) {
			return Dense
		}
	}
	return Spaced
}

// SegmentForWrap splits text into the atomic units a line wrapper may not
// break. Dense text yields one unit per rune; spaced text yields each
// whitespace-delimited word followed by a single space.
func SegmentForWrap(text string) []string {
	if Detect(text) == Dense {
		units := make([]string, 0, len(text))
		for _, r := range text {
			if r == '\n' || r == '\r' {
				continue
			}
			units = append(units, string(r))
		}
		return units
	}

	words := strings.Fields(text)
	units := make([]string, 0, len(words))
	for _, word := range words {
		units = append(units, word+" ")
	}
	return units
}
