package script

import (
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"hello world", Spaced},
		{"", Spaced},
		{"こんにちは", Dense},
		{"カタカナ", Dense},
		{"漢字", Dense},
		{"mixed 日本 text", Dense},
		{"émigré café naïve", Spaced},
	}
	for _, tc := range cases {
		if got := Detect(tc.text); got != tc.want {
			t.Fatalf("Detect(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestSegmentForWrapSpaced(t *testing.T) {
	got := SegmentForWrap("  hello   brave\tnew world ")
	want := []string{"hello ", "brave ", "new ", "world "}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected units: %q", got)
	}
}

func TestSegmentForWrapDense(t *testing.T) {
	got := SegmentForWrap("今日は\nAI")
	want := []string{"今", "日", "は", "A", "I"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected units: %q", got)
	}
}
