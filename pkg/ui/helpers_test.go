package ui

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncateRunesHelper(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		suffix   string
		want     string
	}{
		{name: "zero max", input: "hello", maxWidth: 0, suffix: "…", want: ""},
		{name: "fits", input: "hello", maxWidth: 10, suffix: "…", want: "hello"},
		{name: "ellipsis", input: "Amplifier 20-500MHz", maxWidth: 10, suffix: "…", want: "Amplifier…"},
		{name: "wide runes", input: "日本語テキスト", maxWidth: 7, suffix: "…", want: "日本語…"},
		{name: "suffix too wide", input: "hello", maxWidth: 2, suffix: "...", want: ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunesHelper(tt.input, tt.maxWidth, tt.suffix)
			if got != tt.want {
				t.Fatalf("truncateRunesHelper(%q, %d) = %q; want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("output is not valid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > tt.maxWidth {
				t.Fatalf("output width %d exceeds %d", w, tt.maxWidth)
			}
		})
	}
}

func TestPadding(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padLeft("ab", 4); got != "  ab" {
		t.Errorf("padLeft = %q", got)
	}
	if got := padRight("日本", 4); got != "日本" {
		t.Errorf("padRight wide = %q", got)
	}
	if got := padLeft("toolong", 3); got != "toolong" {
		t.Errorf("padLeft overflow = %q", got)
	}
}

func TestFitLines(t *testing.T) {
	lines := fitLines("Amplifier: A20_500\nΔf: 480MHz", 8)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w != 8 {
			t.Errorf("line %q has width %d", l, w)
		}
	}
}

func TestFormatMs(t *testing.T) {
	if got := formatMs(1500 * time.Microsecond); got != "1.50ms" {
		t.Errorf("formatMs = %q", got)
	}
}
