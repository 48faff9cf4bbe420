// Package colorutil provides shared color utilities for the overlay HUD.
// Legacy payloads declare colors as "#rrggbb", "#rrggbbaa", bare hex, or one
// of the SVG 1.1 color names the old protocol accepted ("red", "yellow", ...).
package colorutil

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	Blue    = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	Yellow  = color.NRGBA{R: 255, G: 255, B: 0, A: 255}
	Cyan    = color.NRGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
)

// basePalette pins the eight legacy base names to the full-intensity
// primaries above. The SVG name table disagrees on "green" (0,128,0); the
// legacy protocol always meant #00ff00.
var basePalette = map[string]color.NRGBA{
	"black":   Black,
	"white":   White,
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
}

// Parse resolves a legacy color string to an NRGBA color. It accepts
// "#rrggbb", "#rrggbbaa", the same without the leading "#", and named
// colors (case-insensitive). Malformed input returns an error; callers
// decide whether that means "drop the payload" or "draw without a border".
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 || len(hex) == 8 {
		if c, ok := parseHex(hex); ok {
			return c, nil
		}
		// Hex-shaped strings that fail digit parsing can still be a color
		// name ("salmon" is six characters), so fall through.
	}

	name := strings.ToLower(s)
	if c, ok := basePalette[name]; ok {
		return c, nil
	}
	if named, ok := colornames.Map[name]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}

	return color.NRGBA{}, fmt.Errorf("unparsable color %q", s)
}

func parseHex(hex string) (color.NRGBA, bool) {
	var digits [8]uint8
	if len(hex) > len(digits) {
		return color.NRGBA{}, false
	}
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return color.NRGBA{}, false
		}
		digits[i] = d
	}

	c := color.NRGBA{
		R: digits[0]<<4 | digits[1],
		G: digits[2]<<4 | digits[3],
		B: digits[4]<<4 | digits[5],
		A: 255,
	}
	if len(hex) == 8 {
		c.A = digits[6]<<4 | digits[7]
	}
	return c, true
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
