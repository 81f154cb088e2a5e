// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package qr

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Default colours used when the form leaves the pickers untouched.
const (
	DefaultFillHex       = "#000000"
	DefaultBackgroundHex = "#ffffff"
)

// Style is the two-colour fill applied to the code: Fill for dark modules,
// Background for light modules and the quiet zone. Both are opaque.
type Style struct {
	Fill       color.RGBA
	Background color.RGBA
}

// DefaultStyle returns black modules on white.
func DefaultStyle() Style {
	return Style{
		Fill:       color.RGBA{A: 0xff},
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// ParseStyle builds a Style from two hex strings. Blank values fall back to
// the defaults.
func ParseStyle(fillHex, backgroundHex string) (Style, error) {
	if strings.TrimSpace(fillHex) == "" {
		fillHex = DefaultFillHex
	}
	if strings.TrimSpace(backgroundHex) == "" {
		backgroundHex = DefaultBackgroundHex
	}
	fill, err := ParseHexColor(fillHex)
	if err != nil {
		return Style{}, fmt.Errorf("fill colour: %w", err)
	}
	bg, err := ParseHexColor(backgroundHex)
	if err != nil {
		return Style{}, fmt.Errorf("background colour: %w", err)
	}
	return Style{Fill: fill, Background: bg}, nil
}

// ParseHexColor parses "#rrggbb" or "#rgb" (the leading '#' is optional)
// into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Hex formats an opaque colour as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
