// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package qr renders payload strings into styled QR code bitmaps. Encoding
// always uses the highest error-correction level; modules are drawn as
// rounded squares whose outer corners are rounded only where no
// neighbouring module continues the shape.
package qr

import (
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultBoxSize is the edge length of one module in pixels.
	DefaultBoxSize = 10

	// DefaultBorder is the quiet zone width in modules.
	DefaultBorder = 4
)

// ErrTooLong is returned when a payload exceeds the capacity of the largest
// QR version at level H.
var ErrTooLong = errors.New("payload too long for a QR code")

// Encoder draws QR codes. The zero value is not usable; call NewEncoder.
type Encoder struct {
	boxSize int
	border  int
}

// NewEncoder returns an encoder with 10px modules and a 4-module quiet zone.
func NewEncoder() *Encoder {
	return &Encoder{boxSize: DefaultBoxSize, border: DefaultBorder}
}

// Encode renders payload with the given style. The output is square with
// edge (modules + 2*border) * boxSize. Encoding fails when the payload does
// not fit in the largest QR version at level H.
func (e *Encoder) Encode(payload string, style Style) (image.Image, error) {
	code, err := qrcode.New(payload, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTooLong, err)
	}
	code.DisableBorder = true

	return e.draw(code.Bitmap(), style), nil
}

// draw paints the module matrix onto a new canvas.
func (e *Encoder) draw(modules [][]bool, style Style) image.Image {
	n := len(modules)
	box := float64(e.boxSize)
	size := (n + 2*e.border) * e.boxSize

	dc := gg.NewContext(size, size)
	dc.SetColor(style.Background)
	dc.Clear()
	dc.SetColor(style.Fill)

	dark := func(x, y int) bool {
		return y >= 0 && y < n && x >= 0 && x < n && modules[y][x]
	}

	radius := box / 2
	half := box / 2
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !modules[y][x] {
				continue
			}
			px := float64((x + e.border) * e.boxSize)
			py := float64((y + e.border) * e.boxSize)

			dc.DrawRoundedRectangle(px, py, box, box, radius)
			dc.Fill()

			north, south := dark(x, y-1), dark(x, y+1)
			west, east := dark(x-1, y), dark(x+1, y)

			// A corner stays square when either adjoining side touches
			// another dark module.
			if north || west {
				dc.DrawRectangle(px, py, half, half)
			}
			if north || east {
				dc.DrawRectangle(px+half, py, half, half)
			}
			if south || west {
				dc.DrawRectangle(px, py+half, half, half)
			}
			if south || east {
				dc.DrawRectangle(px+half, py+half, half, half)
			}
			dc.Fill()
		}
	}

	return dc.Image()
}
