// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package compose produces the final downloadable image: the QR code scaled
// to a fixed square, optionally pasted at the bottom centre of a user
// supplied background photo so faces near the top stay clear.
package compose

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// QRSize is the edge length the QR code is scaled to.
	QRSize = 150

	// BackgroundSize is the edge length the background is scaled to.
	BackgroundSize = 300

	// BottomMargin is the gap between the QR code and the bottom edge.
	BottomMargin = 10

	// MaxPixels caps decoded background dimensions (10000x10000).
	MaxPixels = 100_000_000
)

// DecodeError reports a background upload that could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode background image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Offset returns where the QR code's top-left corner lands on the background.
func Offset() image.Point {
	return image.Pt((BackgroundSize-QRSize)/2, BackgroundSize-QRSize-BottomMargin)
}

// DecodeBackground decodes an uploaded PNG, JPEG, GIF or WebP image. The
// header is checked first so oversized images are refused before decoding.
func DecodeBackground(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, MaxPixels)}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// ComposeImage scales qr to QRSize. With a nil background the scaled code is
// the result. Otherwise the background is flattened to opaque RGB, scaled to
// BackgroundSize and the code is pasted at Offset.
func ComposeImage(qr image.Image, background image.Image) *image.NRGBA {
	code := imaging.Resize(qr, QRSize, QRSize, imaging.CatmullRom)
	if background == nil {
		return code
	}

	bg := imaging.Resize(opaque(background), BackgroundSize, BackgroundSize, imaging.CatmullRom)
	return imaging.Paste(bg, code, Offset())
}

// Compose decodes the optional background, composes it with qr and returns
// PNG bytes. An empty background means no background. Decode failures are
// returned as *DecodeError.
func Compose(qr image.Image, background []byte) ([]byte, error) {
	var bg image.Image
	if len(background) > 0 {
		var err error
		bg, err = DecodeBackground(background)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, ComposeImage(qr, bg), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// opaque drops the alpha channel, keeping each pixel's colour values.
func opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
