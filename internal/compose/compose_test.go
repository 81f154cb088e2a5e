// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestOffset(t *testing.T) {
	if got := Offset(); got != image.Pt(75, 140) {
		t.Errorf("Offset: got %v, want (75,140)", got)
	}
}

func TestComposeWithoutBackground(t *testing.T) {
	out, err := Compose(solid(290, 290, red), nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	img := decodePNG(t, out)
	if b := img.Bounds(); b.Dx() != 150 || b.Dy() != 150 {
		t.Errorf("size: got %dx%d, want 150x150", b.Dx(), b.Dy())
	}
	if got := nrgbaAt(img, 0, 0); got != red {
		t.Errorf("pixel: got %v, want %v", got, red)
	}
}

func TestComposeWithBackground(t *testing.T) {
	bg := encodePNG(t, solid(640, 480, blue))

	out, err := Compose(solid(290, 290, red), bg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	img := decodePNG(t, out)
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 300 {
		t.Fatalf("size: got %dx%d, want 300x300", b.Dx(), b.Dy())
	}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"qr top-left", 75, 140, red},
		{"qr bottom-right", 224, 289, red},
		{"left of qr", 74, 140, blue},
		{"above qr", 75, 139, blue},
		{"right of qr", 225, 200, blue},
		{"bottom margin", 150, 290, blue},
		{"top-left corner", 0, 0, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nrgbaAt(img, tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestComposeJPEGBackground(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(100, 100, blue), nil); err != nil {
		t.Fatal(err)
	}
	out, err := Compose(solid(50, 50, red), buf.Bytes())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if b := decodePNG(t, out).Bounds(); b.Dx() != 300 || b.Dy() != 300 {
		t.Errorf("size: got %dx%d, want 300x300", b.Dx(), b.Dy())
	}
}

func TestComposeFlattensTransparentBackground(t *testing.T) {
	bg := encodePNG(t, solid(300, 300, color.NRGBA{G: 200, A: 0}))

	out, err := Compose(solid(150, 150, red), bg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	got := nrgbaAt(decodePNG(t, out), 10, 10)
	if got.A != 255 {
		t.Errorf("alpha: got %d, want 255", got.A)
	}
}

func TestComposeDeterministic(t *testing.T) {
	bg := encodePNG(t, solid(320, 240, blue))
	qr := solid(290, 290, red)

	a, err := Compose(qr, bg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compose(qr, bg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical inputs produced different output bytes")
	}
}

func TestComposeDecodeError(t *testing.T) {
	_, err := Compose(solid(10, 10, red), []byte("definitely not an image"))
	if err == nil {
		t.Fatal("expected error for undecodable background")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Errorf("expected *DecodeError, got %T: %v", err, err)
	}
}

func TestComposeImageNilBackground(t *testing.T) {
	img := ComposeImage(solid(40, 40, red), nil)
	if b := img.Bounds(); b.Dx() != QRSize || b.Dy() != QRSize {
		t.Errorf("size: got %dx%d", b.Dx(), b.Dy())
	}
}
