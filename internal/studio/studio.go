// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package studio implements the render action: it resolves a content
// request to its payload, refuses empty payloads, encodes the QR code and
// composes the final PNG. It holds no per-user state; callers store the
// returned artifact in the session's history.
package studio

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"qrforge/internal/compose"
	"qrforge/internal/models"
	"qrforge/internal/payload"
	"qrforge/internal/qr"
)

// ErrEmptyPayload is returned when the resolved payload is empty. It is a
// user-facing warning, not a failure: nothing is rendered.
var ErrEmptyPayload = errors.New("please enter valid data")

// Encoder turns a payload into a styled QR bitmap.
type Encoder interface {
	Encode(payload string, style qr.Style) (image.Image, error)
}

// Cache stores encoded QR bitmaps as PNG bytes.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, png []byte)
}

// Request is a resolved render request.
type Request struct {
	Kind       payload.Kind
	Payload    string
	Style      qr.Style
	Background []byte // optional uploaded image; nil or empty means none
}

// Service renders QR artifacts.
type Service struct {
	encoder   Encoder
	formatter payload.Formatter
	cache     Cache
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the encoded bitmap cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithFormatter replaces the literal payload formatter.
func WithFormatter(f payload.Formatter) Option {
	return func(s *Service) { s.formatter = f }
}

// WithClock overrides the time source used for artifact timestamps and
// event defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service using encoder.
func New(encoder Encoder, opts ...Option) *Service {
	s := &Service{encoder: encoder, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Payload formats content with the configured formatter.
func (s *Service) Payload(c payload.Content) string {
	return s.formatter.Format(c)
}

// RenderContent formats c and renders it.
func (s *Service) RenderContent(ctx context.Context, c payload.Content, style qr.Style, background []byte) (*models.Artifact, error) {
	var kind payload.Kind
	if c != nil {
		kind = c.Kind()
	}
	return s.Render(ctx, Request{
		Kind:       kind,
		Payload:    s.Payload(c),
		Style:      style,
		Background: background,
	})
}

// Render encodes and composes req. It returns ErrEmptyPayload for an empty
// payload and *compose.DecodeError for an undecodable background; in both
// cases nothing is rendered.
func (s *Service) Render(ctx context.Context, req Request) (*models.Artifact, error) {
	if req.Payload == "" {
		return nil, ErrEmptyPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	code, err := s.encode(ctx, req.Payload, req.Style)
	if err != nil {
		return nil, err
	}

	png, err := compose.Compose(code, req.Background)
	if err != nil {
		return nil, err
	}

	withBackground := len(req.Background) > 0
	size := compose.QRSize
	if withBackground {
		size = compose.BackgroundSize
	}

	a := &models.Artifact{
		ID:             uuid.New(),
		Kind:           string(req.Kind),
		Payload:        req.Payload,
		PNG:            png,
		Width:          size,
		Height:         size,
		WithBackground: withBackground,
		CreatedAt:      s.now(),
	}

	slog.Debug("qr rendered",
		"id", a.ID,
		"kind", a.Kind,
		"payload_len", len(a.Payload),
		"background", withBackground,
		"bytes", len(png),
	)
	return a, nil
}

// encode returns the styled bitmap, consulting the cache when configured.
func (s *Service) encode(ctx context.Context, data string, style qr.Style) (image.Image, error) {
	if s.cache == nil {
		return s.encoder.Encode(data, style)
	}

	key := cacheKey(data, style)
	if cached, ok := s.cache.Get(ctx, key); ok {
		img, err := imaging.Decode(bytes.NewReader(cached))
		if err == nil {
			return img, nil
		}
		slog.Warn("qr cache entry unreadable", "key", key, "error", err)
	}

	img, err := s.encoder.Encode(data, style)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode bitmap for cache: %w", err)
	}
	s.cache.Set(ctx, key, buf.Bytes())
	return img, nil
}

// cacheKey identifies an encoded bitmap by payload and colours.
func cacheKey(data string, style qr.Style) string {
	h := sha256.New()
	h.Write([]byte(qr.Hex(style.Fill)))
	h.Write([]byte(qr.Hex(style.Background)))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
