// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"unicode/utf8"

	"qrforge/internal/payload"
)

// Validation limits for studio form fields. A level H code holds at most
// 1273 bytes, so longer fields can never render.
const (
	maxFieldLen    = 1_300
	maxTextAreaLen = 2_000
)

// allowedBackgroundTypes are the sniffed content types accepted as
// background images.
var allowedBackgroundTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// allowedBackgroundNames lists the accepted formats for user messages.
const allowedBackgroundNames = "PNG, JPEG, GIF or WebP"

// validateFields checks the kind's fields and returns the first error found.
func validateFields(kind payload.Kind, values url.Values) string {
	for _, f := range kind.Fields() {
		limit := maxFieldLen
		if f.Input == payload.InputTextArea {
			limit = maxTextAreaLen
		}
		if utf8.RuneCountInString(values.Get(f.Name)) > limit {
			return fmt.Sprintf("%s is too long (max %d characters).", f.Label, limit)
		}
	}
	return ""
}

// validateBackground checks that an upload looks like an image. Whether it
// actually decodes is left to the composer.
func validateBackground(data []byte) string {
	contentType := http.DetectContentType(data)
	if !allowedBackgroundTypes[contentType] {
		return fmt.Sprintf("File type %q is not allowed. Upload a %s image.", contentType, allowedBackgroundNames)
	}
	return ""
}
