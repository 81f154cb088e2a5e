// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DownloadFilename is the fixed name offered for every downloaded code.
const DownloadFilename = "qr_code.png"

// Artifact is one rendered QR image together with the payload that produced
// it. Artifacts live only in a session's history.
type Artifact struct {
	ID             uuid.UUID `json:"id"`
	Kind           string    `json:"kind"`
	Payload        string    `json:"payload"`
	PNG            []byte    `json:"png"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	WithBackground bool      `json:"with_background"`
	CreatedAt      time.Time `json:"created_at"`
}

// SizeBytes returns the length of the encoded PNG.
func (a *Artifact) SizeBytes() int64 {
	return int64(len(a.PNG))
}

// HumanSize returns a human-readable file size string.
func (a *Artifact) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	size := a.SizeBytes()
	switch {
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.0f KB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// HasBackground reports whether the artifact was composed onto a background.
func (a *Artifact) HasBackground() bool {
	return a.WithBackground
}
