// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

// TestArtifactHumanSize verifies the human-readable file size formatting
// across byte, kilobyte, and megabyte ranges.
func TestArtifactHumanSize(t *testing.T) {
	tests := []struct {
		name string
		size int
		want string
	}{
		{name: "zero bytes", size: 0, want: "0 B"},
		{name: "small", size: 512, want: "512 B"},
		{name: "one below KB", size: 1023, want: "1023 B"},
		{name: "exactly 1 KB", size: 1024, want: "1 KB"},
		{name: "kilobytes", size: 10 * 1024, want: "10 KB"},
		{name: "exactly 1 MB", size: 1024 * 1024, want: "1.0 MB"},
		{name: "fractional MB", size: 1536 * 1024, want: "1.5 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Artifact{PNG: make([]byte, tt.size)}
			if got := a.HumanSize(); got != tt.want {
				t.Errorf("HumanSize() with %d bytes = %q, want %q", tt.size, got, tt.want)
			}
		})
	}
}

func TestArtifactHasBackground(t *testing.T) {
	if (&Artifact{Width: 300, Height: 300}).HasBackground() {
		t.Error("size alone must not imply a background")
	}
	if !(&Artifact{Width: 300, Height: 300, WithBackground: true}).HasBackground() {
		t.Error("composed artifact should report a background")
	}
}
