// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestStaticFSContents(t *testing.T) {
	for _, name := range []string{"static/studio.css", "static/studio.js"} {
		if _, err := fs.Stat(StaticFS, name); err != nil {
			t.Errorf("%s not embedded: %v", name, err)
		}
	}
}

func TestHistoryGridHasFourColumns(t *testing.T) {
	css, err := fs.ReadFile(StaticFS, "static/studio.css")
	if err != nil {
		t.Fatal(err)
	}
	rule := ".history-grid { display: grid; grid-template-columns: repeat(4, 1fr);"
	if !strings.Contains(string(css), rule) {
		t.Errorf("stylesheet does not lay the history out in 4 columns")
	}
}
