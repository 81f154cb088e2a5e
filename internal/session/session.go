// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session scopes render history to a browser session. A session is
// identified by a random cookie; its history is an explicit per-session
// object held by a Store (in memory or in Valkey). Nothing is shared between
// sessions and nothing survives the session TTL.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "qf_session"

	// DefaultTTL is how long an idle session and its history are kept.
	DefaultTTL = 24 * time.Hour

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Manager issues and reads session cookies.
type Manager struct {
	ttl    time.Duration
	secure bool
}

// NewManager creates a cookie manager. secure marks cookies HTTPS-only.
func NewManager(ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{ttl: ttl, secure: secure}
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// ID returns the session ID carried by the request, or "" if the request
// has no well-formed session cookie.
func (m *Manager) ID(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if !validID(cookie.Value) {
		return ""
	}
	return cookie.Value
}

// Ensure returns the request's session ID, issuing a new one (and setting the
// cookie) when none is present. The cookie expiry is refreshed either way.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	id := m.ID(r)
	if id == "" {
		var err error
		id, err = generateID()
		if err != nil {
			return "", fmt.Errorf("session create: %w", err)
		}
	}
	m.setCookie(w, id, int(m.ttl.Seconds()))
	return id, nil
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func validID(s string) bool {
	if len(s) != idLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
