// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"qrforge/internal/session"
)

const sessionKey contextKey = "session"

// LoadSession makes sure every visitor has a session cookie and stores the
// session ID in the request context. Handlers read it with SessionIDFromCtx.
func LoadSession(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := m.Ensure(w, r)
			if err != nil {
				slog.Error("session create failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromCtx returns the session ID set by LoadSession, or "".
func SessionIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
