// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "qf_csrf"

	// CSRFHeaderName is the header HTMX sends the CSRF token in.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the hidden form field name for plain form posts.
	CSRFFormField = "csrf_token"

	// csrfPeekLimit bounds how much of a multipart body is read while
	// looking for the token in its first part.
	csrfPeekLimit = 8 << 10
)

// csrfKey holds the request's token so a page rendered on the very first
// visit can embed the token that was just issued in the cookie.
const csrfKey contextKey = "csrf"

// NewCSRF returns double-submit cookie CSRF protection. A token is kept in
// a cookie and every POST, PUT, PATCH or DELETE must echo it back in the
// X-CSRF-Token header or the csrf_token form field.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(CSRFCookieName); err == nil && validToken(cookie.Value) {
				token = cookie.Value
			} else {
				var err error
				token, err = generateCSRFToken()
				if err != nil {
					slog.Error("csrf token generation failed", "error", err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false, // read by the page for hx-headers
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfKey, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			submitted := r.Header.Get(CSRFHeaderName)
			if submitted == "" {
				submitted = multipartToken(r)
			}
			if submitted == "" {
				submitted = r.FormValue(CSRFFormField)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				slog.Warn("csrf token mismatch", "path", r.URL.Path, "remote", clientIP(r))
				http.Error(w, "CSRF token mismatch", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// multipartToken returns the token when it is the first part of a
// multipart body. The bytes it reads are put back in front of the body, so
// the handler still parses the whole form and sees any body limit error
// itself.
func multipartToken(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return ""
	}

	body := r.Body
	var peeked bytes.Buffer
	defer func() {
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(&peeked, body), body}
	}()

	mr := multipart.NewReader(io.TeeReader(io.LimitReader(body, csrfPeekLimit), &peeked), params["boundary"])
	part, err := mr.NextPart()
	if err != nil || part.FormName() != CSRFFormField {
		return ""
	}
	value, err := io.ReadAll(io.LimitReader(part, csrfTokenLength*2+1))
	if err != nil {
		return ""
	}
	return string(value)
}

// CSRFTokenFromCtx returns the token for the current request, or "" when
// the CSRF middleware did not run.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

func validToken(s string) bool {
	if len(s) != csrfTokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
