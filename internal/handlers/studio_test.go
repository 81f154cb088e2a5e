// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qrforge/internal/middleware"
	"qrforge/internal/models"
	"qrforge/internal/qr"
	"qrforge/internal/render"
	"qrforge/internal/session"
	"qrforge/internal/studio"
)

// testEnv is a studio mounted on a chi router with session loading. CSRF
// and rate limiting are covered by the router tests.
type testEnv struct {
	handler http.Handler
	store   *session.MemoryStore
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()

	rn, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	store := session.NewMemoryStore(0, time.Hour)
	t.Cleanup(store.Stop)

	s := NewStudio(rn, studio.New(qr.NewEncoder()), store, maxUpload)
	manager := session.NewManager(time.Hour, false)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(manager))
	r.Get("/", s.Index)
	r.Post("/generate", s.Generate)
	r.Get("/history/{id}.png", s.HistoryImage)
	r.Get("/download/{id}", s.Download)
	r.Post("/history/clear", s.ClearHistory)

	env := &testEnv{handler: r, store: store}

	// Open a session.
	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName {
			env.cookie = c
		}
	}
	if env.cookie == nil {
		t.Fatal("no session cookie issued")
	}
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) history(t *testing.T) []*models.Artifact {
	t.Helper()
	list, err := e.store.List(context.Background(), e.cookie.Value)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

// generateRequest builds a multipart POST /generate like the studio form.
func generateRequest(t *testing.T, values url.Values, background []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, vs := range values {
		for _, v := range vs {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if background != nil {
		fw, err := mw.CreateFormFile("background", "bg.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(background)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t, 10<<20)

	tests := []struct {
		name     string
		target   string
		contains []string
	}{
		{"default kind", "/", []string{`name="text"`, `value="plain_text" selected`, "No codes generated yet."}},
		{"wifi", "/?kind=wifi", []string{`name="ssid"`, `name="security"`, `name="hidden"`}},
		{"dashed alias", "/?kind=plain-text", []string{`name="text"`}},
		{"unknown kind", "/?kind=fax", []string{"flash-warning", "Unknown QR code type"}},
		{"after clearing", "/?cleared=1", []string{"flash-info", "History cleared."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d", rr.Code)
			}
			for _, want := range tt.contains {
				if !strings.Contains(rr.Body.String(), want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestGenerateURL(t *testing.T) {
	env := newTestEnv(t, 10<<20)

	rr := env.do(generateRequest(t, url.Values{
		"kind": {"url"},
		"url":  {"https://example.com"},
		"fill": {"#112233"},
		"bg":   {"#ffffff"},
	}, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	list := env.history(t)
	if len(list) != 1 {
		t.Fatalf("history length: got %d, want 1", len(list))
	}
	a := list[0]
	if a.Payload != "https://example.com" || a.Kind != "url" {
		t.Errorf("artifact: kind %q payload %q", a.Kind, a.Payload)
	}
	if a.Width != 150 || a.Height != 150 {
		t.Errorf("size: got %dx%d, want 150x150", a.Width, a.Height)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "/download/"+a.ID.String()) {
		t.Error("result download link missing")
	}
	if !strings.Contains(body, `value="#112233"`) {
		t.Error("chosen fill colour not echoed back")
	}
	if !strings.Contains(body, "flash-success") || !strings.Contains(body, "QR code generated.") {
		t.Error("success flash missing")
	}
}

func TestGenerateHistoryOrder(t *testing.T) {
	env := newTestEnv(t, 10<<20)

	for _, text := range []string{"first", "second", "third"} {
		rr := env.do(generateRequest(t, url.Values{"kind": {"plain_text"}, "text": {text}}, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", text, rr.Code)
		}
	}

	list := env.history(t)
	if len(list) != 3 {
		t.Fatalf("history length: got %d, want 3", len(list))
	}
	for i, want := range []string{"first", "second", "third"} {
		if list[i].Payload != want {
			t.Errorf("history[%d]: got %q, want %q", i, list[i].Payload, want)
		}
	}
}

func TestGenerateEmptyPayload(t *testing.T) {
	env := newTestEnv(t, 10<<20)

	for _, kind := range []string{"plain_text", "url", "linkedin"} {
		t.Run(kind, func(t *testing.T) {
			rr := env.do(generateRequest(t, url.Values{"kind": {kind}}, nil))
			if rr.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, "flash-warning") || !strings.Contains(body, "Please enter valid data.") {
				t.Error("empty payload warning missing")
			}
		})
	}

	if n := len(env.history(t)); n != 0 {
		t.Errorf("history length: got %d, want 0", n)
	}
}

func TestGenerateEmptyPayloadWithUnusableUpload(t *testing.T) {
	env := newTestEnv(t, 1024)

	tests := []struct {
		name       string
		background []byte
	}{
		{"not an image", []byte("just some text, not pixels")},
		{"over the file limit", bytes.Repeat([]byte{0x89}, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(generateRequest(t, url.Values{"kind": {"plain_text"}}, tt.background))
			if rr.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rr.Code)
			}
			body := rr.Body.String()
			if !strings.Contains(body, "flash-warning") || !strings.Contains(body, "Please enter valid data.") {
				t.Error("empty payload warning should win over the upload error")
			}
			if strings.Contains(body, "flash-error") {
				t.Error("no error flash expected for an empty payload")
			}
		})
	}
}

// failingStore is a history store whose backend is down.
type failingStore struct{}

func (failingStore) Append(context.Context, string, *models.Artifact) error {
	return errors.New("connection refused")
}

func (failingStore) List(context.Context, string) ([]*models.Artifact, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Get(context.Context, string, uuid.UUID) (*models.Artifact, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Clear(context.Context, string) error {
	return errors.New("connection refused")
}

func TestIndexHistoryUnavailable(t *testing.T) {
	rn, err := render.New(false)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStudio(rn, studio.New(qr.NewEncoder()), failingStore{}, 10<<20)

	rr := httptest.NewRecorder()
	s.Index(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "flash-error") || !strings.Contains(body, "History is unavailable right now.") {
		t.Error("history outage should be reported on the page")
	}
	if !strings.Contains(body, `action="/generate"`) {
		t.Error("the form should still render")
	}
}

func TestGenerateBlankTemplateStillRenders(t *testing.T) {
	env := newTestEnv(t, 10<<20)

	rr := env.do(generateRequest(t, url.Values{"kind": {"wifi"}}, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	list := env.history(t)
	if len(list) != 1 || list[0].Payload != "WIFI:T:WPA;S:;P:;H:false;;" {
		t.Errorf("history: %+v", list)
	}
}

func TestGenerateWithBackground(t *testing.T) {
	env := newTestEnv(t, 10<<20)

	rr := env.do(generateRequest(t, url.Values{"kind": {"sms"}, "phone": {"555"}, "message": {"hi"}}, solidPNG(t, 640, 480)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	list := env.history(t)
	if len(list) != 1 {
		t.Fatalf("history length: got %d", len(list))
	}
	if list[0].Width != 300 || list[0].Height != 300 || !list[0].HasBackground() {
		t.Errorf("size: got %dx%d, want 300x300", list[0].Width, list[0].Height)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		background []byte
		maxUpload  int64
		wantCode   int
		wantMsg    string
	}{
		{
			name:     "unknown kind",
			values:   url.Values{"kind": {"fax"}},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Unknown QR code type.",
		},
		{
			name:     "bad colour",
			values:   url.Values{"kind": {"plain_text"}, "text": {"x"}, "fill": {"black"}},
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "Colors must be hex values",
		},
		{
			name:     "bad event date",
			values:   url.Values{"kind": {"event"}, "name": {"Launch"}, "date": {"31/12/2026"}},
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "Dates must look like",
		},
		{
			name:     "field too long",
			values:   url.Values{"kind": {"url"}, "url": {strings.Repeat("a", maxFieldLen+1)}},
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "too long",
		},
		{
			name:       "not an image",
			values:     url.Values{"kind": {"plain_text"}, "text": {"x"}},
			background: []byte("just some text, not pixels"),
			wantCode:   http.StatusUnprocessableEntity,
			wantMsg:    "is not allowed. Upload a PNG, JPEG, GIF or WebP image.",
		},
		{
			name:       "undecodable image",
			values:     url.Values{"kind": {"plain_text"}, "text": {"x"}},
			background: []byte("GIF89a but the rest is garbage"),
			wantCode:   http.StatusUnprocessableEntity,
			wantMsg:    "could not be read. Upload a PNG, JPEG, GIF or WebP image.",
		},
		{
			name:       "upload over limit",
			values:     url.Values{"kind": {"plain_text"}, "text": {"x"}},
			background: bytes.Repeat([]byte{0x89}, 4096),
			maxUpload:  1024,
			wantCode:   http.StatusUnprocessableEntity,
			wantMsg:    "Upload too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			max := tt.maxUpload
			if max == 0 {
				max = 10 << 20
			}
			env := newTestEnv(t, max)

			rr := env.do(generateRequest(t, tt.values, tt.background))
			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			body := rr.Body.String()
			if !strings.Contains(body, "flash-error") || !strings.Contains(body, tt.wantMsg) {
				t.Errorf("expected error flash containing %q", tt.wantMsg)
			}
			if n := len(env.history(t)); n != 0 {
				t.Errorf("history length: got %d, want 0", n)
			}
		})
	}
}

func TestHistoryImageAndDownload(t *testing.T) {
	env := newTestEnv(t, 10<<20)
	env.do(generateRequest(t, url.Values{"kind": {"instagram"}, "username": {"gopher"}}, nil))

	list := env.history(t)
	if len(list) != 1 {
		t.Fatalf("history length: got %d", len(list))
	}
	a := list[0]

	rr := env.do(httptest.NewRequest(http.MethodGet, "/history/"+a.ID.String()+".png", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("image status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !bytes.Equal(rr.Body.Bytes(), a.PNG) {
		t.Error("inline image bytes differ from the artifact")
	}

	rr = env.do(httptest.NewRequest(http.MethodGet, "/download/"+a.ID.String(), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("download status: got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="qr_code.png"` {
		t.Errorf("Content-Disposition: got %q", cd)
	}
	if !bytes.Equal(rr.Body.Bytes(), a.PNG) {
		t.Error("download bytes differ from the artifact")
	}
}

func TestHistoryLookupErrors(t *testing.T) {
	env := newTestEnv(t, 10<<20)
	env.do(generateRequest(t, url.Values{"kind": {"plain_text"}, "text": {"mine"}}, nil))
	id := env.history(t)[0].ID.String()

	t.Run("invalid id", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/download/not-a-uuid", nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status: got %d, want 400", rr.Code)
		}
	})

	t.Run("other session", func(t *testing.T) {
		stranger := &testEnv{handler: env.handler, store: env.store}
		rr := stranger.do(httptest.NewRequest(http.MethodGet, "/download/"+id, nil))
		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
	})
}

func TestClearHistory(t *testing.T) {
	env := newTestEnv(t, 10<<20)
	env.do(generateRequest(t, url.Values{"kind": {"plain_text"}, "text": {"a"}}, nil))
	env.do(generateRequest(t, url.Values{"kind": {"plain_text"}, "text": {"b"}}, nil))

	rr := env.do(httptest.NewRequest(http.MethodPost, "/history/clear", nil))
	if rr.Code != http.StatusSeeOther {
		t.Errorf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/?cleared=1" {
		t.Errorf("Location: got %q", loc)
	}
	if n := len(env.history(t)); n != 0 {
		t.Errorf("history length after clear: got %d", n)
	}
}
