// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"qrforge/internal/compose"
	"qrforge/internal/middleware"
	"qrforge/internal/models"
	"qrforge/internal/payload"
	"qrforge/internal/qr"
	"qrforge/internal/render"
	"qrforge/internal/session"
	"qrforge/internal/studio"
)

const emptyPayloadMessage = "Please enter valid data."

// Studio groups the handlers behind the single studio page: the form, the
// render action and the per-session history.
type Studio struct {
	renderer  *render.Renderer
	service   *studio.Service
	history   session.Store
	maxUpload int64
}

// NewStudio creates the studio handler group. maxUpload bounds the
// background image in bytes.
func NewStudio(renderer *render.Renderer, service *studio.Service, history session.Store, maxUpload int64) *Studio {
	return &Studio{
		renderer:  renderer,
		service:   service,
		history:   history,
		maxUpload: maxUpload,
	}
}

// form is the studio form state echoed back into the page.
type form struct {
	kind       payload.Kind
	values     url.Values
	fill       string
	background string
}

func defaultForm(kind payload.Kind) form {
	def := qr.DefaultStyle()
	return form{
		kind:       kind,
		values:     url.Values{},
		fill:       qr.Hex(def.Fill),
		background: qr.Hex(def.Background),
	}
}

// Index renders the studio page for the kind named in ?kind=, defaulting
// to plain text.
func (s *Studio) Index(w http.ResponseWriter, r *http.Request) {
	f := defaultForm(payload.KindPlainText)
	var flashes []render.Flash

	if r.URL.Query().Has("cleared") {
		flashes = append(flashes, render.Flash{Type: render.FlashInfo, Message: "History cleared."})
	}

	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind, err := payload.ParseKind(raw)
		if err != nil {
			flashes = append(flashes, render.Flash{Type: render.FlashWarning, Message: fmt.Sprintf("Unknown QR code type %q.", raw)})
		} else {
			f.kind = kind
		}
	}

	s.page(w, r, http.StatusOK, f, nil, flashes...)
}

// Generate handles the studio form: it builds the content for the chosen
// kind, renders it and appends the result to the session history. An empty
// payload and an unreadable background are reported on the page and leave
// the history untouched.
func (s *Studio) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, defaultForm(payload.KindPlainText),
				fmt.Sprintf("Upload too large. Maximum size is %d MB.", s.maxUpload>>20))
			return
		}
		s.fail(w, r, http.StatusBadRequest, defaultForm(payload.KindPlainText), "Could not read the form.")
		return
	}

	kind, err := payload.ParseKind(r.FormValue("kind"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, defaultForm(payload.KindPlainText), "Unknown QR code type.")
		return
	}

	f := form{
		kind:       kind,
		values:     r.PostForm,
		fill:       r.FormValue("fill"),
		background: r.FormValue("bg"),
	}
	if msg := validateFields(kind, r.PostForm); msg != "" {
		s.fail(w, r, http.StatusUnprocessableEntity, f, msg)
		return
	}

	style, err := qr.ParseStyle(f.fill, f.background)
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, f, "Colors must be hex values like #1a2b3c.")
		return
	}
	f.fill, f.background = qr.Hex(style.Fill), qr.Hex(style.Background)

	content, err := payload.FromForm(kind, r.PostForm, s.service.Now())
	if err != nil {
		s.fail(w, r, http.StatusUnprocessableEntity, f, "Dates must look like 2026-01-31 and times like 14:30.")
		return
	}

	if s.service.Payload(content) == "" {
		s.page(w, r, http.StatusOK, f, nil, render.Flash{Type: render.FlashWarning, Message: emptyPayloadMessage})
		return
	}

	bg, msg := s.readBackground(r)
	if msg != "" {
		s.fail(w, r, http.StatusUnprocessableEntity, f, msg)
		return
	}

	ctx := r.Context()
	artifact, err := s.service.RenderContent(ctx, content, style, bg)
	switch {
	case err == nil:
	case errors.Is(err, studio.ErrEmptyPayload):
		s.page(w, r, http.StatusOK, f, nil, render.Flash{Type: render.FlashWarning, Message: emptyPayloadMessage})
		return
	case errors.As(err, new(*compose.DecodeError)):
		slog.Info("background rejected", "error", err)
		s.fail(w, r, http.StatusUnprocessableEntity, f, "The background image could not be read. Upload a " + allowedBackgroundNames + " image.")
		return
	case errors.Is(err, qr.ErrTooLong):
		s.fail(w, r, http.StatusUnprocessableEntity, f, "The data is too long to fit in a QR code.")
		return
	default:
		slog.Error("qr render failed", "kind", kind, "error", err)
		s.fail(w, r, http.StatusInternalServerError, f, "Failed to generate the QR code.")
		return
	}

	if err := s.history.Append(ctx, middleware.SessionIDFromCtx(ctx), artifact); err != nil {
		slog.Error("history append failed", "error", err)
		s.fail(w, r, http.StatusInternalServerError, f, "Failed to save the QR code.")
		return
	}

	s.page(w, r, http.StatusOK, f, artifact, render.Flash{Type: render.FlashSuccess, Message: "QR code generated."})
}

// HistoryImage serves a history entry inline.
func (s *Studio) HistoryImage(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writePNG(w, a, "inline")
}

// Download serves a history entry as qr_code.png.
func (s *Studio) Download(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writePNG(w, a, fmt.Sprintf("attachment; filename=%q", models.DownloadFilename))
}

// ClearHistory empties the caller's history and returns to the studio,
// which confirms it with an info flash.
func (s *Studio) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.history.Clear(ctx, middleware.SessionIDFromCtx(ctx)); err != nil {
		slog.Error("history clear failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/?cleared=1", http.StatusSeeOther)
}

// lookup resolves the {id} URL parameter against the caller's history,
// writing the error response itself when it fails.
func (s *Studio) lookup(w http.ResponseWriter, r *http.Request) (*models.Artifact, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}

	ctx := r.Context()
	a, err := s.history.Get(ctx, middleware.SessionIDFromCtx(ctx), id)
	if err != nil {
		slog.Error("history lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if a == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return a, true
}

// readBackground returns the uploaded background bytes, nil when no file
// was chosen, or a user-facing message when the upload is unusable.
func (s *Studio) readBackground(r *http.Request) ([]byte, string) {
	if r.MultipartForm == nil {
		return nil, ""
	}
	file, header, err := r.FormFile("background")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ""
	}
	if err != nil {
		return nil, "Could not read the uploaded file."
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		return nil, fmt.Sprintf("Upload too large. Maximum size is %d MB.", s.maxUpload>>20)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "Could not read the uploaded file."
	}
	if len(data) == 0 {
		return nil, ""
	}
	if msg := validateBackground(data); msg != "" {
		return nil, msg
	}
	return data, ""
}

// fail re-renders the page with an error flash.
func (s *Studio) fail(w http.ResponseWriter, r *http.Request, status int, f form, msg string) {
	s.page(w, r, status, f, nil, render.Flash{Type: render.FlashError, Message: msg})
}

// page renders the studio with the session's history.
func (s *Studio) page(w http.ResponseWriter, r *http.Request, status int, f form, result *models.Artifact, flashes ...render.Flash) {
	ctx := r.Context()
	if f.values == nil {
		f.values = url.Values{}
	}

	data := &render.PageData{
		Title:   f.kind.Label(),
		Section: "studio",
		Flashes: flashes,
		Data: map[string]any{
			"Kinds":       payload.Kinds(),
			"Kind":        f.kind,
			"Fields":      f.kind.Fields(),
			"Values":      f.values,
			"Fill":        f.fill,
			"Background":  f.background,
			"MaxUploadMB": s.maxUpload >> 20,
			"Result":      result,
		},
	}

	history, err := s.history.List(ctx, middleware.SessionIDFromCtx(ctx))
	if err != nil {
		slog.Error("history list failed", "error", err)
		data.AddFlash(render.FlashError, "History is unavailable right now.")
	}
	data.Data["History"] = history

	s.renderer.Page(w, r, status, "studio", data)
}

// writePNG writes an artifact's bytes with the given Content-Disposition.
func writePNG(w http.ResponseWriter, a *models.Artifact, disposition string) {
	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(a.PNG)))
	h.Set("Content-Disposition", disposition)
	h.Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(a.PNG); err != nil {
		slog.Debug("png write interrupted", "id", a.ID, "error", err)
	}
}
