package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"docqa/internal/render"
	"docqa/internal/services"
	"docqa/internal/session"
	"docqa/internal/state"
)

// healthTimeout bounds the status strip's health probe so a slow service
// never holds up the page.
const healthTimeout = 2 * time.Second

// PageHandler serves the server-rendered page and its form actions. Every
// action redirects back to the page once the call has settled.
type PageHandler struct {
	responder
	sessions       *session.Manager
	client         services.QAClientInterface
	renderer       *render.Renderer
	tmpl           *template.Template
	maxUploadBytes int64
	maxUploadMB    float64
}

// PageHandlerConfig bundles the PageHandler dependencies
type PageHandlerConfig struct {
	Sessions  *session.Manager
	Client    services.QAClientInterface
	Renderer  *render.Renderer
	Templates *template.Template
	Logger    *log.Logger
	Debug     bool

	// MaxUploadMB is shown next to the picker; MaxUploadBytes is enforced.
	// Both are zero when the limit is off.
	MaxUploadMB    float64
	MaxUploadBytes int64
}

// NewPageHandler creates a new page handler
func NewPageHandler(cfg PageHandlerConfig) *PageHandler {
	return &PageHandler{
		responder:      responder{logger: cfg.Logger, debug: cfg.Debug},
		sessions:       cfg.Sessions,
		client:         cfg.Client,
		renderer:       cfg.Renderer,
		tmpl:           cfg.Templates,
		maxUploadBytes: cfg.MaxUploadBytes,
		maxUploadMB:    cfg.MaxUploadMB,
	}
}

// Index renders the page: status strip, upload widget and question interface
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.logger.Printf("Failed to load session: %v", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	var healthErr string
	health, err := h.client.CheckHealth(ctx)
	if err != nil {
		h.debugf("Health probe failed: %v", err)
		healthErr = state.DisplayMessage(err, services.HealthFailedMessage)
	}

	view := buildPageView(s, h.renderer, h.maxUploadMB, health, healthErr)

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page", view); err != nil {
		h.logger.Printf("Failed to render page: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Upload handles the upload widget form
func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	file, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		h.logger.Printf("Upload rejected for session %s: %v", s.ID, err)
		s.Upload.Fail(err.Error())
		h.sessions.Save(r.Context(), s)
		h.redirect(w, r, "#upload")
		return
	}
	defer file.Close()

	h.logger.Printf("Uploading %s (%d bytes) for session %s", file.Filename, file.Size, s.ID)

	result, err := s.Upload.Trigger(r.Context(), file.Filename, file.File)
	if err != nil {
		h.logger.Printf("Upload failed for session %s: %v", s.ID, err)
	} else {
		s.MarkUploaded(result)
		h.logger.Printf("Uploaded %s: %d chunks", result.Filename, result.ChunksCreated)
	}

	h.sessions.Save(r.Context(), s)
	h.redirect(w, r, "#upload")
}

// ResetUpload discards the upload result and error so the picker shows again
func (h *PageHandler) ResetUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Upload.Reset()
	h.sessions.Save(r.Context(), s)
	h.redirect(w, r, "#upload")
}

// Ask handles the question form. Submitting without a document, with an
// empty question, or while another question is in flight does nothing.
func (h *PageHandler) Ask(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" || !s.DocumentReady() {
		h.redirect(w, r, "#questions")
		return
	}

	_, err := s.Questions.TryTrigger(r.Context(), question)
	switch {
	case errors.Is(err, state.ErrBusy):
		h.debugf("Ignoring question while another is in flight (session %s)", s.ID)
		h.redirect(w, r, "#questions")
		return
	case err != nil:
		h.logger.Printf("Question failed for session %s: %v", s.ID, err)
	}

	h.sessions.Save(r.Context(), s)
	h.redirect(w, r, "#questions")
}

// ClearHistory empties the question history
func (h *PageHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Questions.Clear()
	h.sessions.Save(r.Context(), s)
	h.redirect(w, r, "#questions")
}

// ResetRemote asks the service to drop its document and, on success, returns
// the session to its initial state.
func (h *PageHandler) ResetRemote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	resp, err := h.client.ResetRemoteState(r.Context())
	if err != nil {
		h.logger.Printf("Remote reset failed: %v", err)
		s.SetNotice(state.DisplayMessage(err, services.ResetFailedMessage))
		h.redirect(w, r, "")
		return
	}

	s.ClearAll()
	s.SetNotice(resp.Message)
	h.sessions.Save(r.Context(), s)
	h.redirect(w, r, "")
}

func (h *PageHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.logger.Printf("Failed to load session: %v", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}

func (h *PageHandler) redirect(w http.ResponseWriter, r *http.Request, anchor string) {
	http.Redirect(w, r, "/"+anchor, http.StatusSeeOther)
}
