package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"docqa/internal/models"
	"docqa/internal/services"
	"docqa/internal/session"
	"docqa/internal/state"
)

// maxAskBodyBytes caps the JSON body of an ask request
const maxAskBodyBytes = 64 << 10

// SessionResponse is the JSON view of a session
type SessionResponse struct {
	SessionID     string                `json:"session_id"`
	DocumentReady bool                  `json:"document_ready"`
	Uploading     bool                  `json:"uploading"`
	Asking        bool                  `json:"asking"`
	UploadResult  *models.UploadResult  `json:"upload_result,omitempty"`
	UploadError   string                `json:"upload_error,omitempty"`
	QuestionError string                `json:"question_error,omitempty"`
	LastChunks    int                   `json:"last_chunks"`
	LastSizeMB    float64               `json:"last_size_mb"`
	History       []models.HistoryEntry `json:"history"`
}

// APIHandler exposes the page operations as JSON for scripts
type APIHandler struct {
	responder
	sessions       *session.Manager
	client         services.QAClientInterface
	maxUploadBytes int64
}

// NewAPIHandler creates a new JSON API handler
func NewAPIHandler(sessions *session.Manager, client services.QAClientInterface, maxUploadBytes int64, logger *log.Logger, debug bool) *APIHandler {
	return &APIHandler{
		responder:      responder{logger: logger, debug: debug},
		sessions:       sessions,
		client:         client,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetSession returns the caller's session state
// @Summary Get session state
// @Description Upload result, readiness and question history for the caller's session
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/session [get]
func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.sendJSON(w, http.StatusOK, sessionResponse(s))
}

// UploadDocument forwards a PDF to the QA service
// @Summary Upload a PDF
// @Description Upload a PDF document to the QA service for indexing
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF document"
// @Success 200 {object} models.UploadResult
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/upload [post]
func (h *APIHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	file, err := readUpload(w, r, h.maxUploadBytes)
	if err != nil {
		h.logger.Printf("Upload rejected for session %s: %v", s.ID, err)
		s.Upload.Fail(err.Error())
		h.sessions.Save(r.Context(), s)

		status := http.StatusBadRequest
		var uerr *uploadError
		if errors.As(err, &uerr) {
			status = uerr.status
		}
		h.sendError(w, status, err.Error())
		return
	}
	defer file.Close()

	h.logger.Printf("API upload %s (%d bytes) for session %s", file.Filename, file.Size, s.ID)

	result, err := s.Upload.Trigger(r.Context(), file.Filename, file.File)
	if err != nil {
		h.sessions.Save(r.Context(), s)
		h.sendUpstreamError(w, err, state.UploadFallbackMessage)
		return
	}

	s.MarkUploaded(result)
	h.sessions.Save(r.Context(), s)
	h.sendJSON(w, http.StatusOK, result)
}

// AskQuestion asks a question about the uploaded document
// @Summary Ask a question
// @Description Ask a question and append the answer to the session history
// @Tags questions
// @Accept json
// @Produce json
// @Param request body models.AskRequest true "Question"
// @Success 200 {object} models.HistoryEntry
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/ask [post]
func (h *APIHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodyBytes)

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.sendError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		h.sendError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if !s.DocumentReady() {
		h.sendError(w, http.StatusConflict, "Upload a document before asking questions")
		return
	}

	entry, err := s.Questions.TryTrigger(r.Context(), question)
	if errors.Is(err, state.ErrBusy) {
		h.sendError(w, http.StatusConflict, "A question is already being answered")
		return
	}
	if err != nil {
		h.sessions.Save(r.Context(), s)
		h.sendUpstreamError(w, err, state.AskFallbackMessage)
		return
	}

	h.sessions.Save(r.Context(), s)
	h.sendJSON(w, http.StatusOK, entry)
}

// ResetUpload discards the upload widget result
// @Summary Reset upload widget
// @Tags documents
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/upload [delete]
func (h *APIHandler) ResetUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Upload.Reset()
	h.sessions.Save(r.Context(), s)
	h.sendJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Upload reset"})
}

// ClearHistory empties the question history
// @Summary Clear question history
// @Tags questions
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/history [delete]
func (h *APIHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Questions.Clear()
	h.sessions.Save(r.Context(), s)
	h.sendJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "History cleared"})
}

// ResetRemote resets the QA service and the caller's session
// @Summary Reset the QA service
// @Description Drop the service's loaded document and clear the session
// @Tags system
// @Produce json
// @Success 200 {object} models.ResetResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/reset [post]
func (h *APIHandler) ResetRemote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	resp, err := h.client.ResetRemoteState(r.Context())
	if err != nil {
		h.logger.Printf("Remote reset failed: %v", err)
		h.sendUpstreamError(w, err, services.ResetFailedMessage)
		return
	}

	s.ClearAll()
	h.sessions.Save(r.Context(), s)
	h.sendJSON(w, http.StatusOK, resp)
}

// Health reports the QA service health
// @Summary QA service health
// @Tags system
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/health [get]
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	health, err := h.client.CheckHealth(r.Context())
	if err != nil {
		h.sendUpstreamError(w, err, services.HealthFailedMessage)
		return
	}
	h.debugf("Health probe took %v", time.Since(start))
	h.sendJSON(w, http.StatusOK, health)
}

// sendUpstreamError reports a failed QA service call. Service rejections
// keep their status when it is a client error; everything else is a 502.
func (h *APIHandler) sendUpstreamError(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusBadGateway
	if apiErr, ok := services.AsAPIError(err); ok && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	h.sendError(w, status, state.DisplayMessage(err, fallback))
}

func (h *APIHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.FromRequest(w, r)
	if err != nil {
		h.logger.Printf("Failed to load session: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	return s, true
}

func sessionResponse(s *session.Session) SessionResponse {
	chunks, sizeMB := s.Metrics()
	return SessionResponse{
		SessionID:     s.ID,
		DocumentReady: s.DocumentReady(),
		Uploading:     s.Upload.Uploading(),
		Asking:        s.Questions.Asking(),
		UploadResult:  s.Upload.Result(),
		UploadError:   s.Upload.Error(),
		QuestionError: s.Questions.Error(),
		LastChunks:    chunks,
		LastSizeMB:    sizeMB,
		History:       s.Questions.History(),
	}
}
