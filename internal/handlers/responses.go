package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SuccessResponse is returned by API calls with nothing else to report
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// responder holds the JSON helpers shared by handlers
type responder struct {
	logger *log.Logger
	debug  bool
}

func (h *responder) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *responder) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

func (h *responder) debugf(format string, args ...interface{}) {
	if h.debug {
		h.logger.Printf("DEBUG "+format, args...)
	}
}
