package routes

import (
	"net/http"

	"docqa/internal/handlers"

	"github.com/gorilla/mux"
)

// Handlers groups everything the router needs
type Handlers struct {
	Health http.HandlerFunc
	Page   *handlers.PageHandler
	API    *handlers.APIHandler
	Static http.Handler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoint for this server
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Page and its form actions
	router.HandleFunc("/", h.Page.Index).Methods(http.MethodGet)
	router.HandleFunc("/upload", h.Page.Upload).Methods(http.MethodPost)
	router.HandleFunc("/upload/reset", h.Page.ResetUpload).Methods(http.MethodPost)
	router.HandleFunc("/ask", h.Page.Ask).Methods(http.MethodPost)
	router.HandleFunc("/history/clear", h.Page.ClearHistory).Methods(http.MethodPost)
	router.HandleFunc("/reset", h.Page.ResetRemote).Methods(http.MethodPost)

	if h.Static != nil {
		router.PathPrefix("/static/").Handler(h.Static)
	}

	// JSON API
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/session", h.API.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/upload", h.API.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/upload", h.API.ResetUpload).Methods(http.MethodDelete)
	api.HandleFunc("/ask", h.API.AskQuestion).Methods(http.MethodPost)
	api.HandleFunc("/history", h.API.ClearHistory).Methods(http.MethodDelete)
	api.HandleFunc("/reset", h.API.ResetRemote).Methods(http.MethodPost)
	api.HandleFunc("/health", h.API.Health).Methods(http.MethodGet)
}
