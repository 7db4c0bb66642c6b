package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa/internal/models"
)

// ============================================================================
// Test Helpers
// ============================================================================

func setupTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *QAClient) {
	server := httptest.NewServer(handler)
	client := NewQAClient(server.URL)
	return server, client
}

// ============================================================================
// Upload Tests
// ============================================================================

func TestUploadDocument(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload-pdf" {
			t.Errorf("Expected path /upload-pdf, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Expected multipart field 'file': %v", err)
		}
		defer file.Close()

		if header.Filename != "a.pdf" {
			t.Errorf("Expected filename a.pdf, got %s", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Expected part content type application/pdf, got %s", ct)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "%PDF-1.4 test" {
			t.Errorf("Unexpected file content %q", string(data))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.UploadResult{
			Message:       "PDF processed successfully",
			Filename:      "a.pdf",
			ChunksCreated: 12,
			FileSizeMB:    1.4,
		})
	}

	server, client := setupTestServer(t, handler)
	defer server.Close()

	result, err := client.UploadDocument(context.Background(), "a.pdf", strings.NewReader("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}

	if result.Filename != "a.pdf" {
		t.Errorf("Expected filename a.pdf, got %s", result.Filename)
	}
	if result.ChunksCreated != 12 {
		t.Errorf("Expected 12 chunks, got %d", result.ChunksCreated)
	}
	if result.FileSizeMB != 1.4 {
		t.Errorf("Expected 1.4 MB, got %v", result.FileSizeMB)
	}
}

func TestUploadDocument_ServerMessage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "fastapi detail string",
			status:     http.StatusRequestEntityTooLarge,
			body:       `{"detail":"File too large"}`,
			wantStatus: 413,
			wantMsg:    "File too large",
		},
		{
			name:       "message field",
			status:     http.StatusInternalServerError,
			body:       `{"message":"RAG system crashed"}`,
			wantStatus: 500,
			wantMsg:    "RAG system crashed",
		},
		{
			name:       "validation detail list",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":[{"msg":"field required"},{"msg":"not a pdf"}]}`,
			wantStatus: 422,
			wantMsg:    "field required; not a pdf",
		},
		{
			name:       "unparseable body falls back",
			status:     http.StatusInternalServerError,
			body:       `<html>Internal Server Error</html>`,
			wantStatus: 500,
			wantMsg:    UploadFailedMessage,
		},
		{
			name:       "empty body falls back",
			status:     http.StatusBadGateway,
			body:       ``,
			wantStatus: 502,
			wantMsg:    UploadFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			defer server.Close()

			result, err := client.UploadDocument(context.Background(), "a.pdf", strings.NewReader("x"))
			if result != nil {
				t.Errorf("Expected nil result, got %+v", result)
			}

			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("Expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, apiErr.Status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestUploadDocument_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewQAClient(server.URL)
	server.Close()

	_, err := client.UploadDocument(context.Background(), "a.pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("Expected error for closed server")
	}
	if _, ok := AsAPIError(err); ok {
		t.Errorf("Transport failure should not be an APIError: %v", err)
	}
}

// ============================================================================
// Ask Tests
// ============================================================================

func TestAskQuestion(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask-question" {
			t.Errorf("Expected path /ask-question, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}

		var req models.AskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Question != "What is X?" {
			t.Errorf("Expected question 'What is X?', got %s", req.Question)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.AskResponse{
			Answer:          "X is...",
			SourceDocuments: []string{"p.3"},
		})
	}

	server, client := setupTestServer(t, handler)
	defer server.Close()

	result, err := client.AskQuestion(context.Background(), "What is X?")
	if err != nil {
		t.Fatalf("AskQuestion failed: %v", err)
	}
	if result.Answer != "X is..." {
		t.Errorf("Expected answer 'X is...', got %s", result.Answer)
	}
	if len(result.SourceDocuments) != 1 || result.SourceDocuments[0] != "p.3" {
		t.Errorf("Unexpected sources %v", result.SourceDocuments)
	}
}

func TestAskQuestion_NullSources(t *testing.T) {
	server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"answer":"no sources","source_documents":null}`)
	})
	defer server.Close()

	result, err := client.AskQuestion(context.Background(), "q")
	if err != nil {
		t.Fatalf("AskQuestion failed: %v", err)
	}
	if result.SourceDocuments == nil {
		t.Error("Expected empty, non-nil sources")
	}
}

func TestAskQuestion_Error(t *testing.T) {
	server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"detail":"No PDF has been uploaded yet"}`)
	})
	defer server.Close()

	_, err := client.AskQuestion(context.Background(), "q")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Message != "No PDF has been uploaded yet" {
		t.Errorf("Unexpected message %q", apiErr.Message)
	}
	if apiErr.Error() != "HTTP 400: No PDF has been uploaded yet" {
		t.Errorf("Unexpected error string %q", apiErr.Error())
	}
}

// ============================================================================
// Health / Reset Tests
// ============================================================================

func TestCheckHealth(t *testing.T) {
	server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			t.Errorf("Unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.HealthStatus{Status: "healthy", RAGSystemLoaded: true})
	})
	defer server.Close()

	status, err := client.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !status.Healthy() || !status.RAGSystemLoaded {
		t.Errorf("Unexpected health %+v", status)
	}
}

func TestResetRemoteState(t *testing.T) {
	server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reset" || r.Method != http.MethodDelete {
			t.Errorf("Unexpected %s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"message":"System reset successfully"}`)
	})
	defer server.Close()

	resp, err := client.ResetRemoteState(context.Background())
	if err != nil {
		t.Fatalf("ResetRemoteState failed: %v", err)
	}
	if resp.Message != "System reset successfully" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
}

func TestResetRemoteState_GenericError(t *testing.T) {
	server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail":"something specific"}`)
	})
	defer server.Close()

	_, err := client.ResetRemoteState(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Message != ResetFailedMessage {
		t.Errorf("Expected generic message, got %q", apiErr.Message)
	}
}

func TestNewQAClient_TrimsTrailingSlash(t *testing.T) {
	client := NewQAClient("http://localhost:8000/")
	if client.BaseURL() != "http://localhost:8000" {
		t.Errorf("Expected trimmed base URL, got %s", client.BaseURL())
	}
}
