package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"docqa/internal/models"
)

// Fallback messages used when the service gives no usable reason
const (
	UploadFailedMessage = "Failed to upload document"
	AskFailedMessage    = "Failed to get answer"
	HealthFailedMessage = "Health check failed"
	ResetFailedMessage  = "Failed to reset system"
)

// QAClientInterface defines the calls made to the document QA service
type QAClientInterface interface {
	UploadDocument(ctx context.Context, filename string, file io.Reader) (*models.UploadResult, error)
	AskQuestion(ctx context.Context, question string) (*models.AskResponse, error)
	CheckHealth(ctx context.Context) (*models.HealthStatus, error)
	ResetRemoteState(ctx context.Context) (*models.ResetResponse, error)
}

// QAClient talks to the document QA service. Every call is a single
// request/response: no retries and no client-side timeout.
type QAClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewQAClient creates a client for the service at baseURL
func NewQAClient(baseURL string) *QAClient {
	return &QAClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewQAClientWithHTTPClient creates a client that uses the given http.Client
func NewQAClientWithHTTPClient(baseURL string, httpClient *http.Client) *QAClient {
	return &QAClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the configured service URL
func (c *QAClient) BaseURL() string {
	return c.baseURL
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

// makeRequest creates and executes an HTTP request with an optional JSON body
func (c *QAClient) makeRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	url := c.baseURL + endpoint

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// parseResponse decodes a 2xx JSON body into result, or turns anything else
// into an *APIError carrying the fallback message.
func parseResponse(resp *http.Response, result interface{}, fallback string) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp, fallback)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// ============================================================================
// Document Methods
// ============================================================================

// UploadDocument sends a PDF to the service as multipart form field "file"
func (c *QAClient) UploadDocument(ctx context.Context, filename string, file io.Reader) (*models.UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", "application/pdf")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-pdf", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}

	var result models.UploadResult
	if err := parseResponse(resp, &result, UploadFailedMessage); err != nil {
		return nil, err
	}

	return &result, nil
}

// AskQuestion asks the service a question about the uploaded document
func (c *QAClient) AskQuestion(ctx context.Context, question string) (*models.AskResponse, error) {
	resp, err := c.makeRequest(ctx, http.MethodPost, "/ask-question", &models.AskRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("ask request failed: %w", err)
	}

	var result models.AskResponse
	if err := parseResponse(resp, &result, AskFailedMessage); err != nil {
		return nil, err
	}

	if result.SourceDocuments == nil {
		result.SourceDocuments = []string{}
	}

	return &result, nil
}

// ============================================================================
// Auxiliary Methods
// ============================================================================

// CheckHealth fetches the service health status
func (c *QAClient) CheckHealth(ctx context.Context) (*models.HealthStatus, error) {
	resp, err := c.makeRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}

	var result models.HealthStatus
	if err := parseResponse(resp, &result, HealthFailedMessage); err != nil {
		return nil, err
	}

	return &result, nil
}

// ResetRemoteState asks the service to drop its loaded document. Failures
// always carry the generic message, whatever the body says.
func (c *QAClient) ResetRemoteState(ctx context.Context) (*models.ResetResponse, error) {
	resp, err := c.makeRequest(ctx, http.MethodDelete, "/reset", nil)
	if err != nil {
		return nil, fmt.Errorf("reset request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Message: ResetFailedMessage}
	}

	var result models.ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
