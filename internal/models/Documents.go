package models

// UploadResult is the metadata the QA service echoes back after ingesting a PDF
type UploadResult struct {
	Message       string  `json:"message"`
	Filename      string  `json:"filename"`
	ChunksCreated int     `json:"chunks_created"`
	FileSizeMB    float64 `json:"file_size_mb"`
}

// HealthStatus is the body of the QA service health endpoint
type HealthStatus struct {
	Status          string `json:"status"`
	RAGSystemLoaded bool   `json:"rag_system_loaded"`
}

// Healthy reports whether the service says it is up
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// ResetResponse is returned when the QA service drops its loaded document
type ResetResponse struct {
	Message string `json:"message"`
}

// BasicResponse is the generic message/status body used by local endpoints
type BasicResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
