package models

import "time"

// AskRequest is the body sent to the QA service ask endpoint
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is what the QA service returns for a question
type AskResponse struct {
	Answer          string   `json:"answer"`
	SourceDocuments []string `json:"source_documents"`
}

// HistoryEntry is a single answered question. Entries are never mutated after creation.
type HistoryEntry struct {
	ID              string    `json:"id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	SourceDocuments []string  `json:"source_documents"`
	Timestamp       time.Time `json:"timestamp"`
}
