// Package state holds per-user client state around the QA service calls:
// the upload widget state and the question history.
package state

import (
	"errors"

	"docqa/internal/services"
)

// Fallback display strings for failures that carry no server message
const (
	UploadFallbackMessage = "Upload failed"
	AskFallbackMessage    = "Failed to get answer"
)

// ErrBusy is returned when a question is submitted while another is in flight
var ErrBusy = errors.New("a request is already in progress")

// DisplayMessage converts a failed call into the string shown to the user.
// Service errors show the server's message; anything else shows the fallback
// followed by the underlying error.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := services.AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	return fallback + ": " + err.Error()
}
