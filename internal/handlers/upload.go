package handlers

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"docqa/internal/web"
)

const (
	// room for multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20
	maxMemory         = 32 << 20

	notPDFMessage = "Please select a PDF file"
	noFileMessage = "No file uploaded"
)

// uploadError is a rejection that happens before the QA service is called
type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

// uploadedFile is a PDF taken from a multipart request
type uploadedFile struct {
	Filename string
	Size     int64
	File     multipart.File
}

func (f *uploadedFile) Close() error {
	return f.File.Close()
}

// readUpload extracts the "file" field from a multipart request. It rejects
// parts whose declared type is not PDF and, when maxBytes > 0, files larger
// than maxBytes.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*uploadedFile, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLargeError(maxBytes)
		}
		return nil, &uploadError{status: http.StatusBadRequest, message: "Failed to parse form data"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &uploadError{status: http.StatusBadRequest, message: noFileMessage}
	}

	if !isPDF(header) {
		file.Close()
		return nil, &uploadError{status: http.StatusUnsupportedMediaType, message: notPDFMessage}
	}

	if maxBytes > 0 && header.Size > maxBytes {
		file.Close()
		return nil, tooLargeError(maxBytes)
	}

	return &uploadedFile{
		Filename: filepath.Base(header.Filename),
		Size:     header.Size,
		File:     file,
	}, nil
}

func isPDF(header *multipart.FileHeader) bool {
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/pdf"
}

func tooLargeError(maxBytes int64) *uploadError {
	mb := float64(maxBytes) / (1024 * 1024)
	return &uploadError{
		status:  http.StatusRequestEntityTooLarge,
		message: fmt.Sprintf("File size must be less than %sMB", web.FormatMegabytes(mb)),
	}
}
