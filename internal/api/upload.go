package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/guttosm/k4bridge/internal/logger"
)

// allowedClientContentTypes are the Content-Type values a client may declare for a CSV upload.
var allowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// allowedDetectedContentTypes are the sniffed types accepted as CSV.
var allowedDetectedContentTypes = map[string]bool{
	"text/plain":               true,
	"text/csv":                 true,
	"application/csv":          true,
	"application/octet-stream": true,
}

// validateClientContentType checks the part's declared Content-Type.
// An empty value is treated as application/octet-stream.
func validateClientContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ct == "" {
		ct = "application/octet-stream"
	}
	if !allowedClientContentTypes[ct] {
		l := logger.With("upload")
		l.Warn().Str("content_type", contentType).Msg("disallowed client content type")
		return fmt.Errorf("client-declared file type %q is not allowed for CSV upload", contentType)
	}
	return nil
}

// validateMagicBytes sniffs the first 512 bytes and rewinds the file.
func validateMagicBytes(file io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])
	if !allowedDetectedContentTypes[detected] {
		l := logger.With("upload")
		l.Warn().Str("detected_content_type", detected).Msg("disallowed file content")
		return detected, fmt.Errorf("detected file content type %q is not consistent with a CSV file", detected)
	}
	return detected, nil
}
