package util

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType sniffs the reader's first 512 bytes and matches the
// detected MIME type against allowed prefixes or exact types.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// ContentTypeForFormat maps a stored file format to the download Content-Type.
func ContentTypeForFormat(format string) string {
	switch strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "PDF":
		return "application/pdf"
	case "DOCX":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "DOC":
		return "application/msword"
	case "PPTX":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case "PPT":
		return "application/vnd.ms-powerpoint"
	case "XLSX":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "XLS":
		return "application/vnd.ms-excel"
	case "MP4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// IconForFormat returns the bootstrap icon class, text color and badge
// background used when rendering a file of the given format.
func IconForFormat(format string) (class, color, bg string) {
	switch strings.ToUpper(strings.TrimPrefix(format, ".")) {
	case "PDF":
		return "bi-file-earmark-pdf", "text-danger", "#fee2e2"
	case "DOCX", "DOC":
		return "bi-file-earmark-word", "text-primary", "#dbeafe"
	case "PPTX", "PPT":
		return "bi-file-earmark-ppt", "text-warning", "#fef3c7"
	case "XLSX", "XLS":
		return "bi-file-earmark-excel", "text-success", "#dcfce7"
	case "MP4", "AVI", "MOV":
		return "bi-play-circle", "text-success", "#dcfce7"
	default:
		return "bi-file-earmark", "text-muted", "#e2e8f0"
	}
}

// FormatFileSize renders a byte count the way the upload pages display it.
func FormatFileSize(size int64) string {
	if size <= 0 {
		return ""
	}
	if size < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
}

// IsAbsoluteHTTPURL reports whether the stored file reference is already a
// full URL rather than an object key.
func IsAbsoluteHTTPURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
