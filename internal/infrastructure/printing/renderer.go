package printing

import (
	"context"
	"time"
)

// A4 paper in millimetres
const (
	paperWidthMM  = 210.0
	paperHeightMM = 297.0
	marginMM      = 12.0
)

// RenderRequest is an HTML page to print to PDF
type RenderRequest struct {
	HTML  string
	Title string
	// Timeout overrides the renderer's default
	Timeout time.Duration
}

// RenderResult is the output of an HTML to PDF conversion
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer converts HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError is a failure to produce a document
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout     = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeInvalidHTML       = "INVALID_HTML"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in a PDF
func estimatePageCount(pdf []byte) int {
	count := 0
	marker := []byte("/Type /Page")
	for i := 0; i+len(marker) <= len(pdf); i++ {
		if string(pdf[i:i+len(marker)]) != string(marker) {
			continue
		}
		// skip "/Type /Pages"
		if next := i + len(marker); next < len(pdf) && pdf[next] == 's' {
			continue
		}
		count++
	}
	if count == 0 && len(pdf) > 0 {
		return 1
	}
	return count
}
