package errors

import (
	stderrors "errors"
	"fmt"
)

// PDFError is a terminal extraction failure with enough context to map it to a
// user-facing status
type PDFError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Context    string    `json:"context,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	PageNumber int       `json:"page_number,omitempty"`
	TotalPages int       `json:"total_pages,omitempty"`
	Err        error     `json:"-"`
}

// ErrorType represents the categories of extraction errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidPageNumber
	ErrorTypeDocumentOpen
	ErrorTypeExtraction
	ErrorTypeInvalidParameter
	ErrorTypeDocumentNotFound
)

// Error implements the error interface
func (e *PDFError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type.String(), e.Message, e.Context)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidPageNumber:
		return "INVALID_PAGE_NUMBER"
	case ErrorTypeDocumentOpen:
		return "DOCUMENT_OPEN_FAILURE"
	case ErrorTypeExtraction:
		return "EXTRACTION_FAILURE"
	case ErrorTypeInvalidParameter:
		return "INVALID_PARAMETER"
	case ErrorTypeDocumentNotFound:
		return "DOCUMENT_NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// WrapError wraps err as a PDFError, keeping its message as the cause
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
	if err != nil {
		e.Context = err.Error()
	}
	return e
}

// InvalidPageNumber reports a page outside [1, totalPages]
func InvalidPageNumber(page, totalPages int) *PDFError {
	return &PDFError{
		Type:       ErrorTypeInvalidPageNumber,
		Message:    fmt.Sprintf("page %d is not valid, the document has %d pages", page, totalPages),
		PageNumber: page,
		TotalPages: totalPages,
	}
}

// DocumentOpenFailure reports a document that could not be opened
func DocumentOpenFailure(path string, err error) *PDFError {
	return WrapError(ErrorTypeDocumentOpen, "failed to open PDF", err).WithFile(path)
}

// ExtractionFailure reports an error while reading page structure
func ExtractionFailure(err error) *PDFError {
	return WrapError(ErrorTypeExtraction, "error processing PDF", err)
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PDFError
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PDFError
func (e *PDFError) WithPage(pageNumber int) *PDFError {
	e.PageNumber = pageNumber
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given ErrorType
func IsType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// AsPDFError returns the PDFError carried by err. Errors of any other kind are
// wrapped as extraction failures.
func AsPDFError(err error) *PDFError {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe
	}
	return ExtractionFailure(err)
}
