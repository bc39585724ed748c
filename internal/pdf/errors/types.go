package errors

import (
	"errors"
	"fmt"
)

// PDFError is a conversion failure with its category and the file it concerns
type PDFError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Context  string    `json:"context,omitempty"`
	FilePath string    `json:"file_path,omitempty"`
	Err      error     `json:"-"`
}

// ErrorType represents the categories of conversion failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeUsage
	ErrorTypeConfig
	ErrorTypeLoad
	ErrorTypeNoAcroForm
	ErrorTypeNoXFA
	ErrorTypeInvalidXFA
	ErrorTypeSerialize
	ErrorTypeOutput
)

// Sentinels for errors.Is matching on the error category
var (
	ErrUsage      = &PDFError{Type: ErrorTypeUsage}
	ErrConfig     = &PDFError{Type: ErrorTypeConfig}
	ErrLoad       = &PDFError{Type: ErrorTypeLoad}
	ErrNoAcroForm = &PDFError{Type: ErrorTypeNoAcroForm}
	ErrNoXFA      = &PDFError{Type: ErrorTypeNoXFA}
	ErrInvalidXFA = &PDFError{Type: ErrorTypeInvalidXFA}
	ErrSerialize  = &PDFError{Type: ErrorTypeSerialize}
	ErrOutput     = &PDFError{Type: ErrorTypeOutput}
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Type.String()
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Context)
	}
	if e.FilePath != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.FilePath)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is matches any PDFError of the same type, so the package sentinels work with errors.Is
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUsage:
		return "USAGE"
	case ErrorTypeConfig:
		return "CONFIG"
	case ErrorTypeLoad:
		return "LOAD"
	case ErrorTypeNoAcroForm:
		return "NO_ACROFORM"
	case ErrorTypeNoXFA:
		return "NO_XFA"
	case ErrorTypeInvalidXFA:
		return "INVALID_XFA"
	case ErrorTypeSerialize:
		return "SERIALIZE"
	case ErrorTypeOutput:
		return "OUTPUT"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit status for an error type
func (et ErrorType) ExitCode() int {
	switch et {
	case ErrorTypeUsage:
		return 2
	default:
		return 1
	}
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
	}
}

// NewPDFErrorWithContext creates a new PDFError with additional context
func NewPDFErrorWithContext(errorType ErrorType, message, context string) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Context: context,
	}
}

// WrapError wraps err as a PDFError of the given type
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
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

// TypeOf returns the type of the first PDFError in err's chain
func TypeOf(err error) ErrorType {
	var pdfErr *PDFError
	if errors.As(err, &pdfErr) {
		return pdfErr.Type
	}
	return ErrorTypeUnknown
}
