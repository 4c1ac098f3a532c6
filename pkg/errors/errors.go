package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing or invalid configuration
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeAutomation represents browser automation failures
	ErrorTypeAutomation ErrorType = "automation"
	// ErrorTypeParsing represents result markup parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeDownload represents image download errors
	ErrorTypeDownload ErrorType = "download"
	// ErrorTypeExport represents spreadsheet export errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
)

// ExtractorError represents an error raised by one pipeline component
type ExtractorError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *ExtractorError) Error() string {
	if e.Component == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *ExtractorError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth one more attempt
func (e *ExtractorError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeAutomation:
		return !stderrors.Is(e.Err, ErrNoMoreResults)
	default:
		return false
	}
}

// ErrNoMoreResults is reported by the browser when the "load more" control
// is absent or disabled.
var ErrNoMoreResults = stderrors.New("no more results")

// New creates a new ExtractorError
func New(errType ErrorType, component, message string, err error) *ExtractorError {
	return &ExtractorError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ExtractorError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewAutomation creates a new automation error
func NewAutomation(component, message string, err error) *ExtractorError {
	return New(ErrorTypeAutomation, component, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(component, message string, err error) *ExtractorError {
	return New(ErrorTypeParsing, component, message, err)
}

// NewDownload creates a new download error
func NewDownload(component, message string, err error) *ExtractorError {
	return New(ErrorTypeDownload, component, message, err)
}

// NewExport creates a new export error
func NewExport(component, message string, err error) *ExtractorError {
	return New(ErrorTypeExport, component, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(component, message string, err error) *ExtractorError {
	return New(ErrorTypePublisher, component, message, err)
}

// NewCache creates a new cache error
func NewCache(component, message string, err error) *ExtractorError {
	return New(ErrorTypeCache, component, message, err)
}

// IsType reports whether err wraps an ExtractorError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ee *ExtractorError
	if stderrors.As(err, &ee) {
		return ee.Type == errType
	}
	return false
}

// IsRetryable reports whether err wraps a retryable ExtractorError.
func IsRetryable(err error) bool {
	var ee *ExtractorError
	if stderrors.As(err, &ee) {
		return ee.IsRetryable()
	}
	return false
}
