package tts

import (
	"errors"
	"time"
)

// Common errors for the read-aloud engine.
var (
	// Document errors
	ErrNoDocument = errors.New("no document loaded")
	ErrExtraction = errors.New("page text could not be extracted")
	ErrEmptyPage  = errors.New("page has no extractable text")

	// Synthesis errors
	ErrSynthesisUnavailable = errors.New("speech synthesis is not available")
	ErrSynthesis            = errors.New("speech synthesis failed")
	ErrPauseUnsupported     = errors.New("backend cannot pause")
	ErrNothingToResume      = errors.New("nothing to resume")
	ErrVoiceNotFound        = errors.New("requested voice not found")

	// Controller errors
	ErrControllerClosed = errors.New("controller has been closed")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrStateTransition  = errors.New("invalid state transition")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRecoverableError checks if an error is recoverable by a user action such
// as retrying or moving to another page.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrSynthesisUnavailable),
		errors.Is(err, ErrControllerClosed),
		errors.Is(err, ErrInvalidConfig):
		return false
	}

	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityInfo is for informational conditions such as an empty page.
	SeverityInfo ErrorSeverity = iota
	// SeverityWarning is for conditions that do not stop narration.
	SeverityWarning
	// SeverityError is for failures that abandon the current page.
	SeverityError
	// SeverityCritical is for failures that disable playback entirely.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// TTSError provides detailed error information.
type TTSError struct {
	Err       error         // The underlying error
	Component string        // Component that generated the error
	Action    string        // Action being performed when error occurred
	Page      int           // Page being read, 0 when not page specific
	Severity  ErrorSeverity // Severity of the error
	Timestamp time.Time     // When the error occurred
}

// Error implements the error interface.
func (e *TTSError) Error() string {
	if e.Err == nil {
		return "unknown TTS error"
	}
	if e.Component == "" {
		return e.Err.Error()
	}
	return e.Component + ": " + e.Action + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TTSError) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *TTSError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewTTSError creates a new TTS error with context.
func NewTTSError(err error, component, action string) *TTSError {
	return &TTSError{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
		Timestamp: time.Now(),
	}
}

// WithSeverity sets the error severity.
func (e *TTSError) WithSeverity(severity ErrorSeverity) *TTSError {
	e.Severity = severity
	return e
}

// WithPage records the page the error relates to.
func (e *TTSError) WithPage(page int) *TTSError {
	e.Page = page
	return e
}
