package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code and message so wrapped copies still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap attaches a cause to a sentinel, keeping its code and message.
func Wrap(sentinel *DomainError, err error) *DomainError {
	return NewDomainErrorWithCause(sentinel.Code, sentinel.Message, err)
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Validation errors
var (
	ErrUnknownIntent       = NewDomainError(ErrCodeValidation, "unknown query intent")
	ErrMissingColumn       = NewDomainError(ErrCodeValidation, "required column missing from table")
	ErrInvalidRow          = NewDomainError(ErrCodeValidation, "invalid table row")
	ErrMissingProfileField = NewDomainError(ErrCodeValidation, "name and school are required")
	ErrMissingJob          = NewDomainError(ErrCodeValidation, "desired job is required")
	ErrInvalidGrade        = NewDomainError(ErrCodeValidation, "grade must be one of 고1, 고2, 고3")
	ErrUnknownMajor        = NewDomainError(ErrCodeValidation, "major is not among the recommended majors")
	ErrEmptyQuestion       = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrInvalidTopK         = NewDomainError(ErrCodeValidation, "top-k must be at least 1")
	ErrUnknownBackTarget   = NewDomainError(ErrCodeValidation, "unknown back navigation target")
)

// Not found errors
var (
	ErrSessionNotFound = NewDomainError(ErrCodeNotFound, "session not found")
)

// Operation errors
var (
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidOperation, "transition not allowed from current screen")
	ErrMajorNotSelected  = NewDomainError(ErrCodeInvalidOperation, "no major selected")
	ErrSessionHalted     = NewDomainError(ErrCodeInvalidOperation, "session halted after a fatal error")
	ErrIndexClosed       = NewDomainError(ErrCodeInvalidOperation, "semantic index is closed")
)

// Pipeline errors
var (
	ErrEmptyCorpus       = NewDomainError(ErrCodeInternalError, "no text units to index")
	ErrIndexBuildFailed  = NewDomainError(ErrCodeInternalError, "semantic index build failed")
	ErrRetrievalFailed   = NewDomainError(ErrCodeInternalError, "retrieval failed")
	ErrGenerationFailed  = NewDomainError(ErrCodeUnavailable, "answer generation failed")
	ErrDatasetLoadFailed = NewDomainError(ErrCodeInternalError, "dataset load failed")
)
