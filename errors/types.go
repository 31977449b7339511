package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Session errors
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionAmbiguous ErrorCode = "SESSION_AMBIGUOUS"
	ErrCodeSessionExists    ErrorCode = "SESSION_EXISTS"
	ErrCodeSessionExited    ErrorCode = "SESSION_EXITED"
	ErrCodeLaunchFailed     ErrorCode = "LAUNCH_FAILED"

	// Environment errors
	ErrCodeTmuxUnavailable   ErrorCode = "TMUX_UNAVAILABLE"
	ErrCodeDirectoryNotFound ErrorCode = "DIRECTORY_NOT_FOUND"
	ErrCodeProjectNotFound   ErrorCode = "PROJECT_NOT_FOUND"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Command execution errors
	ErrCodeCommandFailed ErrorCode = "COMMAND_FAILED"

	// General errors
	ErrCodeAborted      ErrorCode = "ABORTED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// PilotError represents a structured error with context
type PilotError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PilotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PilotError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PilotError) WithDetail(key string, value interface{}) *PilotError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PilotError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PilotError
func New(code ErrorCode, message string) *PilotError {
	return &PilotError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PilotError
func Wrap(err error, code ErrorCode, message string) *PilotError {
	return &PilotError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific PilotError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// As returns the first PilotError in err's chain.
func As(err error) (*PilotError, bool) {
	for err != nil {
		if pe, ok := err.(*PilotError); ok {
			return pe, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if pe, ok := As(err); ok {
		return pe.Code
	}
	return ""
}
