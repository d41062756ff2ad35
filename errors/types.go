package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Repository errors
	ErrCodeNoRepo      ErrorCode = "NO_REPO"
	ErrCodeRepoUnknown ErrorCode = "REPO_UNKNOWN"

	// Workspace errors
	ErrCodeWorkspaceNotFound ErrorCode = "WORKSPACE_NOT_FOUND"
	ErrCodeWorkspaceExists   ErrorCode = "WORKSPACE_EXISTS"
	ErrCodeWorkspaceInvalid  ErrorCode = "WORKSPACE_INVALID"
	ErrCodeMainWorkspace     ErrorCode = "MAIN_WORKSPACE"

	// VCS subprocess errors
	ErrCodeVcsNotInstalled ErrorCode = "VCS_NOT_INSTALLED"
	ErrCodeVcsFailed       ErrorCode = "VCS_FAILED"
	ErrCodeVcsUnknown      ErrorCode = "VCS_UNKNOWN"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// DwmError represents a structured error with context
type DwmError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *DwmError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DwmError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *DwmError) WithDetail(key string, value interface{}) *DwmError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *DwmError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new DwmError
func New(code ErrorCode, message string) *DwmError {
	return &DwmError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a DwmError
func Wrap(err error, code ErrorCode, message string) *DwmError {
	return &DwmError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific DwmError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	dwmErr, ok := err.(*DwmError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return dwmErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	dwmErr, ok := err.(*DwmError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return dwmErr.Code
}
