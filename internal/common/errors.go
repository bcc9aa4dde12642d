package common

import (
	"errors"
	"fmt"
	"os"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "not_found"
	CodeLimitExceeded    ErrorCode = "limit_exceeded"
	CodePermissionDenied ErrorCode = "permission_denied"
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeExecutionFailure ErrorCode = "execution_failure"
	CodeInternalFault    ErrorCode = "internal_fault"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrExecutionFailure = errors.New("execution failure")
	ErrInternalFault    = errors.New("internal fault")
)

var sentinels = []struct {
	err  error
	code ErrorCode
}{
	{ErrNotFound, CodeNotFound},
	{ErrLimitExceeded, CodeLimitExceeded},
	{ErrPermissionDenied, CodePermissionDenied},
	{ErrInvalidArgument, CodeInvalidArgument},
	{ErrExecutionFailure, CodeExecutionFailure},
	{ErrInternalFault, CodeInternalFault},
}

// MCPError is the caller-facing form of a failed operation.
type MCPError struct {
	Code    ErrorCode `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *MCPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MCPError) Unwrap() error {
	return e.Cause
}

func NewMCPError(code ErrorCode, message string, cause error) *MCPError {
	return &MCPError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf classifies err. Anything not wrapping a known sentinel or an
// os-level not-exist/permission error is an internal fault.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr.Code
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return CodeNotFound
	case errors.Is(err, os.ErrPermission):
		return CodePermissionDenied
	}

	return CodeInternalFault
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

func IsPermissionDenied(err error) bool {
	return CodeOf(err) == CodePermissionDenied
}

func IsLimitExceeded(err error) bool {
	return CodeOf(err) == CodeLimitExceeded
}

func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}
