// Package errors provides domain-specific error types for netcfgd.
//
// This package defines structured errors with error codes, making it easier to handle
// and test different error conditions consistently across the daemon.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the daemon.
type ErrorCode string

const (
	// ErrCodeUnsupportedTechnology indicates a configuration with an unknown technology tag.
	ErrCodeUnsupportedTechnology ErrorCode = "UNSUPPORTED_TECHNOLOGY"

	// ErrCodeMissingOption indicates a required global option (program path) is absent.
	ErrCodeMissingOption ErrorCode = "MISSING_OPTION"

	// ErrCodeInvalidAddress indicates an IP address that could not be parsed or range-checked.
	ErrCodeInvalidAddress ErrorCode = "INVALID_ADDRESS"

	// ErrCodeNotACanonicalMask indicates a subnet mask with non-contiguous one-bits.
	ErrCodeNotACanonicalMask ErrorCode = "NOT_A_CANONICAL_MASK"

	// ErrCodeLaunchFailure indicates an external program could not be started at all.
	ErrCodeLaunchFailure ErrorCode = "LAUNCH_FAILURE"

	// ErrCodeNonZeroExit indicates an external program ran but exited with a non-zero status.
	ErrCodeNonZeroExit ErrorCode = "NONZERO_EXIT"

	// ErrCodeScanFailure indicates a wireless scan could not be performed or parsed.
	ErrCodeScanFailure ErrorCode = "SCAN_FAILURE"

	// ErrCodeInterface indicates an error related to network interfaces.
	ErrCodeInterface ErrorCode = "INTERFACE_ERROR"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewUnsupportedTechnologyError creates an error for an unknown technology tag.
func NewUnsupportedTechnologyError(technology string) *Error {
	return New(ErrCodeUnsupportedTechnology, fmt.Sprintf("unsupported technology: %q", technology))
}

// NewMissingOptionError creates an error for a missing global option.
func NewMissingOptionError(option string) *Error {
	return New(ErrCodeMissingOption, fmt.Sprintf("missing required option: %q", option))
}

// NewInvalidAddressError creates an error for an unparseable IP address value.
func NewInvalidAddressError(value interface{}) *Error {
	return New(ErrCodeInvalidAddress, fmt.Sprintf("invalid address: %v", value))
}

// NewNotACanonicalMaskError creates an error for a non-contiguous subnet mask.
func NewNotACanonicalMaskError(mask interface{}) *Error {
	return New(ErrCodeNotACanonicalMask, fmt.Sprintf("not a canonical subnet mask: %v", mask))
}

// NewLaunchFailureError creates an error for a program that failed to start.
func NewLaunchFailureError(program string, cause error) *Error {
	return Wrap(ErrCodeLaunchFailure, fmt.Sprintf("failed to launch %s", program), cause)
}

// NewNonZeroExitError creates an error for a program that exited unsuccessfully.
func NewNonZeroExitError(program string, exitCode int, cause error) *Error {
	return Wrap(ErrCodeNonZeroExit, fmt.Sprintf("%s exited with status %d", program, exitCode), cause)
}

// NewScanFailureError creates an error for a failed wireless scan.
func NewScanFailureError(message string, cause error) *Error {
	return Wrap(ErrCodeScanFailure, message, cause)
}

// NewInterfaceError creates a new interface-related error.
func NewInterfaceError(message string, cause error) *Error {
	return Wrap(ErrCodeInterface, message, cause)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
