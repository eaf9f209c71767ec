package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// Process exit codes. Only cmd/qshuf turns them into an os.Exit call.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidUsage = 2
)

// Error types for qshuf
type ErrorType string

const (
	// Command-line errors
	ErrorTypeUsage ErrorType = "usage"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeIO           ErrorType = "io"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Output errors
	ErrorTypeWrite  ErrorType = "write"
	ErrorTypeVerify ErrorType = "verify"
)

// Sentinel errors
var (
	ErrMissingOperand  = errors.New("missing operand")
	ErrExtraOperand    = errors.New("extra operand")
	ErrInvalidThreads  = errors.New("thread count must be a positive integer")
	ErrRegionClosed    = errors.New("mapped region already released")
	ErrDigestMismatch  = errors.New("output lines are not a permutation of the input lines")
	ErrNotRegularFile  = errors.New("not a regular file")
	ErrUnknownFormat   = errors.New("unknown config file format")
	ErrInvalidArgument = errors.New("invalid argument")
)

// UsageError represents invalid command-line usage
type UsageError struct {
	Type       ErrorType
	Detail     string
	Underlying error
	Timestamp  time.Time
}

// NewUsageError creates a usage error. detail is shown to the user, err is
// kept for errors.Is/As.
func NewUsageError(detail string, err error) *UsageError {
	return &UsageError{
		Type:       ErrorTypeUsage,
		Detail:     detail,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *UsageError) Error() string {
	switch {
	case e.Detail == "" && e.Underlying != nil:
		return e.Underlying.Error()
	case e.Underlying == nil:
		return e.Detail
	default:
		return fmt.Sprintf("%s: %v", e.Detail, e.Underlying)
	}
}

// Unwrap returns the underlying error for errors.Is/As
func (e *UsageError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error. op reads as a verb phrase:
// "access", "stat", "memory map", "open".
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errorType = ErrorTypeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("cannot %s '%s': %v", e.Operation, e.Path, causeText(e.Underlying))
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("invalid %s '%s': %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// WriteError represents a failure emitting shuffled output
type WriteError struct {
	Type       ErrorType
	Target     string
	Underlying error
	Timestamp  time.Time
}

// NewWriteError creates a new write error
func NewWriteError(target string, err error) *WriteError {
	return &WriteError{
		Type:       ErrorTypeWrite,
		Target:     target,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *WriteError) Error() string {
	return fmt.Sprintf("write error on '%s': %v", e.Target, causeText(e.Underlying))
}

// Unwrap returns the underlying error
func (e *WriteError) Unwrap() error {
	return e.Underlying
}

// VerifyError reports an output that does not match its input
type VerifyError struct {
	Path       string
	Detail     string
	Underlying error
	Timestamp  time.Time
}

// NewVerifyError creates a new verification error
func NewVerifyError(path, detail string, err error) *VerifyError {
	return &VerifyError{
		Path:       path,
		Detail:     detail,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *VerifyError) Error() string {
	return fmt.Sprintf("verification of '%s' failed (%s): %v", e.Path, e.Detail, e.Underlying)
}

// Unwrap returns the underlying error
func (e *VerifyError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ExitCode maps an error chain to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitInvalidUsage
	}
	return ExitError
}

// causeText strips the *fs.PathError wrapper so messages read
// "cannot access 'x': no such file or directory" instead of repeating the path.
func causeText(err error) string {
	if err == nil {
		return "<nil>"
	}
	var perr *fs.PathError
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err.Error()
	}
	return err.Error()
}
