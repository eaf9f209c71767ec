package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageError(t *testing.T) {
	err := NewUsageError("", ErrMissingOperand)

	assert.Equal(t, ErrorTypeUsage, err.Type)
	assert.True(t, errors.Is(err, ErrMissingOperand))
	assert.Equal(t, "missing operand", err.Error())

	err = NewUsageError("extra operand 'b.txt'", ErrExtraOperand)
	assert.Equal(t, "extra operand 'b.txt': extra operand", err.Error())

	err = NewUsageError("flag provided but not defined: -x", nil)
	assert.Equal(t, "flag provided but not defined: -x", err.Error())
	assert.False(t, err.Timestamp.IsZero())
}

func TestFileError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")
	_, openErr := os.Open(missing)
	require.Error(t, openErr)

	err := NewFileError("access", missing, openErr)

	assert.Equal(t, ErrorTypeFileNotFound, err.Type)
	assert.Equal(t, missing, err.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, fmt.Sprintf("cannot access '%s': no such file or directory", missing), err.Error())
}

func TestFileError_Types(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"not exist", fs.ErrNotExist, ErrorTypeFileNotFound},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, ErrorTypePermission},
		{"other", errors.New("device busy"), ErrorTypeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewFileError("stat", "x", tt.err).Type)
		})
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be positive")
	err := NewConfigError("threads", "0", underlying)

	assert.Equal(t, "invalid threads '0': must be positive", err.Error())
	assert.True(t, errors.Is(err, underlying))

	err = NewConfigError("config", "", underlying)
	assert.Equal(t, "invalid config: must be positive", err.Error())
}

func TestWriteAndVerifyErrors(t *testing.T) {
	underlying := errors.New("broken pipe")
	werr := NewWriteError("standard output", underlying)
	assert.Equal(t, ErrorTypeWrite, werr.Type)
	assert.Equal(t, "write error on 'standard output': broken pipe", werr.Error())
	assert.True(t, errors.Is(werr, underlying))

	verr := NewVerifyError("out.txt", "3 lines vs 4 lines", ErrDigestMismatch)
	assert.Contains(t, verr.Error(), "out.txt")
	assert.True(t, errors.Is(verr, ErrDigestMismatch))
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")

	multi := NewMultiError([]error{err1, nil, err2, nil})
	assert.Len(t, multi.Errors, 2)
	assert.Contains(t, multi.Error(), "2 errors")
	assert.True(t, errors.Is(multi, err1))
	assert.True(t, errors.Is(multi, err2))
	assert.Equal(t, multi, multi.ErrorOrNil())

	single := NewMultiError([]error{nil, err1})
	assert.Equal(t, "error 1", single.Error())
	assert.Equal(t, err1, single.ErrorOrNil())

	empty := NewMultiError(nil)
	assert.Equal(t, "no errors", empty.Error())
	assert.NoError(t, empty.ErrorOrNil())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", NewUsageError("", ErrMissingOperand), ExitInvalidUsage},
		{"wrapped usage", fmt.Errorf("parse: %w", NewUsageError("bad", nil)), ExitInvalidUsage},
		{"file", NewFileError("access", "x", fs.ErrNotExist), ExitError},
		{"write", NewWriteError("out", errors.New("disk full")), ExitError},
		{"plain", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}
