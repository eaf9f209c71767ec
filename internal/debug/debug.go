package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/qshuf/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// forced is set by the --debug CLI flag
var forced = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetEnabled turns debug output on regardless of the build flag and environment.
func SetEnabled(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	forced = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile initializes debug logging to a file under the system temp
// directory and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "qshuf-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s-%d.log", timestamp, os.Getpid()))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled by flag, build switch
// or the QSHUF_DEBUG environment variable.
func IsDebugEnabled() bool {
	debugMutex.Lock()
	on := forced
	debugMutex.Unlock()
	if on {
		return true
	}

	if EnableDebug == "true" {
		return true
	}

	v := os.Getenv("QSHUF_DEBUG")
	return v == "1" || v == "true"
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	// Workers log concurrently; keep each record in one write.
	msg := fmt.Sprintf("[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
	debugMutex.Lock()
	defer debugMutex.Unlock()
	_, _ = io.WriteString(w, msg)
}

// LogScan logs line collection
func LogScan(format string, args ...interface{}) {
	Log("SCAN", format, args...)
}

// LogShuffle logs permutation work
func LogShuffle(format string, args ...interface{}) {
	Log("SHUFFLE", format, args...)
}

// LogOutput logs emitter and verification work
func LogOutput(format string, args ...interface{}) {
	Log("OUTPUT", format, args...)
}

// LogRegion logs mapping lifecycle events
func LogRegion(format string, args ...interface{}) {
	Log("REGION", format, args...)
}
