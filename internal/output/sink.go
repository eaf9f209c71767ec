// Package output emits shuffled lines to standard output or to a file.
//
// File output is written to a temporary file next to the destination and
// renamed into place on Commit, so a failed run never leaves a partially
// shuffled file behind. The file keeps the mode of the file it replaces (a
// new file gets 0666 minus the umask), and a symlinked destination is
// resolved so the link itself survives.
package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/standardbeagle/qshuf/internal/core"
	"github.com/standardbeagle/qshuf/internal/debug"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
)

var errIsDir = errors.New("is a directory")

// StdoutName is how standard output is named in diagnostics
const StdoutName = "standard output"

// checkEvery is how many lines WriteLines writes between context checks.
const checkEvery = 4096

// LineSource resolves a span to its bytes. *region.Region implements it.
type LineSource interface {
	Line(s core.Span) []byte
}

// Sink buffers lines for one destination
type Sink struct {
	name    string // destination shown in errors
	dest    string // final path; "" for stdout
	tmp     *os.File
	tmpPath string
	w       *bufio.Writer
	stream  *countingWriter // stdout only
	written int64
	done    bool
}

// countingWriter records how much actually reached standard output.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Open prepares a sink. An empty path or "-" writes to stdout; anything
// else is created as a temporary file in the destination's directory.
func Open(path string, bufSize int, stdout io.Writer) (*Sink, error) {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	if path == "" || path == "-" {
		cw := &countingWriter{w: stdout}
		return &Sink{name: StdoutName, stream: cw, w: bufio.NewWriterSize(cw, bufSize)}, nil
	}

	// Replace the link target, not the link.
	dest := path
	if target, err := filepath.EvalSymlinks(path); err == nil {
		dest = target
	}

	mode := newFileMode()
	if st, err := os.Stat(dest); err == nil {
		if st.IsDir() {
			return nil, qerrors.NewFileError("open", path, &os.PathError{Op: "open", Path: path, Err: errIsDir})
		}
		mode = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".qshuf-*")
	if err != nil {
		return nil, qerrors.NewFileError("open", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		debug.LogOutput("chmod %s to %v failed: %v\n", tmp.Name(), mode, err)
	}

	debug.LogOutput("writing %s via %s (mode %v)\n", dest, tmp.Name(), mode)
	return &Sink{
		name:    path,
		dest:    dest,
		tmp:     tmp,
		tmpPath: tmp.Name(),
		w:       bufio.NewWriterSize(tmp, bufSize),
	}, nil
}

// Name returns the destination as shown to the user.
func (s *Sink) Name() string {
	return s.name
}

// Path returns the file that Commit replaces, or "" for stdout. For a
// symlinked destination this is the resolved target.
func (s *Sink) Path() string {
	return s.dest
}

// Written returns the number of bytes accepted so far.
func (s *Sink) Written() int64 {
	return s.written
}

// WriteLines writes every span followed by a single '\n', in slice order.
// It stops with the context's error once ctx is done; the buffer then ends on
// a line boundary.
func (s *Sink) WriteLines(ctx context.Context, src LineSource, spans []core.Span) error {
	for i, span := range spans {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				debug.LogOutput("interrupted after %d of %d lines\n", i, len(spans))
				return fmt.Errorf("shuffle interrupted: %w", err)
			}
		}
		n, err := s.w.Write(src.Line(span))
		s.written += int64(n)
		if err != nil {
			return qerrors.NewWriteError(s.name, err)
		}
		if err := s.w.WriteByte('\n'); err != nil {
			return qerrors.NewWriteError(s.name, err)
		}
		s.written++
	}
	return nil
}

// Commit flushes buffered output. For file output it also syncs the
// temporary file and renames it over the destination.
func (s *Sink) Commit() error {
	if s.done {
		return nil
	}
	s.done = true

	if err := s.w.Flush(); err != nil {
		s.discard()
		return qerrors.NewWriteError(s.name, err)
	}
	if s.tmp == nil {
		debug.LogOutput("flushed %s to %s\n", humanize.Bytes(uint64(s.written)), s.name)
		return nil
	}

	if err := s.tmp.Sync(); err != nil {
		s.discard()
		return qerrors.NewWriteError(s.name, err)
	}
	if err := s.tmp.Close(); err != nil {
		_ = os.Remove(s.tmpPath)
		return qerrors.NewWriteError(s.name, err)
	}
	if err := os.Rename(s.tmpPath, s.dest); err != nil {
		_ = os.Remove(s.tmpPath)
		return qerrors.NewWriteError(s.name, err)
	}
	_ = syncDir(filepath.Dir(s.dest))

	debug.LogOutput("committed %s to %s\n", humanize.Bytes(uint64(s.written)), s.dest)
	return nil
}

// Abort drops everything written so far: a temporary file is removed and
// buffered stdout data is discarded. Once lines have already reached stdout
// they cannot be recalled, so the buffered tail is flushed instead and the
// stream ends on a whole line. Safe to call after Commit.
func (s *Sink) Abort() {
	if s.done {
		return
	}
	s.done = true
	if s.stream != nil && s.stream.n > 0 {
		if err := s.w.Flush(); err != nil {
			debug.LogOutput("flush on abort failed: %v\n", err)
		}
		debug.LogOutput("aborted after streaming %s to %s\n", humanize.Bytes(uint64(s.stream.n)), s.name)
		return
	}
	s.discard()
}

func (s *Sink) discard() {
	s.w.Reset(io.Discard)
	if s.tmp != nil {
		_ = s.tmp.Close()
		_ = os.Remove(s.tmpPath)
		debug.LogOutput("discarded %s\n", s.tmpPath)
	}
}

// syncDir best-effort fsyncs a directory so the rename survives a crash.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
