// Package region maps an input file read-only and hands out zero-copy views
// of its lines.
//
// A Region is the sole owner of the mapped bytes. Line spans produced by the
// collector are plain offsets; Line turns one back into bytes and refuses to
// do so once the region has been closed, so a span can never be read after
// the mapping it points into is gone.
package region

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/edsrzf/mmap-go"

	"github.com/standardbeagle/qshuf/internal/core"
	"github.com/standardbeagle/qshuf/internal/debug"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
)

// Advice is the access-pattern hint passed to the kernel for the mapping.
type Advice int

const (
	AdviceNormal Advice = iota
	AdviceRandom
	AdviceSequential
)

func (a Advice) String() string {
	switch a {
	case AdviceNormal:
		return "normal"
	case AdviceRandom:
		return "random"
	case AdviceSequential:
		return "sequential"
	default:
		return fmt.Sprintf("Advice(%d)", int(a))
	}
}

// ParseAdvice parses "normal", "random" or "sequential".
func ParseAdvice(s string) (Advice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return AdviceNormal, nil
	case "random", "":
		return AdviceRandom, nil
	case "sequential":
		return AdviceSequential, nil
	default:
		return AdviceNormal, fmt.Errorf("unknown access advice %q (want normal, random or sequential)", s)
	}
}

// Region is a read-only mapping of a whole file.
type Region struct {
	path   string
	file   *os.File
	mm     mmap.MMap
	data   []byte
	closed atomic.Bool
}

// Open opens path, checks that it is a regular file and maps it read-only.
// Empty files are not mapped and yield an empty region.
func Open(path string, advice Advice) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, qerrors.NewFileError("access", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, qerrors.NewFileError("stat", path, err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, qerrors.NewFileError("memory map", path, qerrors.ErrNotRegularFile)
	}

	r := &Region{path: path, file: f}
	if st.Size() == 0 {
		debug.LogRegion("%s is empty, nothing to map\n", path)
		return r, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, qerrors.NewFileError("memory map", path, err)
	}
	r.mm = mm
	r.data = mm

	if err := advise(r.data, advice); err != nil {
		// The hint only affects paging behaviour.
		debug.LogRegion("madvise(%s) on %s failed: %v\n", advice, path, err)
	}
	debug.LogRegion("mapped %s (%s, advice=%s)\n", path, humanize.Bytes(uint64(len(r.data))), advice)
	return r, nil
}

// Path returns the file path the region was opened from.
func (r *Region) Path() string {
	return r.path
}

// Len returns the size of the mapping in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Bytes returns the mapped bytes. The slice must not be used after Close.
func (r *Region) Bytes() []byte {
	if r.closed.Load() {
		panic(qerrors.ErrRegionClosed)
	}
	return r.data
}

// Line returns the bytes of one line span. It panics with ErrRegionClosed if
// the region has already been released.
func (r *Region) Line(s core.Span) []byte {
	if r.closed.Load() {
		panic(qerrors.ErrRegionClosed)
	}
	return r.data[s.Off:s.End():s.End()]
}

// Closed reports whether Close has been called.
func (r *Region) Closed() bool {
	return r.closed.Load()
}

// Close unmaps the file and closes its descriptor. Only the first call does
// any work; later calls return nil.
func (r *Region) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	if r.mm != nil {
		if err := r.mm.Unmap(); err != nil {
			errs = append(errs, qerrors.NewFileError("unmap", r.path, err))
		}
		r.mm = nil
	}
	r.data = nil
	if err := r.file.Close(); err != nil {
		errs = append(errs, qerrors.NewFileError("close", r.path, err))
	}
	debug.LogRegion("released %s\n", r.path)
	return qerrors.NewMultiError(errs).ErrorOrNil()
}
