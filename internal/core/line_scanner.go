package core

import (
	"bytes"
)

// LineScanner provides zero-allocation line iteration over one byte range of
// a mapped region. Lines are reported as Spans (offsets into the full data),
// so nothing is copied out of the mapping.
//
// Usage:
//
//	scanner := NewLineScanner(data, Range{Start: 0, End: len(data)})
//	for scanner.Scan() {
//	    span := scanner.Span()  // offsets into data
//	    line := scanner.Bytes() // zero-copy view of the same bytes
//	}
//
// Only '\n'-terminated lines are reported. Whether a segment left over at the
// end of the data counts as a line is decided by the collector, not the
// scanner.
type LineScanner struct {
	data []byte
	end  int  // End of the assigned range (exclusive)
	pos  int  // Start of the next unscanned segment
	span Span // Current line
}

// NewLineScanner creates a scanner over r. The caller guarantees
// 0 <= r.Start <= r.End <= len(data).
func NewLineScanner(data []byte, r Range) *LineScanner {
	return &LineScanner{
		data: data,
		end:  r.End,
		pos:  r.Start,
	}
}

// Scan advances to the next terminated line. Returns false when the range is
// exhausted or only an unterminated segment remains.
func (ls *LineScanner) Scan() bool {
	if ls.pos >= ls.end {
		return false
	}

	idx := bytes.IndexByte(ls.data[ls.pos:ls.end], '\n')
	if idx < 0 {
		return false
	}

	ls.span = Span{Off: ls.pos, Len: idx}
	ls.pos += idx + 1
	return true
}

// Span returns the current line's offsets.
func (ls *LineScanner) Span() Span {
	return ls.span
}

// Bytes returns the current line as a byte slice (zero-copy).
func (ls *LineScanner) Bytes() []byte {
	return ls.data[ls.span.Off:ls.span.End()]
}

// ScanRange appends every '\n'-terminated line in r to out, in file order,
// and returns the extended slice.
func ScanRange(data []byte, r Range, out []Span) []Span {
	scanner := NewLineScanner(data, r)
	for scanner.Scan() {
		out = append(out, scanner.Span())
	}
	return out
}

// CountLines counts the '\n'-terminated lines in r without allocation.
// Uses bytes.Count for optimal performance (SIMD on supported platforms).
func CountLines(data []byte, r Range) int {
	if r.Empty() {
		return 0
	}
	return bytes.Count(data[r.Start:r.End], []byte{'\n'})
}

// Unterminated returns the final segment of data when data does not end in
// '\n'. ok is false for empty data and for data ending in a delimiter.
func Unterminated(data []byte) (Span, bool) {
	if len(data) == 0 || data[len(data)-1] == '\n' {
		return Span{}, false
	}
	start := bytes.LastIndexByte(data, '\n') + 1
	return Span{Off: start, Len: len(data) - start}, true
}
