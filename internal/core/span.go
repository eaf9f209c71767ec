package core

// Span identifies one line inside a mapped region: Len bytes starting at Off.
// The terminating '\n' is never part of a Span.
type Span struct {
	Off int
	Len int
}

// End returns the offset one past the last byte of the line.
func (s Span) End() int {
	return s.Off + s.Len
}

// Range is a half-open byte range [Start, End) handed to one collector worker.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether the range covers no bytes.
func (r Range) Empty() bool {
	return r.End <= r.Start
}
