package core

import (
	"bytes"
	"math/bits"
)

// Partition splits data into exactly n contiguous, disjoint ranges covering
// [0, len(data)). Every boundary except the last sits one byte past a '\n'
// (or at len(data)), so no line straddles two ranges.
//
// The k-th naive split point is k*len(data)/n. From there the boundary moves
// forward to just past the next delimiter. Dense delimiters or a short input
// can collapse neighbouring boundaries; the resulting ranges are empty but
// still valid. n < 1 is treated as 1.
func Partition(data []byte, n int) []Range {
	if n < 1 {
		n = 1
	}

	ranges := make([]Range, n)
	start := 0
	for k := 0; k < n; k++ {
		end := len(data)
		if k < n-1 {
			end = alignToLine(data, max(splitPoint(len(data), k+1, n), start))
		}
		ranges[k] = Range{Start: start, End: end}
		start = end
	}
	return ranges
}

// splitPoint computes k*size/n without overflowing for very large mappings.
func splitPoint(size, k, n int) int {
	hi, lo := bits.Mul64(uint64(k), uint64(size))
	q, _ := bits.Div64(hi, lo, uint64(n)) // k < n keeps hi < n
	return int(q)
}

// alignToLine returns the offset one past the first '\n' at or after p, or
// len(data) when there is none.
func alignToLine(data []byte, p int) int {
	if p >= len(data) {
		return len(data)
	}
	idx := bytes.IndexByte(data[p:], '\n')
	if idx < 0 {
		return len(data)
	}
	return p + idx + 1
}
