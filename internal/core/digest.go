package core

import (
	"github.com/cespare/xxhash/v2"
)

// Digest summarizes a line sequence independently of its order: two
// sequences that are permutations of each other have equal digests.
type Digest struct {
	Lines int
	Bytes int64  // Emitted size: line bytes plus one delimiter per line
	Sum   uint64 // Wrapping sum of per-line xxhash values
}

// ComputeDigest hashes every span of data.
func ComputeDigest(data []byte, spans []Span) Digest {
	d := Digest{Lines: len(spans)}
	for _, s := range spans {
		d.Sum += xxhash.Sum64(data[s.Off:s.End()])
		d.Bytes += int64(s.Len) + 1
	}
	return d
}
