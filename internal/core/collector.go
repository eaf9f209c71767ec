package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/qshuf/internal/debug"
)

// UnterminatedPolicy decides what happens to a final segment that is not
// followed by '\n'.
type UnterminatedPolicy int

const (
	// IncludeUnterminated emits the final segment as a regular line.
	IncludeUnterminated UnterminatedPolicy = iota
	// DropUnterminated discards the final segment.
	DropUnterminated
)

func (p UnterminatedPolicy) String() string {
	switch p {
	case IncludeUnterminated:
		return "include"
	case DropUnterminated:
		return "drop"
	default:
		return fmt.Sprintf("UnterminatedPolicy(%d)", int(p))
	}
}

// ParseUnterminatedPolicy parses "include" or "drop" (case-insensitive).
func ParseUnterminatedPolicy(s string) (UnterminatedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "include", "":
		return IncludeUnterminated, nil
	case "drop":
		return DropUnterminated, nil
	default:
		return IncludeUnterminated, fmt.Errorf("unknown unterminated-line policy %q (want include or drop)", s)
	}
}

// Collect finds every line in data using one worker per partition range and
// returns the spans in file order. The result is identical to ScanAll for any
// threads value; concurrency only changes how fast it is produced.
//
// Workers share data read-only and each writes its own output slot, so the
// errgroup barrier is the only synchronization.
//
// threads is capped at len(data): every range beyond that is empty, so the
// cap never changes the result.
func Collect(ctx context.Context, data []byte, threads int, policy UnterminatedPolicy) ([]Span, error) {
	ranges := Partition(data, max(1, min(threads, len(data))))
	outputs := make([][]Span, len(ranges))

	debug.LogScan("collecting %s with %d workers\n", humanize.Bytes(uint64(len(data))), len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i] = ScanRange(data, r, make([]Span, 0, CountLines(data, r)))
			debug.LogScan("worker %d: [%d,%d) -> %d lines\n", i, r.Start, r.End, len(outputs[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("line collection failed: %w", err)
	}

	total := 0
	for _, out := range outputs {
		total += len(out)
	}

	lines := make([]Span, 0, total+1)
	for _, out := range outputs {
		lines = append(lines, out...)
	}
	return appendUnterminated(lines, data, policy), nil
}

// ScanAll is the single-threaded reference scan of the whole region.
func ScanAll(data []byte, policy UnterminatedPolicy) []Span {
	whole := Range{Start: 0, End: len(data)}
	lines := ScanRange(data, whole, make([]Span, 0, CountLines(data, whole)+1))
	return appendUnterminated(lines, data, policy)
}

func appendUnterminated(lines []Span, data []byte, policy UnterminatedPolicy) []Span {
	if policy != IncludeUnterminated {
		return lines
	}
	if tail, ok := Unterminated(data); ok {
		lines = append(lines, tail)
	}
	return lines
}
