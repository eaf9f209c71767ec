// Package app runs one shuffle from a merged configuration: map the input,
// collect line spans, permute them and emit them.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/standardbeagle/qshuf/internal/config"
	"github.com/standardbeagle/qshuf/internal/core"
	"github.com/standardbeagle/qshuf/internal/debug"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
	"github.com/standardbeagle/qshuf/internal/output"
	"github.com/standardbeagle/qshuf/internal/region"
	"github.com/standardbeagle/qshuf/internal/shuffle"
)

// Result summarizes a completed run
type Result struct {
	Seed     uint64
	Lines    int
	Bytes    int64 // bytes emitted, delimiters included
	Output   string
	Verified bool
	Elapsed  time.Duration
}

// Run shuffles cfg.Input into cfg.Output. Standard output mode writes to
// stdout. Nothing is emitted unless every line was collected and shuffled,
// and a file output only appears once it is complete.
func Run(ctx context.Context, cfg *config.Config, stdout io.Writer) (res *Result, err error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	start := time.Now()

	seed, ok := cfg.SeedValue()
	if !ok {
		if seed, err = shuffle.NewSeed(); err != nil {
			return nil, err
		}
	}
	debug.LogShuffle("seed %d (fixed: %v)\n", seed, ok)

	in, err := region.Open(cfg.Input, cfg.Advise)
	if err != nil {
		return nil, err
	}
	// The region outlives every use of its spans, including the final flush.
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			res, err = nil, cerr
		}
	}()

	data := in.Bytes()
	spans, err := core.Collect(ctx, data, cfg.Threads, cfg.Unterminated)
	if err != nil {
		return nil, err
	}

	var want core.Digest
	if cfg.Verify {
		want = core.ComputeDigest(data, spans)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("shuffle interrupted: %w", err)
	}
	shuffle.Shuffle(shuffle.New(seed), spans)
	debug.LogShuffle("permuted %d lines\n", len(spans))

	sink, err := output.Open(cfg.Output, cfg.BufferSize, stdout)
	if err != nil {
		return nil, err
	}
	if err := sink.WriteLines(ctx, in, spans); err != nil {
		sink.Abort()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		sink.Abort()
		return nil, fmt.Errorf("shuffle interrupted: %w", err)
	}
	if err := sink.Commit(); err != nil {
		return nil, err
	}

	res = &Result{
		Seed:   seed,
		Lines:  len(spans),
		Bytes:  sink.Written(),
		Output: sink.Name(),
	}

	if cfg.Verify {
		if cfg.WritesToStdout() {
			debug.LogOutput("verify skipped for %s\n", sink.Name())
		} else {
			if err := Verify(ctx, sink.Path(), want, cfg.Threads); err != nil {
				return nil, err
			}
			res.Verified = true
		}
	}

	res.Elapsed = time.Since(start)
	debug.LogOutput("wrote %d lines (%s) to %s in %v\n",
		res.Lines, humanize.Bytes(uint64(res.Bytes)), res.Output, res.Elapsed)
	return res, nil
}

// Verify maps path and checks that its lines are a permutation of the
// lines summarized by want.
func Verify(ctx context.Context, path string, want core.Digest, threads int) error {
	r, err := region.Open(path, region.AdviceSequential)
	if err != nil {
		return qerrors.NewVerifyError(path, "reopen", err)
	}
	defer r.Close()

	// A truncated output would end without '\n'; count that tail as a line.
	spans, err := core.Collect(ctx, r.Bytes(), threads, core.IncludeUnterminated)
	if err != nil {
		return qerrors.NewVerifyError(path, "scan", err)
	}

	got := core.ComputeDigest(r.Bytes(), spans)
	if got != want {
		detail := fmt.Sprintf("%d lines/%d bytes, expected %d lines/%d bytes",
			got.Lines, got.Bytes, want.Lines, want.Bytes)
		return qerrors.NewVerifyError(path, detail, qerrors.ErrDigestMismatch)
	}
	debug.LogOutput("verified %s: %d lines\n", path, got.Lines)
	return nil
}
