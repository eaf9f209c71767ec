package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/qshuf/internal/core"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
	"github.com/standardbeagle/qshuf/testhelpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, b *testhelpers.TestConfigBuilder) (string, *Result) {
	t.Helper()
	var stdout bytes.Buffer
	res, err := Run(context.Background(), b.Build(), &stdout)
	require.NoError(t, err)
	return stdout.String(), res
}

func TestRun_ThreeLines(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddLines("in.txt", "a", "b", "c").Build()

	out, res := run(t, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithSeed(42))

	assert.Len(t, out, 9)
	testhelpers.AssertPermutation(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, uint64(42), res.Seed)
	assert.Equal(t, 3, res.Lines)
	assert.Equal(t, int64(9), res.Bytes)

	again, _ := run(t, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithSeed(42))
	assert.Equal(t, out, again, "same seed must reproduce the same order")
}

func TestRun_EmptyFile(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddFile("empty.txt", "").Build()

	out, res := run(t, testhelpers.NewTestConfigBuilder(td.Path("empty.txt")).WithThreads(4))
	assert.Empty(t, out)
	assert.Zero(t, res.Lines)
}

func TestRun_SingleUnterminatedLine(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddFile("one.txt", "only").Build()

	out, _ := run(t, testhelpers.NewTestConfigBuilder(td.Path("one.txt")))
	assert.Equal(t, "only\n", out)

	out, res := run(t, testhelpers.NewTestConfigBuilder(td.Path("one.txt")).WithPolicy(core.DropUnterminated))
	assert.Empty(t, out)
	assert.Zero(t, res.Lines)
}

func TestRun_MoreThreadsThanLines(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddNumberedLines("in.txt", 5, true).Build()
	base := testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithSeed(7)

	single, _ := run(t, base.WithThreads(1))
	many, _ := run(t, base.WithThreads(64))
	assert.Equal(t, single, many)
}

func TestRun_ThreadCountDoesNotChangeOrder(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddRandomLines("in.txt", 2000, 3).Build()
	base := testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithSeed(99)

	want, _ := run(t, base.WithThreads(1))
	for _, threads := range []int{2, 3, 8, 17} {
		got, _ := run(t, base.WithThreads(threads))
		assert.Equal(t, want, got, "threads=%d", threads)
	}
}

func TestRun_RandomSeedIsReported(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddNumberedLines("in.txt", 50, true).Build()
	b := testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithRandomSeed()

	out, res := run(t, b)

	replay, _ := run(t, b.WithSeed(res.Seed))
	assert.Equal(t, out, replay)
}

func TestRun_FileOutputWithVerify(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddRandomLines("in.txt", 500, 11).Build()
	dest := td.Path("out.txt")

	out, res := run(t, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).
		WithThreads(4).WithOutput(dest).WithVerify())

	assert.Empty(t, out)
	assert.True(t, res.Verified)
	assert.Equal(t, dest, res.Output)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Len(t, got, len(td.Content("in.txt")))
	testhelpers.AssertPermutation(t, testhelpers.SplitLines(t, td.Content("in.txt")), string(got))
}

func TestRun_VerifyStdoutIsSkipped(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddLines("in.txt", "x", "y").Build()

	_, res := run(t, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithVerify())
	assert.False(t, res.Verified)
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testhelpers.NewTestConfigBuilder(filepath.Join(dir, "nope.txt")).
		WithOutput(filepath.Join(dir, "out.txt")).Build()

	var stdout bytes.Buffer
	_, err := Run(context.Background(), cfg, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
	assert.Equal(t, qerrors.ExitError, qerrors.ExitCode(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output file may be created")
}

func TestRun_UnwritableOutput(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddLines("in.txt", "a").Build()
	cfg := testhelpers.NewTestConfigBuilder(td.Path("in.txt")).
		WithOutput(filepath.Join(td.Dir, "missing", "out.txt")).Build()

	_, err := Run(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open")
	assert.Equal(t, qerrors.ExitError, qerrors.ExitCode(err))
}

func TestRun_InvalidThreads(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddLines("in.txt", "a").Build()
	cfg := testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithThreads(0).Build()

	_, err := Run(context.Background(), cfg, &bytes.Buffer{})
	assert.True(t, errors.Is(err, qerrors.ErrInvalidThreads))
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddNumberedLines("in.txt", 100, true).Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	_, err := Run(ctx, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithThreads(2).Build(), &stdout)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, stdout.String())
}

// cancelOnWrite cancels the run as soon as the first bytes reach stdout.
type cancelOnWrite struct {
	bytes.Buffer
	cancel context.CancelFunc
}

func (w *cancelOnWrite) Write(p []byte) (int, error) {
	w.cancel()
	return w.Buffer.Write(p)
}

func TestRun_CancelledDuringWrite(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddNumberedLines("in.txt", 200000, true).Build()
	input := testhelpers.SplitLines(t, td.Content("in.txt"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &cancelOnWrite{cancel: cancel}

	_, err := Run(ctx, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithSeed(3).Build(), out)
	require.ErrorIs(t, err, context.Canceled)

	got := out.String()
	require.NotEmpty(t, got)
	assert.True(t, strings.HasSuffix(got, "\n"), "stdout must end on a whole line")
	assert.Less(t, len(got), len(td.Content("in.txt"))/10)

	known := make(map[string]bool, len(input))
	for _, l := range input {
		known[l] = true
	}
	seen := make(map[string]bool)
	for _, l := range strings.Split(strings.TrimSuffix(got, "\n"), "\n") {
		assert.True(t, known[l], "unexpected line %q", l)
		assert.False(t, seen[l], "duplicate line %q", l)
		seen[l] = true
	}
}

func TestRun_CancelledFileOutputLeavesNoFile(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).AddNumberedLines("in.txt", 100, true).Build()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testhelpers.NewTestConfigBuilder(td.Path("in.txt")).WithOutput(td.Path("out.txt")).Build(), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, td.Path("out.txt"))
}

func TestVerify_DetectsMismatch(t *testing.T) {
	td := testhelpers.NewTestDataBuilder(t).
		AddLines("in.txt", "a", "b").
		AddLines("bad.txt", "a", "c").
		Build()

	in, err := os.ReadFile(td.Path("in.txt"))
	require.NoError(t, err)
	want := core.ComputeDigest(in, core.ScanAll(in, core.IncludeUnterminated))

	require.NoError(t, Verify(context.Background(), td.Path("in.txt"), want, 1))

	err = Verify(context.Background(), td.Path("bad.txt"), want, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qerrors.ErrDigestMismatch))

	var verr *qerrors.VerifyError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, td.Path("bad.txt"), verr.Path)
}
