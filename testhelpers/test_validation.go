package testhelpers

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SplitLines splits shuffled output into lines. Every emitted line ends in
// '\n', so output without a final delimiter fails the test.
func SplitLines(t testing.TB, output string) []string {
	t.Helper()
	if output == "" {
		return nil
	}
	require.True(t, strings.HasSuffix(output, "\n"), "output must end with a newline")
	return strings.Split(strings.TrimSuffix(output, "\n"), "\n")
}

// AssertPermutation checks that output holds exactly the lines of want,
// each once, in any order.
func AssertPermutation(t testing.TB, want []string, output string) bool {
	t.Helper()
	got := SplitLines(t, output)

	w := slices.Clone(want)
	slices.Sort(w)
	slices.Sort(got)
	return assert.Equal(t, w, got, "output is not a permutation of the input lines")
}
