package core

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures no collector worker outlives Collect.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
