// Package testhelpers provides shared utilities for testing qshuf
package testhelpers

import (
	"github.com/standardbeagle/qshuf/internal/config"
	"github.com/standardbeagle/qshuf/internal/core"
)

// TestConfigBuilder provides a fluent API for building run configs with
// test-friendly defaults: a fixed seed and a small write buffer.
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(input).
//		WithThreads(4).
//		WithOutput(outPath).
//		Build()
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder creates a config builder for one input file
func NewTestConfigBuilder(input string) *TestConfigBuilder {
	cfg := config.Defaults()
	cfg.Input = input
	cfg.BufferSize = 4096
	seed := uint64(42)
	cfg.Seed = &seed
	return &TestConfigBuilder{cfg: cfg}
}

// WithThreads sets the collector worker count
func (b *TestConfigBuilder) WithThreads(n int) *TestConfigBuilder {
	b.cfg.Threads = n
	return b
}

// WithSeed fixes the shuffle seed
func (b *TestConfigBuilder) WithSeed(seed uint64) *TestConfigBuilder {
	b.cfg.Seed = &seed
	return b
}

// WithRandomSeed clears the seed so the run draws one from the OS
func (b *TestConfigBuilder) WithRandomSeed() *TestConfigBuilder {
	b.cfg.Seed = nil
	return b
}

// WithOutput writes to path instead of standard output
func (b *TestConfigBuilder) WithOutput(path string) *TestConfigBuilder {
	b.cfg.Output = path
	return b
}

// WithPolicy sets the unterminated final line policy
func (b *TestConfigBuilder) WithPolicy(p core.UnterminatedPolicy) *TestConfigBuilder {
	b.cfg.Unterminated = p
	return b
}

// WithVerify enables output verification
func (b *TestConfigBuilder) WithVerify() *TestConfigBuilder {
	b.cfg.Verify = true
	return b
}

// Build returns the configured value. Each call returns a fresh copy.
func (b *TestConfigBuilder) Build() *config.Config {
	out := *b.cfg
	if b.cfg.Seed != nil {
		seed := *b.cfg.Seed
		out.Seed = &seed
	}
	return &out
}
