package testhelpers

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDataBuilder writes input files into a per-test temporary directory
type TestDataBuilder struct {
	t     testing.TB
	dir   string
	files map[string]string
}

// NewTestDataBuilder creates a builder rooted in t.TempDir()
func NewTestDataBuilder(t testing.TB) *TestDataBuilder {
	t.Helper()
	return &TestDataBuilder{
		t:     t,
		dir:   t.TempDir(),
		files: make(map[string]string),
	}
}

// AddFile adds a file with the given raw content
func (tdb *TestDataBuilder) AddFile(name, content string) *TestDataBuilder {
	tdb.files[name] = content
	return tdb
}

// AddLines adds a file with each line terminated by '\n'
func (tdb *TestDataBuilder) AddLines(name string, lines ...string) *TestDataBuilder {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return tdb.AddFile(name, b.String())
}

// AddNumberedLines adds n lines "line-0000001" ... with or without a final '\n'
func (tdb *TestDataBuilder) AddNumberedLines(name string, n int, terminated bool) *TestDataBuilder {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "line-%07d", i)
	}
	if terminated && n > 0 {
		b.WriteByte('\n')
	}
	return tdb.AddFile(name, b.String())
}

// AddRandomLines adds n lines of random printable text, some of them empty.
// The same seed always yields the same file.
func (tdb *TestDataBuilder) AddRandomLines(name string, n int, seed uint64) *TestDataBuilder {
	rng := rand.New(rand.NewPCG(seed, 1))
	var b strings.Builder
	for i := 0; i < n; i++ {
		width := rng.IntN(40)
		for j := 0; j < width; j++ {
			b.WriteByte(byte(' ' + rng.IntN(95)))
		}
		b.WriteByte('\n')
	}
	return tdb.AddFile(name, b.String())
}

// Build writes every file to disk
func (tdb *TestDataBuilder) Build() *TestData {
	tdb.t.Helper()
	for name, content := range tdb.files {
		path := filepath.Join(tdb.dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tdb.t.Fatalf("create fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			tdb.t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return &TestData{Dir: tdb.dir, contents: tdb.files}
}

// TestData is a set of fixture files on disk
type TestData struct {
	Dir      string
	contents map[string]string
}

// Path returns the absolute path of a fixture or of a not yet existing file
// in the fixture directory.
func (td *TestData) Path(name string) string {
	return filepath.Join(td.Dir, name)
}

// Content returns what was written for name
func (td *TestData) Content(name string) string {
	return td.contents[name]
}
