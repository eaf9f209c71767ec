package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/qshuf/internal/core"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
	"github.com/standardbeagle/qshuf/internal/region"
)

const (
	// DefaultBufferSize is the emitter's write buffer (1 MiB)
	DefaultBufferSize = 1 << 20

	// GlobalConfigName is looked up in the home directory when no --config is given
	GlobalConfigName = ".qshuf.kdl"
)

// Config holds everything one shuffle run needs
type Config struct {
	Input        string
	Output       string  // "" or "-" means standard output
	Threads      int     // Collector workers, one per partition range
	Seed         *uint64 // nil draws a seed from the OS entropy source
	Unterminated core.UnterminatedPolicy
	BufferSize   int
	Advise       region.Advice
	Verify       bool // Re-read a file output and compare its line digest
}

// Defaults returns the built-in configuration: one thread, standard output,
// entropy seed, final unterminated line included.
func Defaults() *Config {
	return &Config{
		Threads:      1,
		Unterminated: core.IncludeUnterminated,
		BufferSize:   DefaultBufferSize,
		Advise:       region.AdviceRandom,
	}
}

// Load reads an explicit config file. The format is chosen by extension:
// .kdl or .toml. Values not present in the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, qerrors.NewFileError("read config", path, err)
	}

	var settings *fileSettings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdl":
		settings, err = parseKDL(string(content))
	case ".toml":
		settings, err = parseTOML(content)
	default:
		return nil, qerrors.NewConfigError("config", path, qerrors.ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := settings.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads homeDir/.qshuf.kdl when it exists and falls back to
// Defaults otherwise.
func LoadDefault(homeDir string) (*Config, error) {
	if homeDir == "" {
		return Defaults(), nil
	}
	path := filepath.Join(homeDir, GlobalConfigName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), nil
	}
	return Load(path)
}

// SeedValue returns the configured seed and whether one was set.
func (c *Config) SeedValue() (uint64, bool) {
	if c.Seed == nil {
		return 0, false
	}
	return *c.Seed, true
}

// WritesToStdout reports whether output goes to the standard output stream.
func (c *Config) WritesToStdout() bool {
	return c.Output == "" || c.Output == "-"
}

// fileSettings is the format-neutral result of parsing a config file.
// Nil fields were not present.
type fileSettings struct {
	Threads      *int64
	Seed         *uint64
	Output       *string
	Unterminated *string
	BufferSize   *int64
	Advise       *string
	Verify       *bool
}

func (s *fileSettings) apply(cfg *Config) error {
	if s.Threads != nil {
		cfg.Threads = int(*s.Threads)
	}
	if s.Seed != nil {
		seed := *s.Seed
		cfg.Seed = &seed
	}
	if s.Output != nil {
		cfg.Output = *s.Output
	}
	if s.Unterminated != nil {
		p, err := core.ParseUnterminatedPolicy(*s.Unterminated)
		if err != nil {
			return qerrors.NewConfigError("unterminated", *s.Unterminated, err)
		}
		cfg.Unterminated = p
	}
	if s.BufferSize != nil {
		cfg.BufferSize = int(*s.BufferSize)
	}
	if s.Advise != nil {
		a, err := region.ParseAdvice(*s.Advise)
		if err != nil {
			return qerrors.NewConfigError("advise", *s.Advise, err)
		}
		cfg.Advise = a
	}
	if s.Verify != nil {
		cfg.Verify = *s.Verify
	}
	return nil
}
