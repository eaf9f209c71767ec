package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	qerrors "github.com/standardbeagle/qshuf/internal/errors"
)

// tomlSection holds the optional [shuffle] table.
type tomlSection struct {
	Shuffle *tomlKeys `toml:"shuffle"`
}

// tomlKeys mirrors the KDL nodes.
type tomlKeys struct {
	Threads      *int64      `toml:"threads"`
	Seed         *uint64     `toml:"seed"`
	Output       *string     `toml:"output"`
	Unterminated *string     `toml:"unterminated"`
	BufferSize   interface{} `toml:"buffer_size"` // integer bytes or "4MB"
	Advise       *string     `toml:"advise"`
	Verify       *bool       `toml:"verify"`
}

// parseTOML accepts keys at the top level or inside a [shuffle] table;
// top-level keys win when both are present.
func parseTOML(content []byte) (*fileSettings, error) {
	var section tomlSection
	if err := toml.Unmarshal(content, &section); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	var top tomlKeys
	if err := toml.Unmarshal(content, &top); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	s := &fileSettings{}
	if section.Shuffle != nil {
		if err := s.assignTOML(section.Shuffle); err != nil {
			return nil, err
		}
	}
	if err := s.assignTOML(&top); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileSettings) assignTOML(k *tomlKeys) error {
	if k.Threads != nil {
		s.Threads = k.Threads
	}
	if k.Seed != nil {
		s.Seed = k.Seed
	}
	if k.Output != nil {
		s.Output = k.Output
	}
	if k.Unterminated != nil {
		s.Unterminated = k.Unterminated
	}
	if k.Advise != nil {
		s.Advise = k.Advise
	}
	if k.Verify != nil {
		s.Verify = k.Verify
	}
	switch v := k.BufferSize.(type) {
	case nil:
	case int64:
		s.BufferSize = &v
	case string:
		size, err := ParseSize(v)
		if err != nil {
			return qerrors.NewConfigError("buffer_size", v, err)
		}
		s.BufferSize = &size
	default:
		return qerrors.NewConfigError("buffer_size", fmt.Sprint(v), qerrors.ErrInvalidArgument)
	}
	return nil
}
