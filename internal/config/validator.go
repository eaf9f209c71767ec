package config

import (
	"fmt"
	"strconv"

	"github.com/standardbeagle/qshuf/internal/core"
	qerrors "github.com/standardbeagle/qshuf/internal/errors"
	"github.com/standardbeagle/qshuf/internal/region"
)

// Validator checks a fully merged configuration before a run
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns a *ConfigError describing the first invalid field
func (v *Validator) Validate(cfg *Config) error {
	if cfg.Threads < 1 {
		return qerrors.NewConfigError("threads", strconv.Itoa(cfg.Threads), qerrors.ErrInvalidThreads)
	}

	if cfg.BufferSize < 1 {
		return qerrors.NewConfigError("buffer_size", strconv.Itoa(cfg.BufferSize),
			fmt.Errorf("must be positive"))
	}

	switch cfg.Unterminated {
	case core.IncludeUnterminated, core.DropUnterminated:
	default:
		return qerrors.NewConfigError("unterminated", cfg.Unterminated.String(), qerrors.ErrInvalidArgument)
	}

	switch cfg.Advise {
	case region.AdviceNormal, region.AdviceRandom, region.AdviceSequential:
	default:
		return qerrors.NewConfigError("advise", cfg.Advise.String(), qerrors.ErrInvalidArgument)
	}

	if cfg.Input == "" {
		return qerrors.NewConfigError("input", "", qerrors.ErrMissingOperand)
	}

	return nil
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
