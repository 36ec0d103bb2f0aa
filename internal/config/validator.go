package config

import (
	"fmt"

	"github.com/paconv/paconv/internal/diagnostics"
)

// Validator validates a Config and fills in any defaults a .paconv.kdl
// file left unset.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg section by section and applies
// smart defaults. A validation failure is reported as a fatal
// diagnostics.Diagnostic (CodeBadParameter) rather than a bare error,
// matching how every other pipeline stage surfaces a rejection.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	ec := diagnostics.New()

	if err := v.validateProject(&cfg.Project); err != nil {
		return ec.Wrap(diagnostics.CodeBadParameter, err, "project config")
	}
	if err := v.validateAssets(&cfg.Assets); err != nil {
		return ec.Wrap(diagnostics.CodeBadParameter, err, "assets config")
	}
	if err := v.validateWatch(&cfg.Watch); err != nil {
		return ec.Wrap(diagnostics.CodeBadParameter, err, "watch config")
	}
	if err := v.validateSuggest(&cfg.Suggest); err != nil {
		return ec.Wrap(diagnostics.CodeBadParameter, err, "suggest config")
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProject(p *Project) error {
	if p.Root == "" {
		return fmt.Errorf("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateAssets(a *Assets) error {
	if a.MaxSizeMB < 0 {
		return fmt.Errorf("assets.max_size_mb cannot be negative, got %d", a.MaxSizeMB)
	}
	return nil
}

func (v *Validator) validateWatch(w *Watch) error {
	if w.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms cannot be negative, got %d", w.DebounceMs)
	}
	return nil
}

func (v *Validator) validateSuggest(s *Suggest) error {
	if s.MaxSuggestions < 0 {
		return fmt.Errorf("suggest.max_suggestions cannot be negative, got %d", s.MaxSuggestions)
	}
	if s.MaxDistance < 0 {
		return fmt.Errorf("suggest.max_distance cannot be negative, got %d", s.MaxDistance)
	}
	return nil
}

// setSmartDefaults fills in zero-valued fields a .paconv.kdl file left
// unset.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Assets.MaxSizeMB == 0 {
		cfg.Assets.MaxSizeMB = DefaultMaxAssetSizeMB
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultWatchDebounceMs
	}
	if cfg.Suggest.MaxSuggestions == 0 {
		cfg.Suggest.MaxSuggestions = DefaultMaxSuggestions
	}
	if cfg.Suggest.MaxDistance == 0 {
		cfg.Suggest.MaxDistance = DefaultMaxDistance
	}
	if cfg.Convert.CollisionSuffixFormat == "" {
		cfg.Convert.CollisionSuffixFormat = "_%d"
	}
}

// ValidateConfig is a convenience function for one-shot validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
