package entropy

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/paconv/paconv/internal/diagnostics"
)

// Overrides is the shape of a hand-authored Entropy/Overrides.toml: a
// developer pinning specific entropy values for a control they added
// or edited by hand, instead of accepting the deterministic fallback
// Split/Combine would otherwise compute.
type Overrides struct {
	// ControlUniqueIDs pins a specific control's numeric ID rather than
	// letting it fall out of the counter Combine assigns new controls.
	ControlUniqueIDs map[string]int `toml:"control_unique_ids"`

	// ResourceOrder pins a specific asset's position in the resource
	// manifest. Apply copies it into Entropy.ResourceOrder; no stage of
	// unpack or pack records or reads that map.
	ResourceOrder map[string]int `toml:"resource_order"`
}

// ParseOverrides decodes raw Overrides.toml bytes. Empty input yields a
// zero-value Overrides rather than an error.
func ParseOverrides(raw []byte) (*Overrides, error) {
	ov := &Overrides{
		ControlUniqueIDs: make(map[string]int),
		ResourceOrder:    make(map[string]int),
	}
	if len(raw) == 0 {
		return ov, nil
	}
	if err := toml.Unmarshal(raw, ov); err != nil {
		return nil, err
	}
	if ov.ControlUniqueIDs == nil {
		ov.ControlUniqueIDs = make(map[string]int)
	}
	if ov.ResourceOrder == nil {
		ov.ResourceOrder = make(map[string]int)
	}
	return ov, nil
}

// Apply overlays ov onto e in place, applied after Entropy.json loads
// and before the combine pass consumes it. knownNames is the set of
// control names actually present in the tree; an override naming a
// control absent from it is reported as a ValidationWarning rather
// than failing the whole load — the override file commonly outlives
// the control it was written for.
func Apply(e *Entropy, ov *Overrides, knownNames map[string]bool, ec *diagnostics.ErrorContainer) {
	if e == nil || ov == nil {
		return
	}
	for name, id := range ov.ControlUniqueIDs {
		if !knownNames[name] {
			ec.Warn(diagnostics.CodeValidationWarning, "entropy override pins controlUniqueId for unknown control %q", name)
			continue
		}
		e.ControlUniqueIDs[name] = id
	}
	for name, order := range ov.ResourceOrder {
		e.ResourceOrder[name] = order
	}
}
