// Package editorstate implements the per-control presentation metadata
// registry keyed by control name (Document.EditorStates), and the
// duplicate-detection reported through diagnostics.CodeEditorStateError.
package editorstate

import (
	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/model"
)

// Store is the registry of ControlState sidecars, keyed by control
// name.
type Store struct {
	byName map[string]*model.ControlState
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byName: make(map[string]*model.ControlState)}
}

// Has reports whether a ControlState is already registered for name.
func (s *Store) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Insert adds a ControlState, reporting a duplicate name under the
// given diagnostic code. Callers choose the code because the same
// duplicate shape means different things in different callers: a
// Split pass reports a duplicate control identifier as
// CodeDuplicateSymbol, while loading multiple on-disk
// EditorState/*.json files reports a collision across files as
// CodeEditorStateError.
func (s *Store) Insert(cs *model.ControlState, code diagnostics.Code, ec *diagnostics.ErrorContainer) error {
	if _, exists := s.byName[cs.Name]; exists {
		return ec.Error(code, "duplicate control state entry for control %q", cs.Name)
	}
	s.byName[cs.Name] = cs
	return nil
}

// PutAll adds every entry of states to the registry under its map key,
// overwriting an existing entry of the same name; entries not in
// states are kept. Used to rebuild a Store from a Document's
// already-deduplicated EditorStates map rather than re-running Insert's
// duplicate check over data that was already validated once.
func (s *Store) PutAll(states map[string]*model.ControlState) {
	for name, cs := range states {
		s.byName[name] = cs
	}
}

// Get looks up a ControlState by control name.
func (s *Store) Get(name string) (*model.ControlState, bool) {
	cs, ok := s.byName[name]
	return cs, ok
}

// Delete removes a ControlState by name.
func (s *Store) Delete(name string) {
	delete(s.byName, name)
}

// Len reports how many control states are tracked.
func (s *Store) Len() int {
	return len(s.byName)
}

// All returns every control state, keyed by name.
func (s *Store) All() map[string]*model.ControlState {
	out := make(map[string]*model.ControlState, len(s.byName))
	for k, v := range s.byName {
		out[k] = v
	}
	return out
}

// VerifyAgainstControls checks that every name in EditorStates still
// corresponds to exactly one control after IR combine. present is the
// set of control identifiers found in the recombined document.
func (s *Store) VerifyAgainstControls(present map[string]bool, ec *diagnostics.ErrorContainer) {
	for name := range s.byName {
		if !present[name] {
			ec.Warn(diagnostics.CodeValidationWarning, "editor state %q has no corresponding control after combine", name)
		}
	}
}
