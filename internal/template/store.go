// Package template implements the template registry: control templates
// keyed by exact (case-ordinal) name, shared by reference between the
// store and any IR references. Store is a plain owned registry passed
// explicitly wherever it is needed, rather than a document-wide
// singleton.
package template

import (
	"sort"

	"github.com/paconv/paconv/internal/model"
)

// Store is the template registry owned by a Document.
type Store struct {
	byName map[string]*model.TemplateState
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byName: make(map[string]*model.TemplateState)}
}

// Get looks up a template by exact (case-ordinal) name.
func (s *Store) Get(name string) (*model.TemplateState, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Put inserts or replaces a template.
func (s *Store) Put(t *model.TemplateState) {
	s.byName[t.Name] = t
}

// RegisterOrUpdate registers a template split out of a PKG control: a
// new registration copies the PKG template verbatim; an existing entry
// gains IsComponentTemplate and, when isDefinition is true, the
// definition's custom properties.
func (s *Store) RegisterOrUpdate(t *model.TemplateState, isDefinition bool) *model.TemplateState {
	existing, ok := s.byName[t.Name]
	if !ok {
		copyT := *t
		s.byName[t.Name] = &copyT
		return &copyT
	}
	existing.IsComponentTemplate = true
	if isDefinition {
		existing.CustomProperties = t.CustomProperties
	}
	return existing
}

// SynthesizeDefault builds a bare template for a name the store has no
// entry for.
func SynthesizeDefault(name string) *model.TemplateState {
	return &model.TemplateState{Name: name, DisplayName: name}
}

// GetOrSynthesize returns the stored template for name, or registers
// and returns a synthesized default if none exists.
func (s *Store) GetOrSynthesize(name string) *model.TemplateState {
	if t, ok := s.byName[name]; ok {
		return t
	}
	t := SynthesizeDefault(name)
	s.byName[name] = t
	return t
}

// Names returns every registered template name, sorted, for
// deterministic diagnostics and suggestion matching.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len reports how many templates are registered.
func (s *Store) Len() int {
	return len(s.byName)
}

// All returns a shallow copy of the name->template registry.
func (s *Store) All() map[string]*model.TemplateState {
	out := make(map[string]*model.TemplateState, len(s.byName))
	for k, v := range s.byName {
		out[k] = v
	}
	return out
}
