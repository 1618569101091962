package cabi

import "bridgegen/internal/types"

// TypeSet collects the wrapper structs used by exported signatures. Entries
// are kept in first-use order and de-duplicated by wrapper name, so two
// semantic types sharing a wrapper (T and T?) yield one definition.
type TypeSet struct {
	tr    *Translator
	seen  map[string]struct{}
	names []string
}

// NewTypeSet returns an empty collector bound to tr.
func NewTypeSet(tr *Translator) *TypeSet {
	return &TypeSet{tr: tr, seen: make(map[string]struct{})}
}

// Add records id when it needs a wrapper struct. Erased types are skipped.
func (s *TypeSet) Add(id types.TypeID) {
	if id == types.NoTypeID || !s.tr.Translatable(id) {
		return
	}
	s.AddWrapper(s.tr.Translate(id).Wrapper)
}

// AddWrapper records a wrapper struct by name.
func (s *TypeSet) AddWrapper(name string) {
	if name == "" {
		return
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

// Wrappers returns wrapper names in first-use order.
func (s *TypeSet) Wrappers() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *TypeSet) Len() int { return len(s.names) }
