package export

import (
	"fmt"

	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
)

// Variant selects one of the two name spaces a declaration can be named in.
type Variant uint8

const (
	// VariantDefault is the scope-local field name.
	VariantDefault Variant = iota
	// VariantShort is the top-level external name of a re-exported function.
	VariantShort
)

type nameKey struct {
	decl    decl.Decl
	variant Variant
	tag     string
}

// Registry hands out collision-free identifiers within one scope.
// Results are memoized, so asking twice for the same key is stable.
type Registry struct {
	used map[string]struct{}
	memo map[nameKey]string
}

// NewRegistry returns a registry pre-seeded with extra reserved names.
func NewRegistry(reserved ...string) *Registry {
	r := &Registry{
		used: make(map[string]struct{}, 16),
		memo: make(map[nameKey]string, 16),
	}
	for _, name := range reserved {
		r.used[name] = struct{}{}
	}
	return r
}

// Allocate returns the identifier of d in the given variant.
func (r *Registry) Allocate(d decl.Decl, variant Variant) string {
	return r.allocate(nameKey{decl: d, variant: variant}, candidateName(d, variant))
}

// AllocateTagged names a synthetic entry (type getter, instance getter,
// child scope) identified by the pair (d, tag).
func (r *Registry) AllocateTagged(d decl.Decl, tag, candidate string) string {
	return r.allocate(nameKey{decl: d, tag: tag}, candidate)
}

// Lookup returns a previously allocated identifier.
func (r *Registry) Lookup(d decl.Decl, variant Variant) (string, bool) {
	name, ok := r.memo[nameKey{decl: d, variant: variant}]
	return name, ok
}

// Taken reports whether name is registered or reserved.
func (r *Registry) Taken(name string) bool {
	if cabi.IsReserved(name) {
		return true
	}
	_, ok := r.used[name]
	return ok
}

func (r *Registry) allocate(key nameKey, candidate string) string {
	if name, ok := r.memo[key]; ok {
		return name
	}
	name := cabi.Identifier(candidate)
	for r.Taken(name) {
		name += "_"
	}
	r.used[name] = struct{}{}
	r.memo[key] = name
	return name
}

func candidateName(d decl.Decl, variant Variant) string {
	switch d := d.(type) {
	case *decl.Constructor:
		if d.Owner == nil {
			panic(fmt.Errorf("export: constructor %s without owner", d.FQName))
		}
		return d.Owner.Short
	case *decl.Accessor:
		if d.IsSetter {
			return "set_" + d.Short
		}
		return "get_" + d.Short
	case *decl.Function:
		if variant == VariantShort && d.ExternalName != "" {
			return d.ExternalName
		}
		return d.Short
	default:
		return d.Name()
	}
}
