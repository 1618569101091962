package decl

import (
	"sort"

	"bridgegen/internal/types"
)

// Package groups the top-level declarations of one fully qualified package.
// The default package has an empty FQName.
type Package struct {
	FQName string
	Decls  []Decl
}

// Module is the compiled declaration graph of one compilation unit.
type Module struct {
	Name     string
	Types    *types.Interner
	Packages []*Package
}

// SortedPackages returns packages ordered by qualified name.
func (m *Module) SortedPackages() []*Package {
	if m == nil {
		return nil
	}
	out := make([]*Package, len(m.Packages))
	copy(out, m.Packages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FQName < out[j].FQName
	})
	return out
}

// Walk visits every declaration depth-first, package by package. Members of a
// class are visited only when fn returns true for the class. Property
// accessors are visited after their property.
func (m *Module) Walk(fn func(Decl) bool) {
	for _, pkg := range m.SortedPackages() {
		walkDecls(pkg.Decls, fn)
	}
}

func walkDecls(decls []Decl, fn func(Decl) bool) {
	for _, d := range decls {
		descend := fn(d)
		switch d := d.(type) {
		case *Property:
			if d.Getter != nil {
				fn(d.Getter)
			}
			if d.Setter != nil {
				fn(d.Setter)
			}
		case *Class:
			if descend {
				walkDecls(d.Members, fn)
			}
		}
	}
}

// Package returns (and creates if needed) the package with the given name.
func (m *Module) Package(fqName string) *Package {
	for _, pkg := range m.Packages {
		if pkg.FQName == fqName {
			return pkg
		}
	}
	pkg := &Package{FQName: fqName}
	m.Packages = append(m.Packages, pkg)
	return pkg
}
