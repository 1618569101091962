// Package decl models the compiled declaration graph handed over by the
// front-end. The graph is read-only for every consumer in this module.
package decl

import "bridgegen/internal/types"

// Visibility is the effective visibility resolved by the front-end.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Internal
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Internal:
		return "internal"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Modality of a callable member.
type Modality uint8

const (
	Final Modality = iota
	Open
	Abstract
)

func (m Modality) String() string {
	switch m {
	case Final:
		return "final"
	case Open:
		return "open"
	case Abstract:
		return "abstract"
	default:
		return "unknown"
	}
}

// Common carries the attributes every declaration kind shares.
type Common struct {
	Short      string
	FQName     string
	Visibility Visibility
	Expect     bool
	TypeParams []string
	// Symbol names the compiled managed entity (callable, object, type info).
	Symbol string
}

func (c *Common) Name() string          { return c.Short }
func (c *Common) QualifiedName() string { return c.FQName }
func (c *Common) common() *Common       { return c }

// Decl is the closed set of declaration kinds:
// *Function, *Constructor, *Property, *Accessor, *Class, *EnumEntry.
type Decl interface {
	Name() string
	QualifiedName() string
	common() *Common
}

// Attrs exposes the shared attributes of d.
func Attrs(d Decl) *Common {
	return d.common()
}

// Param is one explicit value parameter.
type Param struct {
	Name string
	Type types.TypeID
}

// Function is a top-level or member function.
type Function struct {
	Common
	Owner        *Class // nil for top-level functions
	ExternalName string // explicit export name annotation
	Receiver     types.TypeID
	Params       []Param
	Result       types.TypeID
	Modality     Modality
	Override     bool
	Suspend      bool
}

// Constructor belongs to exactly one class.
type Constructor struct {
	Common
	Owner   *Class
	Params  []Param
	Primary bool
}

// Property groups its accessors. Properties are exported through them.
type Property struct {
	Common
	Owner    *Class
	Receiver types.TypeID
	Type     types.TypeID
	Modality Modality
	Override bool
	Getter   *Accessor
	Setter   *Accessor
}

// Accessor is a property getter or setter.
type Accessor struct {
	Common
	Property *Property
	IsSetter bool
}

// Class covers classes, interfaces, objects, enums, annotation and inline classes.
type Class struct {
	Common
	Owner     *Class
	Flavor    types.ClassFlavor
	Type      types.TypeID
	Companion bool
	Members   []Decl
}

// EnumEntry is one constant of an enum class.
type EnumEntry struct {
	Common
	Owner   *Class
	Ordinal int
}

// IsTopLevel reports whether the function is declared directly in a package.
func (f *Function) IsTopLevel() bool { return f.Owner == nil }

// IsOverridable reports whether calls must go through virtual dispatch.
func (f *Function) IsOverridable() bool {
	if f.Owner == nil {
		return false
	}
	return memberOverridable(f.Owner, f.Modality, f.Override)
}

// IsOverridable reports whether accessor calls must go through virtual dispatch.
func (a *Accessor) IsOverridable() bool {
	p := a.Property
	if p == nil || p.Owner == nil {
		return false
	}
	return memberOverridable(p.Owner, p.Modality, p.Override)
}

func memberOverridable(owner *Class, m Modality, override bool) bool {
	switch owner.Flavor {
	case types.FlavorOpen, types.FlavorAbstract, types.FlavorInterface:
	default:
		return false
	}
	return m != Final || override
}

// ParamsOf returns the value parameters of a callable declaration.
func ParamsOf(d Decl) []Param {
	switch d := d.(type) {
	case *Function:
		return d.Params
	case *Constructor:
		return d.Params
	case *Accessor:
		if d.IsSetter && d.Property != nil {
			return []Param{{Name: "value", Type: d.Property.Type}}
		}
	}
	return nil
}

// OwnerOf returns the class that declares d, or nil for package members.
func OwnerOf(d Decl) *Class {
	switch d := d.(type) {
	case *Function:
		return d.Owner
	case *Constructor:
		return d.Owner
	case *Property:
		return d.Owner
	case *Accessor:
		if d.Property != nil {
			return d.Property.Owner
		}
	case *Class:
		return d.Owner
	case *EnumEntry:
		return d.Owner
	}
	return nil
}
