package export

import (
	"fmt"

	"bridgegen/internal/backend"
	"bridgegen/internal/decl"
	"bridgegen/internal/types"
)

// ElementKind tags what an element exposes.
type ElementKind uint8

const (
	// KindFunction covers functions, constructors and property accessors.
	KindFunction ElementKind = iota
	// KindType is the synthetic type-info getter of a class.
	KindType
	// KindProperty is an instance getter: an object singleton or an enum entry.
	KindProperty
)

func (k ElementKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindType:
		return "type"
	case KindProperty:
		return "property"
	default:
		return fmt.Sprintf("ElementKind(%d)", k)
	}
}

// Element is one exported declaration bound to its scope.
type Element struct {
	Kind ElementKind
	// Decl is the callable for functions, the class for type getters and
	// object instances, the entry for enum entries.
	Decl decl.Decl
	// Name is the field identifier inside the scope struct.
	Name string
	// ShortName is the top-level external name, empty when not re-exported.
	ShortName string

	scope  *Scope
	index  int
	handle backend.Handle
}

// Scope returns the scope that owns the element.
func (e *Element) Scope() *Scope { return e.scope }

// BridgeName returns the opaque internal name of the compiled bridge. The
// number behind it is assigned on first use from the run-wide counter and
// never changes afterwards.
func (e *Element) BridgeName() string {
	return fmt.Sprintf("%s_bridge_%d", e.scope.Prefix(), e.number())
}

// AdapterName returns the name of the generated native adapter function.
// It shares the bridge's number.
func (e *Element) AdapterName() string {
	return fmt.Sprintf("%s_adapter_%d", e.scope.Prefix(), e.number())
}

func (e *Element) number() int {
	if e.index == 0 {
		e.index = e.scope.Root().nextBridgeIndex()
	}
	return e.index
}

// Handle is the compiled bridge, set once by the adapter emitter.
func (e *Element) Handle() backend.Handle { return e.handle }

// SetHandle binds the compiled bridge. Binding twice is an invariant violation.
func (e *Element) SetHandle(h backend.Handle) {
	if e.handle != "" {
		panic(fmt.Errorf("export: bridge for %s compiled twice", e.QualifiedName()))
	}
	e.handle = h
}

// QualifiedName is the dotted path of the element from the root scope.
func (e *Element) QualifiedName() string {
	return e.scope.Path() + "." + e.Name
}

// IsCallable reports whether the element invokes compiled managed code.
func (e *Element) IsCallable() bool { return e.Kind == KindFunction }

// Symbol names the managed entity the element reaches: the callee for
// functions, the type info for type getters and the instance for property
// elements.
func (e *Element) Symbol() string {
	switch e.Kind {
	case KindType:
		return decl.Attrs(e.Decl).Symbol
	case KindProperty:
		if cls, ok := e.Decl.(*decl.Class); ok {
			return "obj:" + cls.FQName
		}
	}
	return decl.Attrs(e.Decl).Symbol
}

// Class returns the class an element of kind type or property refers to.
func (e *Element) Class() *decl.Class {
	switch d := e.Decl.(type) {
	case *decl.Class:
		return d
	case *decl.EnumEntry:
		return d.Owner
	}
	return nil
}

// Virtual reports whether the call must be dispatched through the receiver's
// method table.
func (e *Element) Virtual() bool {
	switch d := e.Decl.(type) {
	case *decl.Function:
		return d.IsOverridable()
	case *decl.Accessor:
		return d.IsOverridable()
	}
	return false
}

// IsConstructor reports whether the element builds a new instance.
func (e *Element) IsConstructor() bool { return e.isConstructor() }

// ObjectMember reports whether the receiver is an object singleton that the
// adapter loads itself.
func (e *Element) ObjectMember() bool { return e.objectMember() }

func (e *Element) callable() decl.Decl {
	if e.Kind != KindFunction {
		panic(fmt.Errorf("export: %s element %s is not callable", e.Kind, e.Name))
	}
	return e.Decl
}

func (e *Element) isConstructor() bool {
	_, ok := e.Decl.(*decl.Constructor)
	return ok && e.Kind == KindFunction
}

func (e *Element) objectMember() bool {
	if e.Kind != KindFunction || e.isConstructor() {
		return false
	}
	owner := decl.OwnerOf(e.Decl)
	return owner != nil && owner.Flavor == types.FlavorObject
}

func (e *Element) instanceType() types.TypeID {
	cls := e.Class()
	if cls == nil {
		panic(fmt.Errorf("export: property element %s has no class", e.Name))
	}
	return cls.Type
}
