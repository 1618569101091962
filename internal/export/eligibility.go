package export

import (
	"bridgegen/internal/decl"
	"bridgegen/internal/types"
)

// Exclusion explains why a declaration stays behind the boundary.
type Exclusion uint8

const (
	Included Exclusion = iota
	NotPublic
	ExpectDecl
	SuspendFunction
	GenericDecl
	AnnotationClass
	InlineClass
	InterfaceClass
	NonInstantiable
	InlineInSignature
	ErasedInSignature
)

func (e Exclusion) String() string {
	switch e {
	case Included:
		return "included"
	case NotPublic:
		return "not public"
	case ExpectDecl:
		return "expect declaration"
	case SuspendFunction:
		return "suspend function"
	case GenericDecl:
		return "declares type parameters"
	case AnnotationClass:
		return "annotation class"
	case InlineClass:
		return "inline class"
	case InterfaceClass:
		return "interface"
	case NonInstantiable:
		return "constructor of a non-instantiable class"
	case InlineInSignature:
		return "signature mentions an inline class"
	case ErasedInSignature:
		return "signature mentions an erased type"
	default:
		return "unknown"
	}
}

// Eligible reports whether d can cross the boundary, assuming every
// enclosing class has already been found eligible.
func Eligible(typesIn *types.Interner, d decl.Decl) bool {
	return Classify(typesIn, d) == Included
}

// Classify returns the first rule that rejects d, or Included.
func Classify(typesIn *types.Interner, d decl.Decl) Exclusion {
	c := decl.Attrs(d)
	if c.Visibility != decl.Public {
		return NotPublic
	}
	if c.Expect {
		return ExpectDecl
	}
	if len(c.TypeParams) > 0 {
		return GenericDecl
	}
	switch d := d.(type) {
	case *decl.Function:
		if d.Suspend {
			return SuspendFunction
		}
		return classifySignature(typesIn, d.Result, d.Receiver, d.Params)
	case *decl.Constructor:
		if d.Owner == nil {
			return NonInstantiable
		}
		switch d.Owner.Flavor {
		case types.FlavorFinal, types.FlavorOpen:
		default:
			return NonInstantiable
		}
		return classifySignature(typesIn, types.NoTypeID, types.NoTypeID, d.Params)
	case *decl.Property:
		return classifySignature(typesIn, d.Type, d.Receiver, nil)
	case *decl.Accessor:
		if d.Property == nil {
			return NotPublic
		}
		if ex := Classify(typesIn, d.Property); ex != Included {
			return ex
		}
		return Included
	case *decl.Class:
		switch d.Flavor {
		case types.FlavorAnnotation:
			return AnnotationClass
		case types.FlavorInline:
			return InlineClass
		case types.FlavorInterface:
			return InterfaceClass
		}
	}
	return Included
}

func classifySignature(typesIn *types.Interner, result, receiver types.TypeID, params []decl.Param) Exclusion {
	ids := make([]types.TypeID, 0, len(params)+2)
	ids = append(ids, result, receiver)
	for _, p := range params {
		ids = append(ids, p.Type)
	}
	for _, id := range ids {
		if id == types.NoTypeID {
			continue
		}
		if typesIn.IsErased(id) {
			return ErasedInSignature
		}
		if typesIn.IsInlineClass(id) {
			return InlineInSignature
		}
	}
	return Included
}
