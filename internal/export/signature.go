package export

import (
	"fmt"
	"strconv"

	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
	"bridgegen/internal/types"
)

// SignatureElement is one parameter or the return slot.
type SignatureElement struct {
	Name string
	Type types.TypeID
}

// Signature is an ordered element list: index 0 is the return slot, then
// parameters in declaration order.
type Signature struct {
	Elements []SignatureElement
	// ResultSlot is set on bridge signatures whose result is returned through
	// a trailing frame slot instead of the native return register.
	ResultSlot bool
}

// Result returns the return slot.
func (s Signature) Result() SignatureElement { return s.Elements[0] }

// Params returns every element after the return slot.
func (s Signature) Params() []SignatureElement { return s.Elements[1:] }

// PublicSignature is the C-facing signature. Unit parameters are dropped;
// a unit return slot stays at index 0 and renders as void.
func (e *Element) PublicSignature() Signature {
	full := e.fullSignature()
	out := Signature{Elements: make([]SignatureElement, 0, len(full))}
	out.Elements = append(out.Elements, full[0])
	for _, p := range full[1:] {
		if e.scope.translator().Category(p.Type) == cabi.CategoryVoid {
			continue
		}
		out.Elements = append(out.Elements, p)
	}
	return out
}

// BridgeSignature is the signature of the compiled bridge entry point. It
// keeps every receiver and parameter. Constructors return void, and
// reference-bearing results move to a trailing out-slot.
func (e *Element) BridgeSignature() Signature {
	full := e.fullSignature()
	tr := e.scope.translator()
	ret := full[0]
	params := full[1:]
	if e.Kind == KindFunction {
		d := e.callable()
		if owner := decl.OwnerOf(d); owner != nil && (e.isConstructor() || e.objectMember()) {
			thiz := SignatureElement{Name: "thiz", Type: owner.Type}
			params = append([]SignatureElement{thiz}, params...)
		}
		if e.isConstructor() {
			ret.Type = tr.Types().Builtins().Unit
		}
	}
	out := Signature{Elements: make([]SignatureElement, 0, len(params)+1)}
	out.Elements = append(out.Elements, ret)
	out.Elements = append(out.Elements, params...)
	out.ResultSlot = tr.Category(ret.Type).IsReferenceBearing()
	return out
}

// fullSignature lists the return slot and every caller-visible parameter.
func (e *Element) fullSignature() []SignatureElement {
	unit := e.scope.translator().Types().Builtins().Unit
	switch e.Kind {
	case KindType:
		panic(fmt.Errorf("export: type getter %s has no signature", e.Name))
	case KindProperty:
		return []SignatureElement{{Name: "result", Type: e.instanceType()}}
	}

	d := e.callable()
	sig := make([]SignatureElement, 1, 4)
	sig[0] = SignatureElement{Name: "result", Type: unit}
	var receiver types.TypeID
	switch d := d.(type) {
	case *decl.Function:
		sig[0].Type = d.Result
		receiver = d.Receiver
	case *decl.Constructor:
		sig[0].Type = d.Owner.Type
	case *decl.Accessor:
		if !d.IsSetter {
			sig[0].Type = d.Property.Type
		}
		receiver = d.Property.Receiver
	default:
		panic(fmt.Errorf("export: unexpected callable %T", d))
	}
	reserved := []string{sig[0].Name}
	if e.isConstructor() || e.objectMember() {
		reserved = append(reserved, "thiz")
	}
	names := NewRegistry(reserved...)
	add := func(name string, id types.TypeID) {
		sig = append(sig, SignatureElement{Name: names.AllocateTagged(nil, strconv.Itoa(len(sig)), name), Type: id})
	}
	if owner := decl.OwnerOf(d); owner != nil && !e.isConstructor() && !e.objectMember() {
		add("thiz", owner.Type)
	}
	if receiver != types.NoTypeID {
		add("receiver", receiver)
	}
	for _, p := range decl.ParamsOf(d) {
		add(p.Name, p.Type)
	}
	return sig
}
