package adapter

import (
	"fmt"

	"bridgegen/internal/backend"
	"bridgegen/internal/cabi"
	"bridgegen/internal/decl"
	"bridgegen/internal/export"
)

// Set holds the plans of one export tree in emission order.
type Set struct {
	Plans     []*Plan
	byElement map[*export.Element]*Plan
}

// For returns the plan of e. Asking for an element outside the set is an
// invariant violation.
func (s *Set) For(e *export.Element) *Plan {
	p, ok := s.byElement[e]
	if !ok {
		panic(fmt.Errorf("adapter: no plan for %s", e.QualifiedName()))
	}
	return p
}

// Build plans every element under root and compiles one bridge per callable
// element through be.
func Build(root *export.Scope, be backend.Backend) (*Set, error) {
	elems := root.AllElements()
	set := &Set{
		Plans:     make([]*Plan, 0, len(elems)),
		byElement: make(map[*export.Element]*Plan, len(elems)),
	}
	for _, e := range elems {
		p := NewPlan(e)
		if p.Kind == PlanCall {
			h, err := be.Compile(p.Request)
			if err != nil {
				return nil, fmt.Errorf("failed to compile bridge for %s: %w", e.QualifiedName(), err)
			}
			e.SetHandle(h)
			p.Handle = h
		}
		set.Plans = append(set.Plans, p)
		set.byElement[e] = p
	}
	return set, nil
}

// NewPlan derives the adapter plan of one element.
func NewPlan(e *export.Element) *Plan {
	switch e.Kind {
	case export.KindType:
		return typeGetterPlan(e)
	case export.KindProperty:
		return instanceGetterPlan(e)
	case export.KindFunction:
		return callPlan(e)
	default:
		panic(fmt.Errorf("adapter: unexpected element kind %s", e.Kind))
	}
}

func typeGetterPlan(e *export.Element) *Plan {
	cls := e.Class()
	return &Plan{
		Kind:       PlanTypeGetter,
		Element:    e,
		Adapter:    e.AdapterName(),
		Symbol:     e.Symbol(),
		Class:      cls.FQName,
		ResultConv: ConvType,
		ResultSlot: -1,
		Steps:      []Step{{Kind: StepInitRuntime}, {Kind: StepMarshalOut}},
	}
}

func instanceGetterPlan(e *export.Element) *Plan {
	cls := e.Class()
	tr := e.Scope().Translator()
	return &Plan{
		Kind:       PlanInstanceGetter,
		Element:    e,
		Adapter:    e.AdapterName(),
		Symbol:     e.Symbol(),
		Class:      cls.FQName,
		Public:     e.PublicSignature(),
		ResultConv: ConvStable,
		ResultTr:   tr.Translate(cls.Type),
		ResultSlot: 0,
		FrameSize:  1,
		Steps: []Step{
			{Kind: StepInitRuntime},
			{Kind: StepEnterRunnable},
			{Kind: StepEnterFrame},
			{Kind: StepInvoke},
			{Kind: StepMarshalOut},
			{Kind: StepLeaveFrame},
		},
	}
}

func callPlan(e *export.Element) *Plan {
	tr := e.Scope().Translator()
	pub := e.PublicSignature()
	br := e.BridgeSignature()

	publicIndex := make(map[string]int, len(pub.Params()))
	for i, p := range pub.Params() {
		publicIndex[p.Name] = i
	}

	p := &Plan{
		Kind:       PlanCall,
		Element:    e,
		Adapter:    e.AdapterName(),
		Symbol:     e.Symbol(),
		Public:     pub,
		Bridge:     br,
		ResultSlot: -1,
	}
	owner := decl.OwnerOf(e.Decl)
	if owner != nil {
		p.Class = owner.FQName
	}

	slots := 0
	for i, bp := range br.Params() {
		arg := Arg{Name: bp.Name, Public: -1, Slot: -1, Trans: tr.Translate(bp.Type)}
		switch {
		case i == 0 && e.IsConstructor():
			arg.Conv = ConvAlloc
			arg.Symbol = owner.Symbol
		case i == 0 && e.ObjectMember():
			arg.Conv = ConvGlobal
			arg.Symbol = "obj:" + owner.FQName
		default:
			arg.Conv = convFor(arg.Trans)
			if arg.Conv != ConvVoid {
				idx, ok := publicIndex[bp.Name]
				if !ok {
					panic(fmt.Errorf("adapter: bridge parameter %s of %s missing from public signature", bp.Name, e.QualifiedName()))
				}
				arg.Public = idx
			}
		}
		if arg.Conv.IsReference() {
			arg.Slot = slots
			slots++
		}
		p.Args = append(p.Args, arg)
	}

	p.ResultTr = tr.Translate(pub.Result().Type)
	p.ResultConv = convFor(p.ResultTr)
	if br.ResultSlot {
		p.ResultSlot = slots
		slots++
	}
	p.FrameSize = slots

	p.Steps = append(p.Steps, Step{Kind: StepInitRuntime}, Step{Kind: StepEnterRunnable})
	if p.FrameSize > 0 {
		p.Steps = append(p.Steps, Step{Kind: StepEnterFrame})
	}
	for i, a := range p.Args {
		kind := StepMarshalIn
		if a.Conv == ConvAlloc {
			kind = StepAllocInstance
		}
		p.Steps = append(p.Steps, Step{Kind: kind, Arg: i})
	}
	p.Steps = append(p.Steps, Step{Kind: StepInvoke}, Step{Kind: StepMarshalOut})
	if p.FrameSize > 0 {
		p.Steps = append(p.Steps, Step{Kind: StepLeaveFrame})
	}

	p.Request = backend.Request{
		Name:       e.BridgeName(),
		Callee:     e.Symbol(),
		Result:     bridgeResult(tr.Translate(br.Result().Type)),
		ResultSlot: br.ResultSlot,
	}
	for _, a := range p.Args {
		p.Request.Params = append(p.Request.Params, bridgeValue(a.Name, a.Trans))
	}
	if e.Virtual() {
		p.Request.Dispatch = backend.DispatchVirtual
	}
	return p
}

func convFor(t cabi.Translation) Conv {
	switch t.Category {
	case cabi.CategoryVoid:
		return ConvVoid
	case cabi.CategoryPrimitive:
		return ConvPass
	case cabi.CategoryString:
		return ConvString
	case cabi.CategoryReference:
		return ConvStable
	case cabi.CategoryNullable:
		if t.Wrapper == "" {
			return ConvString
		}
		return ConvStable
	default:
		panic(fmt.Errorf("adapter: no conversion for category %s", t.Category))
	}
}

func bridgeValue(name string, t cabi.Translation) backend.Value {
	return backend.Value{Name: name, Category: t.Category, CType: t.BridgeType, Primitive: t.Primitive}
}

func bridgeResult(t cabi.Translation) backend.Value {
	v := bridgeValue("result", t)
	if t.Category == cabi.CategoryVoid {
		v.CType = "void"
	}
	return v
}
