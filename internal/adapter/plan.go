// Package adapter turns exported elements into adapter plans: the ordered
// boundary protocol each generated entry point follows. A plan renders to
// C++ and runs against the reference runtime in internal/rt.
package adapter

import (
	"fmt"

	"bridgegen/internal/backend"
	"bridgegen/internal/cabi"
	"bridgegen/internal/export"
)

// PlanKind selects the shape of the adapter body.
type PlanKind uint8

const (
	// PlanCall invokes a compiled bridge.
	PlanCall PlanKind = iota
	// PlanTypeGetter returns a type descriptor.
	PlanTypeGetter
	// PlanInstanceGetter returns an object singleton or enum entry.
	PlanInstanceGetter
)

func (k PlanKind) String() string {
	switch k {
	case PlanCall:
		return "call"
	case PlanTypeGetter:
		return "type"
	case PlanInstanceGetter:
		return "instance"
	default:
		return fmt.Sprintf("PlanKind(%d)", k)
	}
}

// StepKind is one stage of the boundary protocol.
type StepKind uint8

const (
	StepInitRuntime StepKind = iota
	StepEnterRunnable
	StepEnterFrame
	StepMarshalIn
	StepAllocInstance
	StepInvoke
	StepMarshalOut
	StepLeaveFrame
)

func (k StepKind) String() string {
	switch k {
	case StepInitRuntime:
		return "init-runtime"
	case StepEnterRunnable:
		return "enter-runnable"
	case StepEnterFrame:
		return "enter-frame"
	case StepMarshalIn:
		return "marshal-in"
	case StepAllocInstance:
		return "alloc-instance"
	case StepInvoke:
		return "invoke"
	case StepMarshalOut:
		return "marshal-out"
	case StepLeaveFrame:
		return "leave-frame"
	default:
		return fmt.Sprintf("StepKind(%d)", k)
	}
}

// Step is one protocol stage; Arg indexes Plan.Args for per-argument steps.
type Step struct {
	Kind StepKind
	Arg  int
}

// Conv is the conversion applied to one value.
type Conv uint8

const (
	// ConvPass moves a primitive unchanged.
	ConvPass Conv = iota
	// ConvVoid carries no value; as an argument it becomes the unit singleton.
	ConvVoid
	// ConvString copies between C strings and managed strings.
	ConvString
	// ConvStable converts between stable pointers and managed references.
	ConvStable
	// ConvGlobal loads an object singleton or enum entry.
	ConvGlobal
	// ConvAlloc allocates a fresh instance for a constructor.
	ConvAlloc
	// ConvType yields a type descriptor.
	ConvType
)

func (c Conv) String() string {
	switch c {
	case ConvPass:
		return "pass"
	case ConvVoid:
		return "void"
	case ConvString:
		return "string"
	case ConvStable:
		return "stable"
	case ConvGlobal:
		return "global"
	case ConvAlloc:
		return "alloc"
	case ConvType:
		return "type"
	default:
		return fmt.Sprintf("Conv(%d)", c)
	}
}

// IsReference reports whether the converted value lives on the managed heap.
func (c Conv) IsReference() bool {
	switch c {
	case ConvString, ConvStable, ConvGlobal, ConvAlloc:
		return true
	}
	return false
}

// Arg is one bridge argument.
type Arg struct {
	Name string
	// Public indexes the public parameter the value comes from, -1 when the
	// adapter synthesizes it.
	Public int
	Conv   Conv
	// Slot is the frame slot keeping the managed value reachable, -1 if none.
	Slot  int
	Trans cabi.Translation
	// Symbol names the global or the type info used by ConvGlobal/ConvAlloc.
	Symbol string
}

// Plan is the full description of one adapter.
type Plan struct {
	Kind    PlanKind
	Element *export.Element
	// Adapter is the generated native function name.
	Adapter string
	// Symbol is the callee, global or type info symbol.
	Symbol  string
	Class   string
	Public  export.Signature
	Bridge  export.Signature
	Request backend.Request
	Handle  backend.Handle

	Args       []Arg
	ResultConv Conv
	ResultTr   cabi.Translation
	// ResultSlot is the frame slot of a reference-bearing result, -1 if none.
	ResultSlot int
	FrameSize  int
	Steps      []Step
}

// Virtual reports whether the bridge dispatches through the method table.
func (p *Plan) Virtual() bool {
	return p.Request.Dispatch == backend.DispatchVirtual
}

// ReferenceConversions counts the conversions that touch the managed heap.
func (p *Plan) ReferenceConversions() int {
	n := 0
	for _, a := range p.Args {
		if a.Conv.IsReference() {
			n++
		}
	}
	if p.ResultConv.IsReference() {
		n++
	}
	return n
}
