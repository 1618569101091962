package adapter

import (
	"fmt"

	"bridgegen/internal/rt"
)

// Call runs the plan on th with native-side arguments, one per public
// parameter, and returns the native-side result. A managed exception never
// leaves Call: the frame chain is restored, the runtime's escape policy
// decides the returned error, and the result is the zero value of its kind.
// Runtime invariant violations are not exceptions and propagate as panics.
func (p *Plan) Call(th *rt.Thread, args ...rt.Value) (result rt.Value, err error) {
	if err := p.checkArgs(args); err != nil {
		return rt.Void(), err
	}
	r := th.Runtime()
	var saved *rt.Frame
	for _, step := range p.Steps {
		switch step.Kind {
		case StepInitRuntime:
			r.InitIfNeeded()
		case StepEnterRunnable:
			restore := th.SwitchRunnable()
			defer restore()
		}
	}
	saved = th.CurrentFrame()
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		exc, ok := rec.(*rt.Exception)
		if !ok {
			panic(rec)
		}
		th.SetCurrentFrame(saved)
		result = p.zeroResult()
		err = th.HandleEscape(exc)
	}()
	return p.run(th, args), nil
}

// run executes the steps after runtime init and the runnable transition.
func (p *Plan) run(th *rt.Thread, args []rt.Value) rt.Value {
	r := th.Runtime()
	var frame *rt.Frame
	vals := make([]rt.Value, len(p.Args))
	var res rt.Value
	out := rt.Void()

	for _, step := range p.Steps {
		switch step.Kind {
		case StepInitRuntime, StepEnterRunnable:
		case StepEnterFrame:
			frame = th.EnterFrame(p.FrameSize)
		case StepMarshalIn, StepAllocInstance:
			vals[step.Arg] = p.marshalIn(th, frame, p.Args[step.Arg], args)
		case StepInvoke:
			res = p.invoke(th, frame, vals)
		case StepMarshalOut:
			out = p.marshalOut(r, res)
		case StepLeaveFrame:
			th.LeaveFrame(frame)
		default:
			panic(fmt.Errorf("adapter: unknown step %s", step.Kind))
		}
	}
	return out
}

func (p *Plan) marshalIn(th *rt.Thread, frame *rt.Frame, a Arg, args []rt.Value) rt.Value {
	r := th.Runtime()
	var dst rt.Slot
	if a.Slot >= 0 {
		dst = frame.Slot(a.Slot)
	}
	var ref rt.Ref
	switch a.Conv {
	case ConvPass:
		return args[a.Public]
	case ConvVoid:
		return rt.Managed(r.Unit())
	case ConvString:
		ref = r.StringFromCStringInto(args[a.Public], dst)
	case ConvStable:
		ref = r.DerefStablePointerInto(args[a.Public].Ptr, dst)
	case ConvGlobal:
		ref = r.GlobalInto(a.Symbol, dst)
	case ConvAlloc:
		ref = r.AllocInstanceInto(p.Class, dst)
	default:
		panic(fmt.Errorf("adapter: cannot marshal %s argument %s", a.Conv, a.Name))
	}
	return rt.Managed(ref)
}

func (p *Plan) invoke(th *rt.Thread, frame *rt.Frame, vals []rt.Value) rt.Value {
	var result rt.Slot
	if p.ResultSlot >= 0 {
		result = frame.Slot(p.ResultSlot)
	}
	switch p.Kind {
	case PlanTypeGetter:
		return rt.TypeDescriptor(p.Class)
	case PlanInstanceGetter:
		return rt.Managed(th.Runtime().GlobalInto(p.Symbol, result))
	}
	res := th.Call(p.Symbol, vals, p.Virtual(), result)
	if p.Element.IsConstructor() {
		return vals[0]
	}
	return res
}

func (p *Plan) marshalOut(r *rt.Runtime, res rt.Value) rt.Value {
	switch p.ResultConv {
	case ConvVoid:
		return rt.Void()
	case ConvPass:
		return res
	case ConvString:
		return r.CStringFromString(res.Ref)
	case ConvStable:
		return rt.Stable(r.CreateStablePointer(res.Ref))
	case ConvType:
		if res.Kind != rt.VKType {
			return rt.TypeDescriptor(p.Class)
		}
		return res
	default:
		panic(fmt.Errorf("adapter: cannot marshal %s result", p.ResultConv))
	}
}

func (p *Plan) zeroResult() rt.Value {
	switch p.ResultConv {
	case ConvPass:
		return rt.Prim(0)
	case ConvString:
		return rt.NullCString()
	case ConvStable:
		return rt.Stable(0)
	default:
		return rt.Void()
	}
}

func (p *Plan) checkArgs(args []rt.Value) error {
	want := 0
	if p.Kind != PlanTypeGetter {
		want = len(p.Public.Params())
	}
	if len(args) != want {
		return fmt.Errorf("%s: expected %d arguments, got %d", p.Adapter, want, len(args))
	}
	for _, a := range p.Args {
		if a.Public < 0 {
			continue
		}
		got := args[a.Public].Kind
		var expect rt.ValueKind
		switch a.Conv {
		case ConvPass:
			expect = rt.VKPrim
		case ConvString:
			expect = rt.VKCString
		case ConvStable:
			expect = rt.VKStable
		default:
			continue
		}
		if got != expect {
			return fmt.Errorf("%s: argument %s must be %s, got %s", p.Adapter, a.Name, expect, got)
		}
	}
	return nil
}
