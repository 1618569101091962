package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"bridgegen/internal/cabi"
)

// PublicReturn is the C return type of the adapter.
func (p *Plan) PublicReturn() string {
	switch p.Kind {
	case PlanTypeGetter:
		return p.translator().TypeDescriptor()
	case PlanInstanceGetter:
		return p.ResultTr.CType
	}
	if p.ResultConv == ConvVoid {
		return "void"
	}
	return p.ResultTr.CType
}

// PublicParams renders the C parameter list without parentheses. Type
// getters take (void); every other empty list stays empty.
func (p *Plan) PublicParams() string {
	if p.Kind == PlanTypeGetter {
		return "void"
	}
	params := p.Public.Params()
	parts := make([]string, len(params))
	tr := p.translator()
	for i, sp := range params {
		parts[i] = tr.Translate(sp.Type).CType + " " + sp.Name
	}
	return strings.Join(parts, ", ")
}

// HeaderField is the function-pointer field of the scope struct.
func (p *Plan) HeaderField() string {
	return fmt.Sprintf("%s (*%s)(%s);", p.PublicReturn(), p.Element.Name, p.PublicParams())
}

// Initializer is the matching entry of the static struct literal.
func (p *Plan) Initializer() string {
	return fmt.Sprintf("/* %s = */ %s,", p.Element.Name, p.Adapter)
}

// HeaderDeclaration is the top-level prototype of a re-exported element,
// empty when the element has no short name.
func (p *Plan) HeaderDeclaration() string {
	if p.Element.ShortName == "" {
		return ""
	}
	return fmt.Sprintf("extern %s %s(%s);", p.PublicReturn(), p.Element.ShortName, p.PublicParams())
}

// Definition renders the bridge declaration, the adapter function and, for
// re-exported elements, the forwarding entry point.
func (p *Plan) Definition() string {
	var b strings.Builder
	if p.Kind == PlanCall {
		fmt.Fprintf(&b, "extern \"C\" %s %s(%s);\n", p.bridgeReturn(), p.Request.Name, p.bridgeParams())
	}
	fmt.Fprintf(&b, "static %s %s(%s) {\n", p.PublicReturn(), p.Adapter, p.PublicParams())
	p.renderBody(&b)
	b.WriteString("}\n")
	if p.Element.ShortName != "" {
		names := make([]string, 0, len(p.Public.Params()))
		for _, sp := range p.Public.Params() {
			names = append(names, sp.Name)
		}
		call := fmt.Sprintf("%s(%s)", p.Adapter, strings.Join(names, ", "))
		if p.PublicReturn() != "void" {
			call = "return " + call
		}
		fmt.Fprintf(&b, "extern \"C\" %s %s(%s) {\n  %s;\n}\n", p.PublicReturn(), p.Element.ShortName, p.PublicParams(), call)
	}
	return b.String()
}

func (p *Plan) renderBody(b *strings.Builder) {
	indent := "  "
	guarded := false
	line := func(format string, args ...any) {
		b.WriteString(indent)
		fmt.Fprintf(b, format, args...)
		b.WriteByte('\n')
	}
	for _, step := range p.Steps {
		switch step.Kind {
		case StepInitRuntime:
			line("Runtime_initIfNeeded();")
		case StepEnterRunnable:
			line("ScopedRunnableState stateGuard;")
			line("KObjHeader** savedFrame = GetCurrentFrame();")
			line("try {")
			indent = "    "
			guarded = true
		case StepEnterFrame:
			line("FrameScope<%d> frame;", p.FrameSize)
		case StepMarshalIn, StepAllocInstance:
			line("%s", p.marshalInLine(step.Arg))
		case StepInvoke:
			if s := p.invokeLine(); s != "" {
				line("%s", s)
			}
		case StepMarshalOut:
			if s := p.marshalOutLine(); s != "" {
				line("%s", s)
			}
		case StepLeaveFrame:
			// FrameScope leaves the frame when the try block ends
		}
	}
	if !guarded {
		return
	}
	indent = "  "
	line("} catch (...) {")
	line("  SetCurrentFrame(savedFrame);")
	line("  HandleCurrentExceptionWhenLeavingManagedCode();")
	line("}")
	if p.PublicReturn() != "void" {
		line("return {};")
	}
}

func (p *Plan) marshalInLine(i int) string {
	a := p.Args[i]
	local := fmt.Sprintf("arg%d", i)
	switch a.Conv {
	case ConvPass:
		return fmt.Sprintf("%s %s = %s;", a.Trans.BridgeType, local, p.publicName(a))
	case ConvVoid:
		return fmt.Sprintf("KObjHeader* %s = UnitInstance();", local)
	case ConvString:
		return fmt.Sprintf("KObjHeader* %s = CreateStringFromCString(%s, frame.slot(%d));", local, p.publicName(a), a.Slot)
	case ConvStable:
		return fmt.Sprintf("KObjHeader* %s = DerefStablePointer(%s.pinned, frame.slot(%d));", local, p.publicName(a), a.Slot)
	case ConvGlobal:
		return fmt.Sprintf("KObjHeader* %s = LookupGlobal(%s, frame.slot(%d));", local, cQuote(a.Symbol), a.Slot)
	case ConvAlloc:
		return fmt.Sprintf("KObjHeader* %s = AllocInstance(LookupTypeInfo(%s), frame.slot(%d));", local, cQuote(a.Symbol), a.Slot)
	default:
		panic(fmt.Errorf("adapter: cannot render %s argument", a.Conv))
	}
}

func (p *Plan) invokeLine() string {
	switch p.Kind {
	case PlanTypeGetter:
		return ""
	case PlanInstanceGetter:
		return fmt.Sprintf("KObjHeader* result = LookupGlobal(%s, frame.slot(%d));", cQuote(p.Symbol), p.ResultSlot)
	}
	args := make([]string, 0, len(p.Args)+1)
	for i := range p.Args {
		args = append(args, fmt.Sprintf("arg%d", i))
	}
	call := fmt.Sprintf("%s(%s)", p.Request.Name, strings.Join(args, ", "))
	switch {
	case p.ResultSlot >= 0:
		args = append(args, fmt.Sprintf("frame.slot(%d)", p.ResultSlot))
		return fmt.Sprintf("KObjHeader* result = %s(%s);", p.Request.Name, strings.Join(args, ", "))
	case p.Request.Result.Category == cabi.CategoryVoid:
		return call + ";"
	default:
		return fmt.Sprintf("%s result = %s;", p.Request.Result.CType, call)
	}
}

func (p *Plan) marshalOutLine() string {
	if p.Kind == PlanTypeGetter {
		return fmt.Sprintf("return reinterpret_cast<%s>(LookupTypeInfo(%s));", p.translator().TypeDescriptor(), cQuote(p.Symbol))
	}
	value := "result"
	if p.Kind == PlanCall && p.Element.IsConstructor() {
		value = "arg0"
	}
	switch p.ResultConv {
	case ConvVoid:
		return ""
	case ConvPass:
		return "return " + value + ";"
	case ConvString:
		return fmt.Sprintf("return CreateCStringFromString(%s);", value)
	case ConvStable:
		return fmt.Sprintf("return %s{ CreateStablePointer(%s) };", p.ResultTr.CType, value)
	default:
		panic(fmt.Errorf("adapter: cannot render %s result", p.ResultConv))
	}
}

func (p *Plan) bridgeReturn() string {
	switch {
	case p.Request.ResultSlot:
		return cabi.ObjHeaderType
	default:
		return p.Request.Result.CType
	}
}

func (p *Plan) bridgeParams() string {
	parts := make([]string, 0, len(p.Request.Params)+1)
	for _, v := range p.Request.Params {
		parts = append(parts, v.CType+" "+v.Name)
	}
	if p.Request.ResultSlot {
		parts = append(parts, cabi.ResultSlotType+" result")
	}
	return strings.Join(parts, ", ")
}

func (p *Plan) publicName(a Arg) string {
	return p.Public.Params()[a.Public].Name
}

func (p *Plan) translator() *cabi.Translator {
	return p.Element.Scope().Translator()
}

func cQuote(s string) string {
	return strconv.Quote(s)
}
