// Package llvm emits LLVM IR for export bridges.
package llvm

import (
	"fmt"
	"sort"
	"strings"

	"bridgegen/internal/backend"
)

type funcSig struct {
	ret    string
	params []string
}

// Emitter implements backend.Artifact. Each Compile call appends one bridge
// definition; Finish renders the whole module.
type Emitter struct {
	triple  string
	buf     strings.Builder
	callees map[string]funcSig
	names   map[string]struct{}
	count   int
}

var _ backend.Artifact = (*Emitter)(nil)

// New returns an emitter for the given target triple.
func New(triple string) *Emitter {
	return &Emitter{
		triple:  triple,
		callees: make(map[string]funcSig),
		names:   make(map[string]struct{}),
	}
}

// Compile emits one bridge and returns its symbol as the handle.
func (e *Emitter) Compile(req backend.Request) (backend.Handle, error) {
	if req.Name == "" {
		return "", fmt.Errorf("bridge without a name")
	}
	if req.Callee == "" {
		return "", fmt.Errorf("bridge %s: missing callee", req.Name)
	}
	if _, dup := e.names[req.Name]; dup {
		return "", fmt.Errorf("bridge %s: already compiled", req.Name)
	}
	sig, err := bridgeSig(req)
	if err != nil {
		return "", fmt.Errorf("bridge %s: %w", req.Name, err)
	}
	if prev, ok := e.callees[req.Callee]; ok && !sameSig(prev, sig) {
		return "", fmt.Errorf("bridge %s: callee %q used with two signatures", req.Name, req.Callee)
	}
	e.callees[req.Callee] = sig
	e.names[req.Name] = struct{}{}
	e.count++
	e.emitBridge(req, sig)
	return backend.Handle(req.Name), nil
}

// Len reports how many bridges were compiled.
func (e *Emitter) Len() int { return e.count }

// Finish renders the module: preamble, runtime and callee declarations,
// then the bridges in compile order.
func (e *Emitter) Finish() (string, error) {
	var out strings.Builder
	if e.triple != "" {
		fmt.Fprintf(&out, "target triple = %q\n\n", e.triple)
	}
	for _, decl := range runtimeDecls() {
		fmt.Fprintf(&out, "declare %s @%s(%s)\n", decl.ret, decl.name, strings.Join(decl.params, ", "))
	}
	callees := make([]string, 0, len(e.callees))
	for name := range e.callees {
		callees = append(callees, name)
	}
	sort.Strings(callees)
	for _, name := range callees {
		sig := e.callees[name]
		fmt.Fprintf(&out, "declare %s %s(%s)\n", sig.ret, globalName(name), strings.Join(sig.params, ", "))
	}
	out.WriteString("\n")
	out.WriteString(e.buf.String())
	return out.String(), nil
}

func bridgeSig(req backend.Request) (funcSig, error) {
	sig := funcSig{params: make([]string, 0, len(req.Params)+1)}
	for _, p := range req.Params {
		ty, err := llvmType(p)
		if err != nil {
			return funcSig{}, err
		}
		sig.params = append(sig.params, ty)
	}
	ret, err := resultType(req.Result)
	if err != nil {
		return funcSig{}, err
	}
	sig.ret = ret
	if req.ResultSlot {
		sig.params = append(sig.params, "ptr")
	}
	return sig, nil
}

func (e *Emitter) emitBridge(req backend.Request, sig funcSig) {
	params := make([]string, len(sig.params))
	args := make([]string, len(sig.params))
	for i, ty := range sig.params {
		name := fmt.Sprintf("%%p%d", i)
		if req.ResultSlot && i == len(sig.params)-1 {
			name = "%slot"
		}
		params[i] = ty + " " + name
		args[i] = ty + " " + name
	}
	fmt.Fprintf(&e.buf, "define %s @%s(%s) {\nentry:\n", sig.ret, req.Name, strings.Join(params, ", "))

	callee := globalName(req.Callee)
	if req.Dispatch == backend.DispatchVirtual && len(args) > 0 {
		receiver := strings.TrimPrefix(args[0], "ptr ")
		fmt.Fprintf(&e.buf, "  %%impl = call ptr @LookupOpenMethod(ptr %s, ptr %s)\n", receiver, callee)
		callee = "%impl"
	}
	call := fmt.Sprintf("call %s %s(%s)", sig.ret, callee, strings.Join(args, ", "))
	switch {
	case sig.ret == "void":
		fmt.Fprintf(&e.buf, "  %s\n  ret void\n", call)
	case req.ResultSlot:
		fmt.Fprintf(&e.buf, "  %%r = %s\n  store ptr %%r, ptr %%slot\n  ret ptr %%r\n", call)
	default:
		fmt.Fprintf(&e.buf, "  %%r = %s\n  ret %s %%r\n", call, sig.ret)
	}
	e.buf.WriteString("}\n\n")
}

func sameSig(a, b funcSig) bool {
	if a.ret != b.ret || len(a.params) != len(b.params) {
		return false
	}
	for i := range a.params {
		if a.params[i] != b.params[i] {
			return false
		}
	}
	return true
}

// globalName quotes symbols that are not plain LLVM identifiers. Inside
// quotes every byte outside printable ASCII, the quote and the backslash are
// written as \XX.
func globalName(symbol string) string {
	plain := symbol != "" && (symbol[0] < '0' || symbol[0] > '9')
	for i := 0; plain && i < len(symbol); i++ {
		c := symbol[i]
		plain = c == '_' || c == '.' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}
	if plain {
		return "@" + symbol
	}
	var b strings.Builder
	b.Grow(len(symbol) + 3)
	b.WriteString(`@"`)
	for i := 0; i < len(symbol); i++ {
		c := symbol[i]
		if c < 0x20 || c > 0x7e || c == '"' || c == '\\' {
			fmt.Fprintf(&b, "\\%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}
