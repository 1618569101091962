// Package backend is the narrow interface to native code generation: given
// one bridge request it produces a callable entry point.
package backend

import "bridgegen/internal/cabi"

// Handle identifies a compiled bridge. It is the bridge's linkage name.
type Handle string

// Dispatch selects how the bridge reaches the managed callee.
type Dispatch uint8

const (
	// DispatchDirect calls the callee symbol.
	DispatchDirect Dispatch = iota
	// DispatchVirtual looks the callee up in the receiver's method table.
	DispatchVirtual
)

func (d Dispatch) String() string {
	if d == DispatchVirtual {
		return "virtual"
	}
	return "direct"
}

// Value describes one bridge parameter or result.
type Value struct {
	Name     string
	Category cabi.Category
	// CType is the bridge-level C spelling.
	CType string
	// Primitive is the boxed class short name of primitive values.
	Primitive string
}

// Request asks for one bridge.
type Request struct {
	Name   string
	Callee string
	Params []Value
	Result Value
	// ResultSlot adds a trailing out-parameter for reference-bearing results.
	ResultSlot bool
	Dispatch   Dispatch
}

// Backend compiles bridges. Implementations may buffer output until Finish.
type Backend interface {
	Compile(req Request) (Handle, error)
}

// Artifact is implemented by backends that produce a text artifact.
type Artifact interface {
	Backend
	// Finish returns the accumulated artifact.
	Finish() (string, error)
}

// Recorder is a Backend that only remembers requests.
type Recorder struct {
	Requests []Request
}

func (r *Recorder) Compile(req Request) (Handle, error) {
	r.Requests = append(r.Requests, req)
	return Handle(req.Name), nil
}
