package rt

import (
	"errors"
	"fmt"
	"sync"
)

// ErrEscapedException is returned by AbortPolicy.
var ErrEscapedException = errors.New("managed exception escaped to the native boundary")

// Exception is a managed exception in flight.
type Exception struct {
	Class   string
	Message string
}

func (e *Exception) Error() string {
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Throw raises a managed exception from inside a Method.
func (th *Thread) Throw(class, msg string) {
	panic(&Exception{Class: class, Message: msg})
}

// EscapePolicy decides what happens when a managed exception reaches an
// adapter boundary. The adapter has already restored the frame chain.
type EscapePolicy interface {
	Escaped(th *Thread, exc *Exception) error
}

// AbortPolicy turns every escape into ErrEscapedException, the model of a
// runtime that terminates the process.
type AbortPolicy struct{}

func (AbortPolicy) Escaped(_ *Thread, exc *Exception) error {
	return fmt.Errorf("%w: %s", ErrEscapedException, exc)
}

// RecordPolicy remembers escapes and lets the adapter return a zero value.
type RecordPolicy struct {
	mu      sync.Mutex
	escapes []*Exception
}

func (p *RecordPolicy) Escaped(_ *Thread, exc *Exception) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.escapes = append(p.escapes, exc)
	return nil
}

// Escapes returns the recorded exceptions.
func (p *RecordPolicy) Escapes() []*Exception {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Exception, len(p.escapes))
	copy(out, p.escapes)
	return out
}

// HandleEscape runs the policy for an exception caught at a boundary.
func (th *Thread) HandleEscape(exc *Exception) error {
	r := th.rt
	r.mu.Lock()
	r.stats.Escapes++
	policy := r.policy
	r.mu.Unlock()
	if policy == nil {
		policy = AbortPolicy{}
	}
	return policy.Escaped(th, exc)
}
