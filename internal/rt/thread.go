package rt

import "fmt"

// ThreadState is the collector-visible state of a thread.
type ThreadState uint8

const (
	// StateNative means the thread runs foreign code and holds no managed
	// references outside stable pointers.
	StateNative ThreadState = iota
	// StateRunnable means the thread may touch the managed heap.
	StateRunnable
)

func (s ThreadState) String() string {
	if s == StateRunnable {
		return "runnable"
	}
	return "native"
}

// Frame is a fixed-size set of slots registered with the collector.
type Frame struct {
	slots  []Ref
	parent *Frame
	th     *Thread
}

// Len returns the slot count.
func (f *Frame) Len() int { return len(f.slots) }

// Set stores a reference in slot i.
func (f *Frame) Set(i int, ref Ref) {
	r := f.th.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(f.slots) {
		fail(ErrFrameMismatch, "slot %d out of range for frame of %d", i, len(f.slots))
	}
	f.slots[i] = ref
}

// Get loads slot i.
func (f *Frame) Get(i int) Ref {
	r := f.th.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(f.slots) {
		fail(ErrFrameMismatch, "slot %d out of range for frame of %d", i, len(f.slots))
	}
	return f.slots[i]
}

// Slot addresses one frame slot. Allocating entry points take a Slot and
// store the new reference under the same lock that creates it, so the
// collector never observes an unrooted object. The zero Slot roots nothing.
type Slot struct {
	frame *Frame
	index int
}

// Slot returns the address of slot i.
func (f *Frame) Slot(i int) Slot {
	if i < 0 || i >= len(f.slots) {
		fail(ErrFrameMismatch, "slot %d out of range for frame of %d", i, len(f.slots))
	}
	return Slot{frame: f, index: i}
}

// IsZero reports whether s roots nothing.
func (s Slot) IsZero() bool { return s.frame == nil }

// store writes ref into the slot. Callers hold Runtime.mu.
func (s Slot) store(ref Ref) {
	if s.frame != nil {
		s.frame.slots[s.index] = ref
	}
}

// Thread is the per-caller state: thread state and the frame chain. A
// Thread must be used by one goroutine at a time.
type Thread struct {
	rt      *Runtime
	state   ThreadState
	current *Frame
}

// NewThread attaches a caller thread to the runtime.
func (r *Runtime) NewThread() *Thread {
	th := &Thread{rt: r}
	r.mu.Lock()
	r.threads[th] = struct{}{}
	r.mu.Unlock()
	return th
}

// Detach removes the thread from the collector's root set.
func (th *Thread) Detach() {
	r := th.rt
	r.mu.Lock()
	delete(r.threads, th)
	r.mu.Unlock()
}

// Runtime returns the owning runtime.
func (th *Thread) Runtime() *Runtime { return th.rt }

// State returns the current thread state.
func (th *Thread) State() ThreadState { return th.state }

// SwitchRunnable enters the runnable state and returns the function that
// restores the previous state. Adapters defer the restore so every exit path
// runs it.
func (th *Thread) SwitchRunnable() func() {
	prev := th.state
	th.state = StateRunnable
	return func() { th.state = prev }
}

// EnterFrame pushes a frame with n null slots.
func (th *Thread) EnterFrame(n int) *Frame {
	th.requireRunnable("EnterFrame")
	r := th.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &Frame{slots: make([]Ref, n), parent: th.current, th: th}
	th.current = f
	return f
}

// LeaveFrame pops f, which must be the current frame.
func (th *Thread) LeaveFrame(f *Frame) {
	r := th.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	if th.current != f {
		fail(ErrFrameMismatch, "leaving a frame that is not current")
	}
	th.current = f.parent
}

// CurrentFrame returns the innermost frame, nil outside managed calls.
func (th *Thread) CurrentFrame() *Frame {
	r := th.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	return th.current
}

// SetCurrentFrame restores a saved frame pointer after an exception.
func (th *Thread) SetCurrentFrame(f *Frame) {
	r := th.rt
	r.mu.Lock()
	defer r.mu.Unlock()
	th.current = f
}

// Depth returns the number of frames on the chain.
func (th *Thread) Depth() int {
	n := 0
	for f := th.CurrentFrame(); f != nil; f = f.parent {
		n++
	}
	return n
}

// Call invokes a managed callee from inside a runnable adapter. The callee
// allocates its result into result; a returned reference is stored there
// again before Call returns.
func (th *Thread) Call(symbol string, args []Value, virtual bool, result Slot) Value {
	th.requireRunnable(symbol)
	var receiver Ref
	if virtual {
		if len(args) == 0 || args[0].Kind != VKRef {
			fail(ErrTypeMismatch, "virtual call to %s without a receiver", symbol)
		}
		receiver = args[0].Ref
	}
	m := th.rt.lookupMethod(symbol, receiver, virtual)
	res := m(th, args, result)
	if res.Kind == VKRef && !result.IsZero() {
		r := th.rt
		r.mu.Lock()
		if res.Ref != 0 {
			r.heap.get(res.Ref)
		}
		result.store(res.Ref)
		r.mu.Unlock()
	}
	return res
}

func (th *Thread) requireRunnable(what string) {
	if th.state != StateRunnable {
		fail(ErrWrongThreadState, "%s called in %s state", what, th.state)
	}
}

func (th *Thread) String() string {
	return fmt.Sprintf("rt.Thread{state=%s depth=%d}", th.state, th.Depth())
}
