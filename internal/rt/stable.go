package rt

// CreateStablePointer pins ref and returns a native handle for it.
// A null reference yields a null pointer.
func (r *Runtime) CreateStablePointer(ref Ref) StablePtr {
	if ref == 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heap.get(ref)
	r.nextStable++
	p := r.nextStable
	r.stable[p] = ref
	r.stats.StablePointers++
	return p
}

// DerefStablePointer returns the pinned reference. Null maps to null.
func (r *Runtime) DerefStablePointer(p StablePtr) Ref {
	return r.DerefStablePointerInto(p, Slot{})
}

// DerefStablePointerInto is DerefStablePointer that also stores the
// reference into dst, keeping it reachable after the pointer is disposed.
func (r *Runtime) DerefStablePointerInto(p StablePtr, dst Slot) Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == 0 {
		dst.store(0)
		return 0
	}
	ref, ok := r.stable[p]
	if !ok {
		fail(ErrInvalidStablePointer, "invalid stable pointer %d", p)
	}
	r.heap.get(ref)
	r.stats.Derefs++
	dst.store(ref)
	return ref
}

// DisposeStablePointer unpins p. Disposing null is a no-op.
func (r *Runtime) DisposeStablePointer(p StablePtr) {
	if p == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stable[p]; !ok {
		fail(ErrInvalidStablePointer, "double dispose of stable pointer %d", p)
	}
	delete(r.stable, p)
}

// Pinned reports how many stable pointers are alive.
func (r *Runtime) Pinned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stable)
}

// StringFromCString copies a native string into a fresh managed string.
// NULL maps to a null reference.
func (r *Runtime) StringFromCString(v Value) Ref {
	return r.StringFromCStringInto(v, Slot{})
}

// StringFromCStringInto is StringFromCString rooted in dst.
func (r *Runtime) StringFromCStringInto(v Value, dst Slot) Ref {
	if v.Kind != VKCString {
		fail(ErrTypeMismatch, "expected a C string, got %s", v.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Null {
		dst.store(0)
		return 0
	}
	r.stats.StringsIn++
	return r.newString(v.Str, dst)
}

// CStringFromString copies a managed string into a fresh native buffer.
// A null reference maps to NULL.
func (r *Runtime) CStringFromString(ref Ref) Value {
	if ref == 0 {
		return NullCString()
	}
	s := r.StringOf(ref)
	r.mu.Lock()
	r.stats.StringsOut++
	r.mu.Unlock()
	return CString(s)
}

// IsInstance reports whether the object behind p is an instance of class.
func (r *Runtime) IsInstance(p StablePtr, class string) bool {
	ref := r.DerefStablePointer(p)
	if ref == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isSubclass(r.heap.get(ref).Class, class)
}

// Box wraps a primitive into a managed box of the given boxed class short
// name (Int, Boolean, ...).
func (r *Runtime) Box(primitive string, v Value) Ref {
	return r.BoxInto(primitive, v, Slot{})
}

// BoxInto is Box rooted in dst.
func (r *Runtime) BoxInto(primitive string, v Value, dst Slot) Ref {
	if v.Kind != VKPrim {
		fail(ErrTypeMismatch, "cannot box %s", v.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireInit()
	ref, obj := r.heap.alloc(OKBox, "lang."+primitive)
	obj.Box = v
	r.stats.Boxes++
	dst.store(ref)
	return ref
}

// Unbox returns the primitive stored in a box.
func (r *Runtime) Unbox(ref Ref) Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.heap.get(ref)
	if obj.Kind != OKBox {
		fail(ErrTypeMismatch, "reference %d is %s, not a box", ref, obj.Class)
	}
	r.stats.Boxes++
	return obj.Box
}
