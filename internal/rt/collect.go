package rt

// Collect frees every object not reachable from a root: stable pointers,
// frame slots of attached threads, globals and the unit singleton. It
// returns the number of objects freed.
func (r *Runtime) Collect() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	marked := make(map[Ref]struct{}, len(r.heap.objs))
	var work []Ref
	push := func(ref Ref) {
		if ref == 0 {
			return
		}
		if _, ok := marked[ref]; ok {
			return
		}
		marked[ref] = struct{}{}
		work = append(work, ref)
	}
	push(r.unit)
	for _, ref := range r.stable {
		push(ref)
	}
	for _, ref := range r.globals {
		push(ref)
	}
	for th := range r.threads {
		for f := th.current; f != nil; f = f.parent {
			for _, ref := range f.slots {
				push(ref)
			}
		}
	}
	for len(work) > 0 {
		ref := work[len(work)-1]
		work = work[:len(work)-1]
		obj, ok := r.heap.objs[ref]
		if !ok {
			continue
		}
		for _, v := range obj.Fields {
			if v.Kind == VKRef {
				push(v.Ref)
			}
		}
	}
	freed := 0
	for ref, obj := range r.heap.objs {
		if !obj.Alive {
			continue
		}
		if _, ok := marked[ref]; !ok {
			r.heap.free(ref)
			freed++
		}
	}
	return freed
}
