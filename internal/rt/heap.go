package rt

// ObjectKind distinguishes heap object shapes.
type ObjectKind uint8

const (
	OKInstance ObjectKind = iota
	OKString
	OKBox
	OKUnit
)

// Object is one managed heap object.
type Object struct {
	Kind    ObjectKind
	Class   string
	Str     string
	Box     Value
	Fields  map[string]Value
	Alive   bool
	AllocID uint64
}

// heap stores managed objects. Refs are monotonically increasing and never
// reused within a run. Callers hold Runtime.mu.
type heap struct {
	next        Ref
	nextAllocID uint64
	objs        map[Ref]*Object
}

func (h *heap) initIfNeeded() {
	if h.objs == nil {
		h.objs = make(map[Ref]*Object, 128)
	}
	if h.next == 0 {
		h.next = 1
	}
	if h.nextAllocID == 0 {
		h.nextAllocID = 1
	}
}

func (h *heap) alloc(kind ObjectKind, class string) (Ref, *Object) {
	h.initIfNeeded()
	ref := h.next
	h.next++
	obj := &Object{
		Kind:    kind,
		Class:   class,
		Alive:   true,
		AllocID: h.nextAllocID,
	}
	h.nextAllocID++
	h.objs[ref] = obj
	return ref, obj
}

func (h *heap) get(ref Ref) *Object {
	h.initIfNeeded()
	if ref == 0 {
		fail(ErrUseAfterFree, "null reference")
	}
	obj, ok := h.objs[ref]
	if !ok || obj == nil {
		fail(ErrUseAfterFree, "invalid reference %d", ref)
	}
	if !obj.Alive {
		fail(ErrUseAfterFree, "use after collect: reference %d (alloc=%d)", ref, obj.AllocID)
	}
	return obj
}

func (h *heap) free(ref Ref) {
	obj, ok := h.objs[ref]
	if !ok || !obj.Alive {
		return
	}
	obj.Alive = false
	obj.Str = ""
	obj.Fields = nil
}

func (h *heap) live() int {
	n := 0
	for _, obj := range h.objs {
		if obj.Alive {
			n++
		}
	}
	return n
}
