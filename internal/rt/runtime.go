package rt

import "sync"

// Method is a compiled managed callable. Arguments are managed-side values
// (VKPrim, VKRef); for members the receiver comes first. A method that
// returns a reference allocates it into result. A method raises a managed
// exception with Thread.Throw.
type Method func(th *Thread, args []Value, result Slot) Value

// Class describes a managed class for type checks and virtual dispatch.
type Class struct {
	FQName string
	Super  string
}

// Stats counts boundary conversions performed by adapters.
type Stats struct {
	StringsIn      int
	StringsOut     int
	Derefs         int
	StablePointers int
	Allocations    int
	Boxes          int
	Escapes        int
}

// ReferenceMarshaling is the number of conversions that touched the heap
// or the stable pointer table.
func (s Stats) ReferenceMarshaling() int {
	return s.StringsIn + s.StringsOut + s.Derefs + s.StablePointers + s.Boxes
}

// Runtime is one managed runtime instance. The heap, stable pointer table,
// globals and registered code are guarded by mu; every critical section is
// short so concurrent adapter calls do not serialize on each other.
type Runtime struct {
	mu          sync.Mutex
	initialized bool
	heap        heap
	stable      map[StablePtr]Ref
	nextStable  StablePtr
	unit        Ref
	globals     map[string]Ref
	globalClass map[string]string
	methods     map[string]Method
	overrides   map[string]map[string]Method
	classes     map[string]Class
	threads     map[*Thread]struct{}
	policy      EscapePolicy
	stats       Stats
}

// New returns an uninitialized runtime that aborts on escaped exceptions.
func New() *Runtime {
	return &Runtime{
		stable:      make(map[StablePtr]Ref),
		globals:     make(map[string]Ref),
		globalClass: make(map[string]string),
		methods:     make(map[string]Method),
		overrides:   make(map[string]map[string]Method),
		classes:     make(map[string]Class),
		threads:     make(map[*Thread]struct{}),
		policy:      AbortPolicy{},
	}
}

// InitIfNeeded brings the runtime up once. Later calls are no-ops.
func (r *Runtime) InitIfNeeded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return
	}
	r.unit, _ = r.heap.alloc(OKUnit, "lang.Unit")
	r.initialized = true
}

// Initialized reports whether InitIfNeeded ran.
func (r *Runtime) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// SetPolicy replaces the escape policy.
func (r *Runtime) SetPolicy(p EscapePolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy = p
}

// Policy returns the escape policy.
func (r *Runtime) Policy() EscapePolicy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.policy
}

// Stats returns a snapshot of the conversion counters.
func (r *Runtime) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// RegisterClass declares a class and its superclass for type checks.
func (r *Runtime) RegisterClass(fqName, super string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[fqName] = Class{FQName: fqName, Super: super}
}

// RegisterMethod binds a callee symbol to its implementation.
func (r *Runtime) RegisterMethod(symbol string, m Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[symbol] = m
}

// RegisterOverride binds the implementation of symbol used when the
// receiver's class is class.
func (r *Runtime) RegisterOverride(class, symbol string, m Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tbl := r.overrides[class]
	if tbl == nil {
		tbl = make(map[string]Method)
		r.overrides[class] = tbl
	}
	tbl[symbol] = m
}

// RegisterGlobal declares an object singleton or enum entry. The instance is
// allocated lazily on first access.
func (r *Runtime) RegisterGlobal(symbol, class string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globalClass[symbol] = class
}

// Unit returns the unit singleton.
func (r *Runtime) Unit() Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireInit()
	return r.unit
}

// Global returns the instance behind an object or enum entry symbol.
func (r *Runtime) Global(symbol string) Ref {
	return r.GlobalInto(symbol, Slot{})
}

// GlobalInto is Global that also stores the instance into dst.
func (r *Runtime) GlobalInto(symbol string, dst Slot) Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireInit()
	ref, ok := r.globals[symbol]
	if !ok {
		class, known := r.globalClass[symbol]
		if !known {
			fail(ErrMissingMethod, "unknown global %q", symbol)
		}
		ref, _ = r.heap.alloc(OKInstance, class)
		r.globals[symbol] = ref
	}
	dst.store(ref)
	return ref
}

// AllocInstance allocates a zero-initialized instance of class.
func (r *Runtime) AllocInstance(class string) Ref {
	return r.AllocInstanceInto(class, Slot{})
}

// AllocInstanceInto allocates an instance of class rooted in dst.
func (r *Runtime) AllocInstanceInto(class string, dst Slot) Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requireInit()
	ref, obj := r.heap.alloc(OKInstance, class)
	obj.Fields = make(map[string]Value)
	r.stats.Allocations++
	dst.store(ref)
	return ref
}

// Object returns the live object behind ref.
func (r *Runtime) Object(ref Ref) *Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.get(ref)
}

// ClassOf returns the class name of a live reference.
func (r *Runtime) ClassOf(ref Ref) string {
	return r.Object(ref).Class
}

// SetField stores a field of an instance.
func (r *Runtime) SetField(ref Ref, name string, v Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.heap.get(ref)
	if obj.Fields == nil {
		obj.Fields = make(map[string]Value)
	}
	obj.Fields[name] = v
}

// Field loads a field of an instance.
func (r *Runtime) Field(ref Ref, name string) Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.get(ref).Fields[name]
}

// NewString allocates a managed string.
func (r *Runtime) NewString(s string) Ref {
	return r.NewStringInto(s, Slot{})
}

// NewStringInto allocates a managed string rooted in dst.
func (r *Runtime) NewStringInto(s string, dst Slot) Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newString(s, dst)
}

func (r *Runtime) newString(s string, dst Slot) Ref {
	r.requireInit()
	ref, obj := r.heap.alloc(OKString, "lang.String")
	obj.Str = s
	dst.store(ref)
	return ref
}

// StringOf returns the contents of a managed string.
func (r *Runtime) StringOf(ref Ref) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj := r.heap.get(ref)
	if obj.Kind != OKString {
		fail(ErrTypeMismatch, "reference %d is %s, not a string", ref, obj.Class)
	}
	return obj.Str
}

// IsSubclass reports whether class equals or inherits from target.
func (r *Runtime) IsSubclass(class, target string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isSubclass(class, target)
}

func (r *Runtime) isSubclass(class, target string) bool {
	if target == "lang.Any" {
		return true
	}
	seen := make(map[string]struct{}, 4)
	for class != "" {
		if class == target {
			return true
		}
		if _, loop := seen[class]; loop {
			return false
		}
		seen[class] = struct{}{}
		class = r.classes[class].Super
	}
	return false
}

// Live reports how many heap objects are alive.
func (r *Runtime) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.live()
}

func (r *Runtime) requireInit() {
	if !r.initialized {
		fail(ErrNotInitialized, "runtime used before initialization")
	}
}

// lookupMethod resolves symbol, preferring an override registered on the
// receiver's class or its nearest superclass when virtual is set.
func (r *Runtime) lookupMethod(symbol string, receiver Ref, virtual bool) Method {
	r.mu.Lock()
	defer r.mu.Unlock()
	if virtual && receiver != 0 {
		class := r.heap.get(receiver).Class
		seen := make(map[string]struct{}, 4)
		for class != "" {
			if m, ok := r.overrides[class][symbol]; ok {
				return m
			}
			if _, loop := seen[class]; loop {
				break
			}
			seen[class] = struct{}{}
			class = r.classes[class].Super
		}
	}
	m, ok := r.methods[symbol]
	if !ok {
		fail(ErrMissingMethod, "no implementation for %q", symbol)
	}
	return m
}
