package types

import (
	"fmt"

	"fortio.org/safecast"
)

// BuiltinPackage is the package that owns the boxed forms of primitives and Any.
const BuiltinPackage = "lang"

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid   TypeID
	Unit      TypeID
	Nothing   TypeID
	Bool      TypeID
	Char      TypeID
	Byte      TypeID
	Short     TypeID
	Int       TypeID
	Long      TypeID
	UByte     TypeID
	UShort    TypeID
	UInt      TypeID
	ULong     TypeID
	Float     TypeID
	Double    TypeID
	Vector128 TypeID
	String    TypeID
	Any       TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types      []Type
	index      map[typeKey]TypeID
	builtins   Builtins
	classes    []ClassInfo
	classIndex map[string]TypeID
	names      []string
	paramIndex map[string]TypeID
	unresIndex map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[typeKey]TypeID, 64),
		classIndex: make(map[string]TypeID, 32),
		paramIndex: make(map[string]TypeID),
		unresIndex: make(map[string]TypeID),
	}
	in.classes = append(in.classes, ClassInfo{}) // reserve 0 as invalid sentinel
	in.names = append(in.names, "")
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Nothing = in.Intern(Type{Kind: KindNothing})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar, Width: Width16})
	in.builtins.Byte = in.Intern(MakeInt(Width8))
	in.builtins.Short = in.Intern(MakeInt(Width16))
	in.builtins.Int = in.Intern(MakeInt(Width32))
	in.builtins.Long = in.Intern(MakeInt(Width64))
	in.builtins.UByte = in.Intern(MakeUint(Width8))
	in.builtins.UShort = in.Intern(MakeUint(Width16))
	in.builtins.UInt = in.Intern(MakeUint(Width32))
	in.builtins.ULong = in.Intern(MakeUint(Width64))
	in.builtins.Float = in.Intern(MakeFloat(Width32))
	in.builtins.Double = in.Intern(MakeFloat(Width64))
	in.builtins.Vector128 = in.Intern(Type{Kind: KindVector128})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Any = in.Class(BuiltinPackage+".Any", FlavorOpen)
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Errorf("types: invalid TypeID %d", id))
	}
	return tt
}

// Nullable returns T? for id. Nullable of a nullable collapses.
func (in *Interner) Nullable(id TypeID) TypeID {
	tt := in.MustLookup(id)
	if tt.Kind == KindNullable {
		return id
	}
	return in.Intern(MakeNullable(id))
}

// NonNull strips one nullable layer.
func (in *Interner) NonNull(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if ok && tt.Kind == KindNullable {
		return tt.Elem
	}
	return id
}

// TypeParam interns a reference to a type parameter by name.
func (in *Interner) TypeParam(name string) TypeID {
	if id, ok := in.paramIndex[name]; ok {
		return id
	}
	id := in.internRaw(Type{Kind: KindTypeParam, Payload: in.appendName(name)})
	in.paramIndex[name] = id
	return id
}

// Unresolved interns a type expression that the front-end could not resolve.
func (in *Interner) Unresolved(text string) TypeID {
	if id, ok := in.unresIndex[text]; ok {
		return id
	}
	id := in.internRaw(Type{Kind: KindUnresolved, Payload: in.appendName(text)})
	in.unresIndex[text] = id
	return id
}

// Name returns the spelled name of a type parameter or unresolved type.
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindTypeParam && tt.Kind != KindUnresolved) {
		return ""
	}
	if int(tt.Payload) >= len(in.names) {
		return ""
	}
	return in.names[tt.Payload]
}

// IsErased reports whether id (or its nullable element) cannot appear in an
// exported signature: type parameters and unresolved references.
func (in *Interner) IsErased(id TypeID) bool {
	tt, ok := in.Lookup(in.NonNull(id))
	if !ok {
		return true
	}
	return tt.Kind == KindTypeParam || tt.Kind == KindUnresolved
}

func (in *Interner) appendName(name string) uint32 {
	in.names = append(in.names, name)
	slot, err := safecast.Conv[uint32](len(in.names) - 1)
	if err != nil {
		panic(fmt.Errorf("type name overflow: %w", err))
	}
	return slot
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Width   Width
	Payload uint32
}
