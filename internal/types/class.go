package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// ClassFlavor distinguishes the class-like declarations that share KindClass.
type ClassFlavor uint8

const (
	FlavorFinal ClassFlavor = iota
	FlavorOpen
	FlavorAbstract
	FlavorEnum
	FlavorObject
	FlavorInterface
	FlavorInline
	FlavorAnnotation
)

func (f ClassFlavor) String() string {
	switch f {
	case FlavorFinal:
		return "final"
	case FlavorOpen:
		return "open"
	case FlavorAbstract:
		return "abstract"
	case FlavorEnum:
		return "enum"
	case FlavorObject:
		return "object"
	case FlavorInterface:
		return "interface"
	case FlavorInline:
		return "inline"
	case FlavorAnnotation:
		return "annotation"
	default:
		return fmt.Sprintf("ClassFlavor(%d)", f)
	}
}

// ClassInfo stores the nominal identity of a class type.
type ClassInfo struct {
	FQName string
	Flavor ClassFlavor
}

// ShortName returns the last segment of the qualified name.
func (c ClassInfo) ShortName() string {
	if idx := strings.LastIndexByte(c.FQName, '.'); idx >= 0 {
		return c.FQName[idx+1:]
	}
	return c.FQName
}

// Class interns a nominal class type by fully qualified name. The first
// registration fixes the flavor; later calls return the same TypeID.
func (in *Interner) Class(fqName string, flavor ClassFlavor) TypeID {
	if id, ok := in.classIndex[fqName]; ok {
		return id
	}
	in.classes = append(in.classes, ClassInfo{FQName: fqName, Flavor: flavor})
	slot, err := safecast.Conv[uint32](len(in.classes) - 1)
	if err != nil {
		panic(fmt.Errorf("class info overflow: %w", err))
	}
	id := in.internRaw(Type{Kind: KindClass, Payload: slot})
	in.classIndex[fqName] = id
	return id
}

// LookupClass finds a previously registered class by qualified name.
func (in *Interner) LookupClass(fqName string) (TypeID, bool) {
	id, ok := in.classIndex[fqName]
	return id, ok
}

// ClassInfo returns nominal info for a class TypeID.
func (in *Interner) ClassInfo(id TypeID) (ClassInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass {
		return ClassInfo{}, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return ClassInfo{}, false
	}
	return in.classes[tt.Payload], true
}

// IsInlineClass reports whether id (or its nullable element) is an inline/value class.
func (in *Interner) IsInlineClass(id TypeID) bool {
	info, ok := in.ClassInfo(in.NonNull(id))
	return ok && info.Flavor == FlavorInline
}
