package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Graph loading
	GraphInfo           Code = 1000
	GraphUnresolvedType Code = 1001
	GraphBadTypeExpr    Code = 1002
	GraphBadDeclKind    Code = 1003
	GraphMissingName    Code = 1004
	GraphDuplicateClass Code = 1005
	GraphMisplacedDecl  Code = 1006
	GraphBadModifier    Code = 1007

	// Export scope construction
	ExportInfo          Code = 3000
	ExportInlineClass   Code = 3001
	ExportErasedType    Code = 3002
	ExportNameCollision Code = 3003
	ExportReservedName  Code = 3004
)

var codeDescription = map[Code]string{
	UnknownCode:         "Unknown error",
	GraphInfo:           "Graph information",
	GraphUnresolvedType: "Unresolved type reference",
	GraphBadTypeExpr:    "Malformed type expression",
	GraphBadDeclKind:    "Unknown declaration kind",
	GraphMissingName:    "Declaration without a name",
	GraphDuplicateClass: "Duplicate class declaration",
	GraphMisplacedDecl:  "Declaration not allowed here",
	GraphBadModifier:    "Unknown modifier",
	ExportInfo:          "Export information",
	ExportInlineClass:   "Inline class is not exported yet",
	ExportErasedType:    "Signature mentions an erased type",
	ExportNameCollision: "Exported name was suffixed to stay unique",
	ExportReservedName:  "External name is reserved for generated symbols",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("GRF%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EXP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
