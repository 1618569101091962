package llvm

type builtinDecl struct {
	name   string
	ret    string
	params []string
}

// runtimeDecls lists the runtime entry points bridges may call.
func runtimeDecls() []builtinDecl {
	return []builtinDecl{
		{name: "LookupOpenMethod", ret: "ptr", params: []string{"ptr", "ptr"}},
	}
}
