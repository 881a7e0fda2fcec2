package ast

import "tapecc/pkg/ctypes"

// Param is one parameter of a function definition: its type and,
// unless abstract, its name.
type Param struct {
	Name string
	Type ctypes.Type
}

// FuncDef is a function name mapped to (return type, parameters, body)
//.
type FuncDef struct {
	Return ctypes.Type
	Params []Param
	Body   Stmt
}

// VarDef is a global variable name mapped to (static flag, type,
// optional initializer). A definition (non-nil
// Init) supersedes a prior bare declaration; the static flag is sticky
// once set.
type VarDef struct {
	Static bool
	Type   ctypes.Type
	Init   Expr // nil for a declaration without an initializer
}

// Program aggregates every top-level function and global variable.
// Order lists globals in source declaration order, the order their
// initializers must run in.
type Program struct {
	Funcs   map[string]FuncDef
	Globals map[string]VarDef
	Order   []string
}

// NewProgram returns an empty Program ready for incremental assembly by
// the parser.
func NewProgram() *Program {
	return &Program{
		Funcs:   make(map[string]FuncDef),
		Globals: make(map[string]VarDef),
	}
}

// AddFunc records a function definition. Multiple declarations of the
// same name must agree, so a later
// definition simply replaces an earlier bare declaration (the parser is
// responsible for rejecting incompatible re-declarations before this
// point; Program itself does not type-check).
func (p *Program) AddFunc(name string, def FuncDef) {
	p.Funcs[name] = def
}

// AddGlobal records a global variable. If this occurrence carries an
// initializer, name is appended to Order (once) and the static flag is
// latched if either occurrence set it.
func (p *Program) AddGlobal(name string, def VarDef) {
	if existing, ok := p.Globals[name]; ok {
		if def.Init == nil {
			// A plain re-declaration never overwrites an existing
			// definition or an already-sticky static flag.
			def.Init = existing.Init
			def.Static = def.Static || existing.Static
			if existing.Init != nil {
				p.Globals[name] = def
				return
			}
		} else {
			def.Static = def.Static || existing.Static
		}
	}

	if def.Init != nil {
		alreadyOrdered := false
		for _, n := range p.Order {
			if n == name {
				alreadyOrdered = true
				break
			}
		}
		if !alreadyOrdered {
			p.Order = append(p.Order, name)
		}
	}

	p.Globals[name] = def
}
