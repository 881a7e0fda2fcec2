package ast

import "tapecc/pkg/ctypes"

// Declarator is a syntactic carrier that, composed with a base type,
// yields (type, optional name). Exactly one named leaf exists in any
// concrete declarator.
type Declarator interface {
	declaratorNode()
}

// Abstract is a declarator with no name (e.g. a cast target or an
// unnamed function parameter).
type Abstract struct{}

// Named is a declarator naming a single identifier.
type Named struct {
	Name string
}

// Deref wraps a declarator behind N levels of pointer indirection.
type Deref struct {
	Levels int
	Base   Declarator
}

// ParamDecl is one parameter of a Call declarator: a base type plus the
// declarator that names (or abstractly shapes) it.
type ParamDecl struct {
	Type       ctypes.Type
	Declarator Declarator
}

// Call marks Base as a function taking Params.
type Call struct {
	Base   Declarator
	Params []ParamDecl
}

// Index marks Base as an array of a compile-time constant Extent.
type Index struct {
	Base   Declarator
	Extent int
}

// Unsized marks Base as an array of unknown extent; it decays to a
// pointer at the declarator stage, including when a
// non-foldable variable-length extent forces the same decay.
type Unsized struct {
	Base Declarator
}

func (Abstract) declaratorNode() {}
func (Named) declaratorNode()    {}
func (Deref) declaratorNode()    {}
func (Call) declaratorNode()     {}
func (Index) declaratorNode()    {}
func (Unsized) declaratorNode()  {}

// Name walks to the declarator's single named leaf, if any.
func Name(d Declarator) (string, bool) {
	switch n := d.(type) {
	case Abstract:
		return "", false
	case Named:
		return n.Name, true
	case Deref:
		return Name(n.Base)
	case Call:
		return Name(n.Base)
	case Index:
		return Name(n.Base)
	case Unsized:
		return Name(n.Base)
	default:
		return "", false
	}
}

// SetName rewrites the declarator's named leaf to ident, turning an
// Abstract leaf into a Named one.
func SetName(d Declarator, ident string) Declarator {
	switch n := d.(type) {
	case Abstract:
		return Named{Name: ident}
	case Named:
		return Named{Name: ident}
	case Deref:
		n.Base = SetName(n.Base, ident)
		return n
	case Call:
		n.Base = SetName(n.Base, ident)
		return n
	case Index:
		n.Base = SetName(n.Base, ident)
		return n
	case Unsized:
		n.Base = SetName(n.Base, ident)
		return n
	default:
		return d
	}
}

// SetType composes d around base, producing the declarator's full type.
// A non-foldable Index extent has already been demoted to Unsized by
// the parser, so VLA decay is handled before SetType ever
// sees it.
func SetType(d Declarator, base ctypes.Type) ctypes.Type {
	switch n := d.(type) {
	case Abstract:
		return base
	case Named:
		return base
	case Deref:
		t := base
		for i := 0; i < n.Levels; i++ {
			t = t.Pointer()
		}
		return SetType(n.Base, t)
	case Unsized:
		return SetType(n.Base, base.Pointer())
	case Call:
		params := make([]ctypes.Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = SetType(p.Declarator, p.Type)
		}
		return SetType(n.Base, ctypes.FunctionOf(params, base))
	case Index:
		return SetType(n.Base, ctypes.ArrayOf(n.Extent, base))
	default:
		return base
	}
}
