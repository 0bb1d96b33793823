package types

import (
	"fmt"

	"github.com/smasher164/ctype/ast"
)

// Traversal visits a type and the types inside it. A type is explored in
// definition mode at its declaration (the root of a walk, or a nested type
// declaration) and in use mode everywhere else. Use mode only explores
// anonymous types, so every named type is explored once, where it is
// declared, and recursive types terminate.
//
// Pre and Post run around each visited type. They are skipped for the root
// unless ProcessTop is set. Without ExploreChildTypes only the root is
// explored.
type Traversal struct {
	ProcessTop        bool
	ExploreChildTypes bool
	Pre               func(Type)
	Post              func(Type)
	// Decl, if set, is called for each declaration in an explored body.
	Decl func(ast.Decl)
}

// Walk traverses t in definition mode.
func Walk(t Type, tr *Traversal) {
	tr.visit(t, true, true)
}

// WalkDecls traverses the types of a declaration list: declared types in
// definition mode and the types of variables in use mode.
func WalkDecls(ds []ast.Decl, tr *Traversal) {
	for _, d := range ds {
		tr.decl(d)
	}
}

func (tr *Traversal) visit(t Type, top bool, def bool) {
	if t == nil {
		return
	}
	hooks := tr.ProcessTop || !top
	if hooks && tr.Pre != nil {
		tr.Pre(t)
	}
	if def || (tr.ExploreChildTypes && t.Symbol() == nil) {
		tr.children(t)
	}
	if hooks && tr.Post != nil {
		tr.Post(t)
	}
}

func (tr *Traversal) child(t Type) {
	if !tr.ExploreChildTypes || t == nil {
		return
	}
	tr.visit(t, false, false)
}

func (tr *Traversal) decl(d ast.Decl) {
	if tr.Decl != nil {
		tr.Decl(d)
	}
	switch d := d.(type) {
	case *ast.TypeDecl:
		if tr.ExploreChildTypes && d.Sym.Type != nil {
			tr.visit(d.Sym.Type.(Type), false, true)
		}
	case *ast.VarDecl:
		if d.Sym.Type != nil {
			tr.child(d.Sym.Type.(Type))
		}
	case *ast.FnDecl:
	default:
		panic(fmt.Sprintf("unhandled decl: %T", d))
	}
}

func (tr *Traversal) children(t Type) {
	switch t := t.(type) {
	case *Primitive, *Enum, *Like, *Variable, *Unresolved, *Nil:
	case *Domain:
		if t.Index != nil {
			tr.child(t.Index)
		}
	case *Index:
		tr.child(t.Elem)
	case *Array:
		if t.Domain != nil {
			tr.child(t.Domain)
		}
		tr.child(t.Elem)
	case *User:
		tr.child(t.Definition)
	case *Tuple:
		for _, c := range t.Components {
			tr.child(c)
		}
	case *Sum:
		for _, c := range t.Components {
			tr.child(c)
		}
	case *Seq:
		tr.child(t.Elem)
		WalkDecls(t.decls, tr)
	case *Union:
		if t.Selector != nil {
			tr.child(t.Selector)
		}
		WalkDecls(t.decls, tr)
	case Structural:
		WalkDecls(t.Body().decls, tr)
	default:
		panic(fmt.Sprintf("unhandled type: %T", t))
	}
}
