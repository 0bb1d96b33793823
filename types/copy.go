package types

import (
	"fmt"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
)

// Copy returns a structural copy of t. A type's owned children are copied;
// named types it merely refers to are shared unless o.Aliases already maps
// them to a copy. Structural types are registered in the alias map before
// their bodies are copied, so self references in the body resolve to the new
// type.
//
// Primitives and nil are shared. Sums are interned and cannot be copied.
func Copy(t Type, o *ast.CopyOptions) Type {
	if t == nil {
		return nil
	}
	o = withTypeCopier(o)
	if c, ok := ast.Lookup[Type](o.Aliases, t); ok {
		return c
	}
	var c Type
	switch t := t.(type) {
	case *Primitive, *Nil:
		return t
	case *Sum:
		fatalf(t, diag.UnsupportedVariant, "cannot copy sum type %s", t)
	case *Enum:
		n := &Enum{Common: newCommon()}
		for _, m := range t.Members {
			sym := m.Sym
			if o.Deep {
				sym = o.CloneSymbol(sym)
				sym.Type = n
			}
			n.appendMember(&EnumMember{Sym: sym, Explicit: m.Explicit})
		}
		c = n
	case *Domain:
		n := &Domain{Common: newCommon(), NumDims: t.NumDims}
		o.Aliases.Put(t, n)
		n.Parent = ast.CopyExpr(t.Parent, o)
		if t.Index != nil {
			n.Index = Copy(t.Index, o).(*Index)
			n.Index.Domain = n
		}
		n.defaultVal = ast.CopyExpr(t.defaultVal, o)
		c = n
	case *Index:
		n := NewIndex(child(t.Elem, o))
		if d, ok := ast.Lookup[*Domain](o.Aliases, t.Domain); ok {
			n.Domain = d
		} else {
			n.Domain = t.Domain
		}
		c = n
	case *Array:
		dom := t.Domain
		if dom != nil {
			dom = child(dom, o).(*Domain)
		}
		n := NewArray(dom, child(t.Elem, o))
		n.DomainExpr = ast.CopyExpr(t.DomainExpr, o)
		c = n
	case *User:
		c = NewUser(child(t.Definition, o), ast.CopyExpr(t.defaultVal, o))
	case *Like:
		c = NewLike(ast.CopyExpr(t.Expr, o))
	case *Tuple:
		n := &Tuple{Common: newCommon()}
		for _, comp := range t.Components {
			n.Components = append(n.Components, child(comp, o))
		}
		n.RebuildDefaultVal()
		c = n
	case *Variable:
		n := NewVariable(t.Name)
		n.Constraint = remap(t.Constraint, o)
		c = n
	case *Unresolved:
		c = NewUnresolved(t.Name)
	case *Class:
		n := NewClass()
		copyGuts(t, n, o)
		c = n
	case *Record:
		n := NewRecord()
		copyGuts(t, n, o)
		c = n
	case *Union:
		// The selector names the original union's fields; it is rebuilt
		// with BuildFieldSelector once the copy has a symbol.
		n := NewUnion()
		copyGuts(t, n, o)
		c = n
	case *Seq:
		n := NewSeq(child(t.Elem, o))
		copyGuts(t, n, o)
		c = n
	default:
		panic(fmt.Sprintf("unhandled type: %T", t))
	}
	c.common().At = t.common().At
	o.Record(t, c)
	return c
}

// child copies an owned child type. Named children are declared elsewhere and
// are only remapped.
func child(t Type, o *ast.CopyOptions) Type {
	if t == nil {
		return nil
	}
	if t.Symbol() != nil {
		return remap(t, o)
	}
	return Copy(t, o)
}

// remap resolves a referenced type through the alias map. An anonymous type
// that mentions a remapped type is rebuilt so the substitution reaches it.
func remap(t Type, o *ast.CopyOptions) Type {
	if t == nil {
		return nil
	}
	if c, ok := ast.Lookup[Type](o.Aliases, t); ok {
		return c
	}
	if t.Symbol() == nil && mentions(t, o.Aliases) {
		return Copy(t, o)
	}
	return t
}

func mentions(t Type, aliases *ast.AliasMap) bool {
	found := false
	Walk(t, &Traversal{
		ProcessTop:        false,
		ExploreChildTypes: true,
		Pre: func(u Type) {
			if _, ok := aliases.Get(u); ok {
				found = true
			}
		},
	})
	return found
}

func withTypeCopier(o *ast.CopyOptions) *ast.CopyOptions {
	if o == nil {
		o = &ast.CopyOptions{}
	}
	if o.Aliases != nil && o.CopyType != nil && o.RemapType != nil {
		return o
	}
	n := *o
	if n.Aliases == nil {
		n.Aliases = ast.NewAliasMap()
	}
	n.CopyType = func(t ast.Type) ast.Type { return Copy(t.(Type), &n) }
	n.RemapType = func(t ast.Type) ast.Type { return remap(t.(Type), &n) }
	return &n
}

// CopyDecls copies a declaration list with type-aware copying of the types
// the declarations own and refer to.
func CopyDecls(ds []ast.Decl, o *ast.CopyOptions) []ast.Decl {
	return ast.CopyDecls(ds, withTypeCopier(o))
}

// copyGuts copies the body of src into dst. Methods are shared between the
// two types; every other declaration is deep-copied, even under a shallow
// copy, so the fields of dst never alias the fields of src.
func copyGuts(src, dst Structural, o *ast.CopyOptions) {
	o.Aliases.Put(src, dst)
	s, d := src.Body(), dst.Body()
	if !o.Deep {
		deep := *o
		deep.Deep = true
		deep.CopyType, deep.RemapType = nil, nil
		o = withTypeCopier(&deep)
	}

	var others []ast.Decl
	for _, decl := range s.decls {
		if _, ok := decl.(*ast.FnDecl); !ok {
			others = append(others, decl)
		}
	}
	ast.Predeclare(others, o)

	decls := make([]ast.Decl, 0, len(s.decls))
	for _, decl := range s.decls {
		if fn, ok := decl.(*ast.FnDecl); ok {
			decls = append(decls, fn)
			continue
		}
		decls = append(decls, ast.CopyDecl(decl, o))
	}
	// splice, not AddDeclarations: shared methods keep their binding
	d.decls = decls
	d.derive()
	for _, decl := range d.decls {
		if _, ok := decl.(*ast.FnDecl); !ok {
			decl.SetOwner(d)
		}
	}

	var parent *ast.Env
	if s.Scope != nil {
		parent = s.Scope.Parent
	}
	d.Scope = ast.NewEnv(parent, ast.TypeScope)
	for _, decl := range d.decls {
		d.Scope.Add(decl.Symbol())
	}
	if _, ok := dst.(*Class); !ok {
		if _, ok := dst.(*Seq); !ok {
			d.defaultVal = ast.CopyExpr(s.defaultVal, o)
		}
	}
}
