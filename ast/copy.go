package ast

import "fmt"

// AliasMap records, for one copy operation, which node each original was
// copied to. Keys are compared by identity.
type AliasMap struct {
	m map[any]any
}

func NewAliasMap() *AliasMap {
	return &AliasMap{m: make(map[any]any)}
}

func (a *AliasMap) Put(orig, copy any) {
	a.m[orig] = copy
}

func (a *AliasMap) Get(orig any) (any, bool) {
	if a == nil {
		return nil, false
	}
	c, ok := a.m[orig]
	return c, ok
}

func (a *AliasMap) Len() int {
	if a == nil {
		return 0
	}
	return len(a.m)
}

// Lookup returns the copy recorded for orig, if it has type T.
func Lookup[T any](a *AliasMap, orig any) (T, bool) {
	var zero T
	c, ok := a.Get(orig)
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

// CopyOptions configures a copy. In deep mode the symbols declared by copied
// declarations are cloned too; otherwise the copies share them.
//
// Hook is called once for each freshly produced node with its original.
//
// CopyType copies a type owned by a declaration; RemapType resolves a type
// that is merely referenced. Both default to looking the type up in Aliases.
type CopyOptions struct {
	Deep      bool
	Aliases   *AliasMap
	Hook      func(orig, copy any)
	CopyType  func(Type) Type
	RemapType func(Type) Type
}

// Record registers copy as the copy of orig.
func (o *CopyOptions) Record(orig, copy any) {
	if o.Aliases != nil {
		o.Aliases.Put(orig, copy)
	}
	if o.Hook != nil {
		o.Hook(orig, copy)
	}
}

func (o *CopyOptions) remapType(t Type) Type {
	if t == nil {
		return nil
	}
	if o.RemapType != nil {
		return o.RemapType(t)
	}
	if c, ok := Lookup[Type](o.Aliases, t); ok {
		return c
	}
	return t
}

func (o *CopyOptions) copyType(t Type) Type {
	if t == nil {
		return nil
	}
	if o.CopyType != nil {
		return o.CopyType(t)
	}
	return o.remapType(t)
}

// Symbol returns the copy of s, or s itself if it was not copied.
func (o *CopyOptions) Symbol(s *Symbol) *Symbol {
	if s == nil {
		return nil
	}
	if c, ok := Lookup[*Symbol](o.Aliases, s); ok {
		return c
	}
	return s
}

// CloneSymbol makes a fresh copy of s and records it. The clone's type is
// remapped through the alias map; callers that own the type fix it up.
func (o *CopyOptions) CloneSymbol(s *Symbol) *Symbol {
	if c, ok := Lookup[*Symbol](o.Aliases, s); ok {
		return c
	}
	c := *s
	c.Def = nil
	c.Type = o.remapType(s.Type)
	o.Record(s, &c)
	return &c
}

// Predeclare clones the symbols of ds before any of their bodies are copied,
// so that references between the declarations resolve to the clones.
func Predeclare(ds []Decl, o *CopyOptions) {
	if !o.Deep {
		return
	}
	for _, d := range ds {
		o.CloneSymbol(d.Symbol())
	}
}

func CopyExpr(e Expr, o *CopyOptions) Expr {
	if e == nil {
		return nil
	}
	if c, ok := Lookup[Expr](o.Aliases, e); ok {
		return c
	}
	var c Expr
	switch e := e.(type) {
	case *BoolLit:
		n := *e
		c = &n
	case *IntLit:
		n := *e
		c = &n
	case *FloatLit:
		n := *e
		c = &n
	case *StringLit:
		n := *e
		c = &n
	case *Variable:
		c = &Variable{Sym: o.Symbol(e.Sym), At: e.At}
	case *MemberAccess:
		c = &MemberAccess{Base: CopyExpr(e.Base, o), Member: o.Symbol(e.Member), At: e.At}
	case *TupleExpr:
		c = &TupleExpr{Elems: copyExprs(e.Elems, o), At: e.At}
	case *TupleSelect:
		c = &TupleSelect{Base: CopyExpr(e.Base, o), Index: e.Index, At: e.At}
	case *Call:
		c = &Call{Fn: CopyExpr(e.Fn, o), Args: copyExprs(e.Args, o), At: e.At}
	case *Assign:
		c = &Assign{Lhs: CopyExpr(e.Lhs, o), Rhs: CopyExpr(e.Rhs, o), At: e.At}
	case *IOCall:
		c = &IOCall{Kind: e.Kind, Args: copyExprs(e.Args, o), Format: CopyExpr(e.Format, o), At: e.At}
	default:
		panic(fmt.Sprintf("unhandled expr: %T", e))
	}
	o.Record(e, c)
	return c
}

func copyExprs(es []Expr, o *CopyOptions) []Expr {
	if es == nil {
		return nil
	}
	cs := make([]Expr, len(es))
	for i, e := range es {
		cs[i] = CopyExpr(e, o)
	}
	return cs
}

func CopyStmt(s Stmt, o *CopyOptions) Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *ExprStmt:
		c := &ExprStmt{X: CopyExpr(s.X, o)}
		o.Record(s, c)
		return c
	case *Block:
		return CopyBlock(s, o)
	case *Cond:
		c := &Cond{Cond: CopyExpr(s.Cond, o), Then: CopyBlock(s.Then, o), Else: CopyStmt(s.Else, o), At: s.At}
		o.Record(s, c)
		return c
	case Decl:
		return CopyDecl(s, o)
	default:
		panic(fmt.Sprintf("unhandled stmt: %T", s))
	}
}

func CopyBlock(b *Block, o *CopyOptions) *Block {
	if b == nil {
		return nil
	}
	Predeclare(b.Decls(), o)
	c := &Block{At: b.At}
	for _, s := range b.Stmts {
		c.Append(CopyStmt(s, o))
	}
	o.Record(b, c)
	return c
}

// CopyDecls copies a declaration list, cloning all of its symbols first when
// o is deep.
func CopyDecls(ds []Decl, o *CopyOptions) []Decl {
	Predeclare(ds, o)
	cs := make([]Decl, len(ds))
	for i, d := range ds {
		cs[i] = CopyDecl(d, o)
	}
	return cs
}

// CopyDecl copies one declaration. A type declaration owns its type, so the
// type is copied and reattached to the (possibly cloned) symbol.
func CopyDecl(d Decl, o *CopyOptions) Decl {
	sym := d.Symbol()
	if o.Deep {
		sym = o.CloneSymbol(sym)
	}
	var c Decl
	switch d := d.(type) {
	case *VarDecl:
		if o.Deep {
			sym.Type = o.remapType(d.Sym.Type)
		}
		c = NewVarDecl(sym, CopyExpr(d.Init, o))
	case *FnDecl:
		params := make([]*Symbol, len(d.Params))
		for i, p := range d.Params {
			if o.Deep {
				p = o.CloneSymbol(p)
				p.Type = o.remapType(p.Type)
			}
			params[i] = p
		}
		fn := NewFnDecl(sym, params, CopyBlock(d.Body, o))
		fn.Ret = o.remapType(d.Ret)
		fn.ClassBinding = o.Symbol(d.ClassBinding)
		fn.Method = d.Method
		c = fn
	case *TypeDecl:
		t := o.copyType(d.Sym.Type)
		if o.Deep {
			sym.Type = t
			if t != nil {
				t.AddSymbol(sym)
			}
		}
		c = NewTypeDecl(sym)
	default:
		panic(fmt.Sprintf("unhandled decl: %T", d))
	}
	if !o.Deep {
		// shared symbols stay attached to their original declaration
		sym.Def = d
	}
	o.Record(d, c)
	return c
}
