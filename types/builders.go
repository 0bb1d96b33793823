package types

import (
	"fmt"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"go.uber.org/zap"
)

func member(this *ast.Symbol, field *ast.Symbol) *ast.MemberAccess {
	return &ast.MemberAccess{Base: &ast.Variable{Sym: this}, Member: field}
}

func exprStmt(e ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{X: e}
}

// BuildConstructorBody returns the statements that initialize a fresh value
// of t bound to this. Classes and records first set every field to its type's
// default and then apply the fields' own initializers, in field order. String
// fields go through _init_string. A union starts out uninitialized.
func (c *Context) BuildConstructorBody(t Structural, this *ast.Symbol) []ast.Stmt {
	if u, ok := t.(*Union); ok {
		if u.Selector == nil {
			fatalf(u, diag.UnionSelector, "union %s has no field selector", u)
		}
		call := &ast.Call{
			Fn:   &ast.Variable{Sym: c.LookupInternal(UnionSetFn)},
			Args: []ast.Expr{&ast.Variable{Sym: this}, &ast.Variable{Sym: u.Selector.Members[0].Sym}},
		}
		return []ast.Stmt{exprStmt(call)}
	}

	var stmts []ast.Stmt
	assign := func(field *ast.Symbol, rhs ast.Expr) {
		if c.IsString(symType(field)) {
			stmts = append(stmts, exprStmt(&ast.Call{
				Fn:   &ast.Variable{Sym: c.LookupInternal(InitStringFn)},
				Args: []ast.Expr{member(this, field), member(this, field), rhs},
			}))
			return
		}
		stmts = append(stmts, exprStmt(&ast.Assign{Lhs: member(this, field), Rhs: rhs}))
	}
	fields := t.Body().Fields()
	for _, f := range fields {
		ft := symType(f.Sym)
		if ft == nil || ft.DefaultValue() == nil {
			continue
		}
		assign(f.Sym, ast.CopyExpr(ft.DefaultValue(), &ast.CopyOptions{}))
	}
	for _, f := range fields {
		if f.Init == nil {
			continue
		}
		assign(f.Sym, ast.CopyExpr(f.Init, &ast.CopyOptions{}))
	}
	return stmts
}

// BuildConstructor synthesizes the constructor of t as _construct_<T> and
// records it on the type.
func (c *Context) BuildConstructor(t Structural) *ast.FnDecl {
	sym := mustSymbol(t)
	this := ast.NewSymbol(ast.ParamSym, "this", t)
	fn := ast.NewFnDecl(
		ast.NewSymbol(ast.FnSym, "_construct_"+sym.Name, t),
		[]*ast.Symbol{this},
		ast.NewBlock(c.BuildConstructorBody(t, this)...),
	)
	fn.Sym.CName = source.Mangle("_construct_", sym.CName)
	fn.ClassBinding = sym
	fn.Method = ast.PrimaryMethod
	t.Body().Constructor = fn
	c.Log.Debug("built constructor", zap.String("type", sym.Name), zap.Int("count", len(fn.Body.Stmts)))
	return fn
}

func writeStmt(arg ast.Expr) ast.Stmt {
	return exprStmt(&ast.IOCall{Kind: ast.Write, Args: []ast.Expr{arg}})
}

func writeString(s string) ast.Stmt {
	return writeStmt(&ast.StringLit{Value: s})
}

// BuildIOBody returns the statements of t's write method. Records print as
// (f = v, ...) and classes as {f = v, ...}. A union prints the active field,
// or "uninitialized".
func (c *Context) BuildIOBody(t Structural, this *ast.Symbol) []ast.Stmt {
	open, close := "(", ")"
	switch t.(type) {
	case *Class, *Seq:
		open, close = "{", "}"
	}
	stmts := []ast.Stmt{writeString(open)}
	if u, ok := t.(*Union); ok {
		stmts = append(stmts, c.buildUnionIO(u, this))
	} else {
		for i, f := range t.Body().Fields() {
			if i > 0 {
				stmts = append(stmts, writeString(", "))
			}
			stmts = append(stmts, writeString(f.Sym.Name+" = "), writeStmt(member(this, f.Sym)))
		}
	}
	return append(stmts, writeString(close))
}

func (c *Context) buildUnionIO(u *Union, this *ast.Symbol) *ast.Cond {
	check := func(field *ast.Symbol, body ...ast.Stmt) *ast.Cond {
		return &ast.Cond{
			Cond: c.BuildSafeAccessCall(u, UnionCheckQuiet, &ast.Variable{Sym: this}, field),
			Then: ast.NewBlock(body...),
		}
	}
	top := check(nil, writeString("uninitialized"))
	for _, f := range u.Fields() {
		top.AddElse(check(f.Sym, writeString(f.Sym.Name+" = "), writeStmt(member(this, f.Sym))))
	}
	return top
}

// BuildWriteMethod adds a write method to t whose body is t's IO body.
func (c *Context) BuildWriteMethod(t Structural) *ast.FnDecl {
	sym := mustSymbol(t)
	this := ast.NewSymbol(ast.ParamSym, "this", t)
	fn := ast.NewFnDecl(ast.NewSymbol(ast.FnSym, "write", nil), []*ast.Symbol{this},
		ast.NewBlock(c.BuildIOBody(t, this)...))
	fn.Sym.CName = source.Mangle(sym.CName, "_write")
	t.Body().AddDeclarations([]ast.Decl{fn}, nil)
	if t.Body().Scope != nil {
		t.Body().Scope.Add(fn.Sym)
	}
	return fn
}

// fieldSelectorName is _<U>_union_id_<field>. A nil field names the
// uninitialized state, or the selector enum itself when enumName is set.
func fieldSelectorName(u *Union, field *ast.Symbol, enumName bool) string {
	name := "_uninitialized"
	switch {
	case field != nil:
		name = field.Name
	case enumName:
		name = ""
	}
	return fmt.Sprintf("_%s_union_id_%s", mustSymbol(u).Name, name)
}

// BuildFieldSelector creates the enum that tags u's active field and declares
// it immediately before u in u's owning declaration list.
func (c *Context) BuildFieldSelector(u *Union) *Enum {
	sym := mustSymbol(u)
	if sym.Def == nil || sym.Def.Owner() == nil {
		diag.Fatalf(u.Span(), diag.DeclPlacement, "union %s is not declared in a block", sym.Name)
	}
	sel := NewEnum(fieldSelectorName(u, nil, false))
	for _, f := range u.Fields() {
		sel.AddMember(fieldSelectorName(u, f.Sym, false))
	}
	selSym := ast.NewSymbol(ast.TypeSym, fieldSelectorName(u, nil, true), sel)
	selSym.Loc = sym.Loc
	sel.AddSymbol(selSym)
	sym.Def.Owner().InsertDeclsBefore(sym.Def, ast.NewTypeDecl(selSym))
	u.Selector = sel
	c.Log.Debug("built field selector", zap.String("type", sym.Name), zap.Int("count", len(sel.Members)))
	return sel
}

type UnionCall int

const (
	UnionSet UnionCall = iota
	UnionCheck
	UnionCheckQuiet
)

func (k UnionCall) String() string {
	switch k {
	case UnionSet:
		return UnionSetFn
	case UnionCheck:
		return UnionCheckFn
	case UnionCheckQuiet:
		return UnionCheckQuietFn
	default:
		panic("unreachable")
	}
}

// BuildSafeAccessCall builds a guarded access to field of the union value
// base. A nil field refers to the uninitialized state. UnionCheck also passes
// the location of base so the generated check can report it.
func (c *Context) BuildSafeAccessCall(u *Union, kind UnionCall, base ast.Expr, field *ast.Symbol) *ast.Call {
	if u.Selector == nil {
		fatalf(u, diag.UnionSelector, "union %s has no field selector", u)
	}
	tagName := fieldSelectorName(u, field, false)
	tag, ok := u.Selector.Member(tagName)
	if !ok {
		fatalf(u, diag.MissingSymbol, "union %s has no selector member %s", u, tagName)
	}
	args := []ast.Expr{
		ast.CopyExpr(base, &ast.CopyOptions{}),
		&ast.Variable{Sym: tag.Sym},
	}
	if kind == UnionCheck {
		span := base.Span()
		args = append(args, &ast.StringLit{Value: span.Filename}, ast.NewIntLit(int64(span.Line())))
	}
	return &ast.Call{
		Fn:   &ast.Variable{Sym: c.LookupInternal(kind.String())},
		Args: args,
		At:   base.Span(),
	}
}
