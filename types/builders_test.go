package types_test

import (
	"testing"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"github.com/smasher164/ctype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDeclarationsBuckets(t *testing.T) {
	ctx := types.NewContext()
	rec := named("R", types.NewRecord())
	a := field("a", ctx.Integer)
	c := field("c", ctx.Integer)
	rec.AddDeclarations(decls(a, c), nil)

	b := field("b", ctx.Float)
	inner := named("Inner", types.NewRecord())
	innerDecl := ast.NewTypeDecl(inner.Symbol())
	m := ast.NewFnDecl(ast.NewSymbol(ast.FnSym, "m", nil), nil, nil)
	rec.AddDeclarations(decls(b, innerDecl, m), c)

	var names []string
	for _, f := range rec.Fields() {
		names = append(names, f.Sym.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	require.Len(t, rec.NestedTypes(), 1)
	require.Len(t, rec.Methods(), 1)
	assert.Same(t, rec.Symbol(), m.ClassBinding)
	assert.Equal(t, ast.PrimaryMethod, m.Method)
	assert.Same(t, rec.Body(), b.Owner())

	requireInternal(t, diag.DeclPlacement, func() {
		rec.AddDeclarations(decls(field("d", ctx.Integer)), field("zz", ctx.Integer))
	})
}

func TestConstructorBody(t *testing.T) {
	ctx := types.NewContext()
	point := named("Point", types.NewRecord())
	rec := named("R", types.NewRecord())
	rec.AddDeclarations(decls(
		fieldInit("s", ctx.String, &ast.StringLit{Value: "hi"}),
		field("n", ctx.Integer),
		field("p", point),
		fieldInit("f", ctx.Float, &ast.FloatLit{Value: 2.5, Text: "2.5"}),
	), nil)

	this := ast.NewSymbol(ast.ParamSym, "this", rec)
	assert.Equal(t, []string{
		`_init_string(this.s, this.s, "")`,
		`this.n = 0`,
		`this.f = 0.0`,
		`_init_string(this.s, this.s, "hi")`,
		`this.f = 2.5`,
	}, exprStrings(ctx.BuildConstructorBody(rec, this)))

	fn := ctx.BuildConstructor(rec)
	assert.Same(t, fn, rec.Constructor)
	assert.Equal(t, "_construct_R", fn.Sym.CName)
	assert.Len(t, fn.Body.Stmts, 5)
}

func TestRecordIOBody(t *testing.T) {
	ctx := types.NewContext()
	rec := named("Point", types.NewRecord())
	rec.AddDeclarations(decls(field("x", ctx.Integer), field("y", ctx.Integer)), nil)
	this := ast.NewSymbol(ast.ParamSym, "this", rec)
	assert.Equal(t, []string{
		`write("(")`, `write("x = ")`, `write(this.x)`, `write(", ")`,
		`write("y = ")`, `write(this.y)`, `write(")")`,
	}, exprStrings(ctx.BuildIOBody(rec, this)))

	cls := named("C", types.NewClass())
	cls.AddDeclarations(decls(field("x", ctx.Integer)), nil)
	stmts := ctx.BuildIOBody(cls, ast.NewSymbol(ast.ParamSym, "this", cls))
	assert.Equal(t, `write("{")`, ast.ExprString(stmts[0].(*ast.ExprStmt).X))

	fn := ctx.BuildWriteMethod(rec)
	got, ok := rec.Method("write")
	require.True(t, ok)
	assert.Same(t, fn, got)
	assert.Equal(t, "Point_write", fn.Sym.CName)
}

func union(ctx *types.Context, blk *ast.Block) *types.Union {
	u := named("U", types.NewUnion())
	u.AddDeclarations(decls(field("a", ctx.Integer), field("b", ctx.Float)), nil)
	declare(blk, u)
	return u
}

func TestFieldSelector(t *testing.T) {
	ctx := types.NewContext()
	blk := ast.NewBlock()
	u := union(ctx, blk)

	requireInternal(t, diag.UnionSelector, func() {
		ctx.BuildConstructorBody(u, ast.NewSymbol(ast.ParamSym, "this", u))
	})

	sel := ctx.BuildFieldSelector(u)
	assert.Same(t, sel, u.Selector)
	var names []string
	for i, m := range sel.Members {
		names = append(names, m.Sym.Name)
		assert.Equal(t, i, m.Ordinal())
	}
	assert.Equal(t, []string{"_U_union_id__uninitialized", "_U_union_id_a", "_U_union_id_b"}, names)
	assert.Len(t, sel.Members, len(u.Fields())+1)

	require.Len(t, blk.Stmts, 2)
	selDecl := blk.Stmts[0].(*ast.TypeDecl)
	assert.Equal(t, "_U_union_id_", selDecl.Sym.Name)
	assert.Same(t, sel, selDecl.Sym.Type)
	assert.Same(t, u.Symbol().Def, blk.Stmts[1])

	this := ast.NewSymbol(ast.ParamSym, "this", u)
	assert.Equal(t, []string{"_UNION_SET(this, _U_union_id__uninitialized)"},
		exprStrings(ctx.BuildConstructorBody(u, this)))
}

func TestFieldSelectorNeedsDeclaration(t *testing.T) {
	ctx := types.NewContext()
	u := named("U", types.NewUnion())
	requireInternal(t, diag.DeclPlacement, func() { ctx.BuildFieldSelector(u) })

	anon := types.NewUnion()
	requireInternal(t, diag.MissingSymbol, func() { ctx.BuildFieldSelector(anon) })
}

func TestSafeAccessCall(t *testing.T) {
	ctx := types.NewContext()
	u := union(ctx, ast.NewBlock())
	ctx.BuildFieldSelector(u)
	a, _ := u.Field("a")

	x := ast.NewSymbol(ast.VarSym, "x", u)
	base := &ast.Variable{Sym: x, At: source.At("u.chpl", 7, 3)}
	assert.Equal(t, `_UNION_CHECK(x, _U_union_id_a, "u.chpl", 7)`,
		ast.ExprString(ctx.BuildSafeAccessCall(u, types.UnionCheck, base, a.Sym)))
	assert.Equal(t, `_UNION_SET(x, _U_union_id_a)`,
		ast.ExprString(ctx.BuildSafeAccessCall(u, types.UnionSet, base, a.Sym)))
	assert.Equal(t, `_UNION_CHECK_QUIET(x, _U_union_id__uninitialized)`,
		ast.ExprString(ctx.BuildSafeAccessCall(u, types.UnionCheckQuiet, base, nil)))
}

func TestUnionIOBody(t *testing.T) {
	ctx := types.NewContext()
	u := union(ctx, ast.NewBlock())
	ctx.BuildFieldSelector(u)
	this := ast.NewSymbol(ast.ParamSym, "this", u)

	stmts := ctx.BuildIOBody(u, this)
	require.Len(t, stmts, 3)
	top := stmts[1].(*ast.Cond)
	assert.Equal(t, "_UNION_CHECK_QUIET(this, _U_union_id__uninitialized)", ast.ExprString(top.Cond))
	assert.Equal(t, []string{`write("uninitialized")`}, exprStrings(top.Then.Stmts))

	a := top.Else.(*ast.Cond)
	assert.Equal(t, "_UNION_CHECK_QUIET(this, _U_union_id_a)", ast.ExprString(a.Cond))
	assert.Equal(t, []string{`write("a = ")`, `write(this.a)`}, exprStrings(a.Then.Stmts))
	b := a.Else.(*ast.Cond)
	assert.Equal(t, "_UNION_CHECK_QUIET(this, _U_union_id_b)", ast.ExprString(b.Cond))
	assert.Nil(t, b.Else)
}

func TestCreateSeqType(t *testing.T) {
	ctx := types.NewContext()
	scopes := ctx.NewScopes()
	depth := scopes.Depth()

	intseq := ctx.CreateSeqType(scopes, "intseq", ctx.Integer)
	strseq := ctx.CreateSeqType(scopes, "strseq", ctx.String)
	assert.Equal(t, depth, scopes.Depth())

	for _, tc := range []struct {
		seq  *types.Seq
		name string
		elem types.Type
	}{
		{intseq, "intseq", ctx.Integer},
		{strseq, "strseq", ctx.String},
	} {
		assert.Equal(t, tc.name, tc.seq.Symbol().Name)
		assert.Same(t, tc.elem, tc.seq.Elem)

		app, ok := tc.seq.Method("append")
		require.True(t, ok)
		assert.Equal(t, tc.name+"_append", app.Sym.CName)
		assert.Same(t, tc.seq.Symbol(), app.ClassBinding)
		require.Len(t, app.Params, 2)
		assert.Same(t, tc.seq, app.Params[0].Type)
		assert.Same(t, tc.elem, app.Params[1].Type)

		cp, _ := tc.seq.Method("copy")
		assert.Same(t, tc.seq, cp.Ret)

		nodeDecl, ok := tc.seq.Node()
		require.True(t, ok)
		assert.Equal(t, tc.name+"_node", nodeDecl.Sym.CName)
		node := nodeDecl.Sym.Type.(*types.Class)
		elem, _ := node.Field("element")
		assert.Same(t, tc.elem, elem.Sym.Type)
		next, _ := node.Field("next")
		assert.Same(t, node, next.Sym.Type)
		first, _ := tc.seq.Field("first")
		assert.Same(t, node, first.Sym.Type)

		_, ok = tc.seq.Scope.LookupLocal("length")
		assert.True(t, ok)
	}

	n1, _ := intseq.Node()
	n2, _ := strseq.Node()
	assert.NotSame(t, n1.Sym.Type, n2.Sym.Type)

	tmplAppend, _ := ctx.SeqTemplate().Method("append")
	assert.Equal(t, "append", tmplAppend.Sym.CName)
}
