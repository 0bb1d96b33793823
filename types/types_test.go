package types_test

import (
	"strings"
	"testing"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	ctx := types.NewContext()
	got, ok := ctx.Builtin("integer")
	require.True(t, ok)
	assert.Same(t, ctx.Integer, got)
	assert.Equal(t, "_integer64", ctx.Integer.Symbol().CName)
	assert.Equal(t, "0", ast.ExprString(ctx.Integer.DefaultValue()))
	assert.Equal(t, `""`, ast.ExprString(ctx.String.DefaultValue()))
	assert.Nil(t, ctx.Void.DefaultValue())

	seq, ok := ctx.Builtin("_seq")
	require.True(t, ok)
	assert.Same(t, ctx.SeqTemplate(), seq)

	names := ctx.BuiltinNames()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "_nilType")

	assert.Same(t, types.NilSymbol, ctx.LookupInternal("nil"))
	requireInternal(t, diag.MissingSymbol, func() { ctx.LookupInternal("_no_such_helper") })
}

func TestEnumOrdinals(t *testing.T) {
	e := named("Color", types.NewEnum("RED", "GREEN"))
	e.AddMemberValue("B", 5)
	e.AddMember("C")

	var ords []int
	for _, m := range e.Members {
		ords = append(ords, m.Ordinal())
	}
	assert.Equal(t, []int{0, 1, 5, 6}, ords)
	assert.Equal(t, "RED", ast.ExprString(e.DefaultValue()))
	assert.Equal(t, "enum Color = RED | GREEN | B = 5 | C", types.DefString(e))

	requireInternal(t, diag.DuplicateSymbol, func() { e.AddMember("GREEN") })
}

func TestTupleDefault(t *testing.T) {
	ctx := types.NewContext()
	tup := types.NewTuple(ctx.Integer, ctx.String)
	assert.Equal(t, `(0, "")`, ast.ExprString(tup.DefaultValue()))
	assert.Equal(t, "(integer, string)", tup.String())
	tup.AddType(ctx.Float)
	assert.Len(t, tup.DefaultValue().(*ast.TupleExpr).Elems, len(tup.Components))
	assert.Equal(t, `(0, "", 0.0)`, ast.ExprString(tup.DefaultValue()))
	assert.Zero(t, tup.Rank())
}

func TestArrayRank(t *testing.T) {
	ctx := types.NewContext()
	dom := ctx.NewDomain(2)
	arr := types.NewArray(dom, ctx.Float)
	assert.Equal(t, 2, arr.Rank())
	assert.Equal(t, arr.Domain.Rank(), arr.Rank())
	assert.Equal(t, "0.0", ast.ExprString(arr.DefaultValue()))
	assert.Equal(t, "[domain(2)] float", arr.String())

	require.NotNil(t, dom.Index)
	assert.Same(t, dom, dom.Index.Domain)
	idx, ok := dom.Index.Elem.(*types.Tuple)
	require.True(t, ok)
	assert.Len(t, idx.Components, 2)

	assert.Zero(t, dom.Index.Rank())
	assert.Zero(t, named("G", types.NewUser(arr, nil)).Rank())

	one := ctx.NewDomain(1)
	assert.Same(t, ctx.Integer, one.Index.Elem)

	cp := types.Copy(arr, nil).(*types.Array)
	assert.NotSame(t, arr, cp)
	assert.NotSame(t, dom, cp.Domain)
	assert.Equal(t, cp.Domain.Rank(), cp.Rank())
	assert.Same(t, cp.Domain, cp.Domain.Index.Domain)
	assert.Same(t, ctx.Float, cp.Elem)
}

func TestNewDomainOf(t *testing.T) {
	ctx := types.NewContext()
	assert.Equal(t, 3, ctx.NewDomainOf(ast.NewIntLit(3)).Rank())

	parent := ctx.NewDomain(2)
	d := ast.NewSymbol(ast.VarSym, "D", parent)
	sub := ctx.NewDomainOf(&ast.Variable{Sym: d})
	assert.Equal(t, 2, sub.Rank())
	assert.Equal(t, "domain(D)", sub.String())
}

func TestProperties(t *testing.T) {
	ctx := types.NewContext()
	rec := named("R", types.NewRecord())
	cls := named("C", types.NewClass())
	arr := types.NewArray(ctx.NewDomain(1), ctx.Integer)
	alias := named("Z", types.NewUser(ctx.Complex, nil))

	assert.True(t, types.IsComplex(ctx.Complex))
	assert.False(t, types.IsComplex(ctx.Float))
	assert.True(t, types.IsComplex(alias))
	assert.True(t, types.IsComplex(named("W", types.NewUser(alias, nil))))
	assert.False(t, types.IsComplex(named("F", types.NewUser(ctx.Float, nil))))

	assert.True(t, types.PassedByValue(ctx.Integer))
	assert.False(t, types.PassedByValue(ctx.String))
	assert.True(t, types.PassedByValue(rec))
	assert.False(t, types.PassedByValue(cls))
	assert.True(t, types.PassedByValue(alias))

	assert.True(t, types.BlankIntentImpliesRef(arr))
	assert.True(t, types.BlankIntentImpliesRef(cls))
	assert.False(t, types.BlankIntentImpliesRef(rec))

	assert.False(t, types.RequiresParamTemp(ctx.Integer, types.BlankIntent))
	assert.False(t, types.RequiresParamTemp(cls, types.BlankIntent))
	assert.True(t, types.RequiresParamTemp(ctx.String, types.InIntent))
	assert.True(t, types.RequiresParamTemp(rec, types.InoutIntent))
	assert.False(t, types.RequiresParamTemp(rec, types.RefIntent))
}

func TestPrintDump(t *testing.T) {
	ctx := types.NewContext()
	rec := named("Point", types.NewRecord())
	rec.AddDeclarations(decls(field("x", ctx.Integer), field("y", ctx.Integer)), nil)
	assert.Equal(t, "Point", rec.String())
	assert.Equal(t, "record Point { var x: integer; var y: integer; }", types.DefString(rec))
	assert.Equal(t, "type Z = complex", types.DefString(named("Z", types.NewUser(ctx.Complex, nil))))

	dump := types.Dump(types.NewTuple(ctx.Integer, ctx.Float))
	assert.True(t, strings.Contains(dump, "Tuple"), dump)
}
