package types_test

import (
	"testing"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopySharesPrimitives(t *testing.T) {
	ctx := types.NewContext()
	assert.Same(t, ctx.Integer, types.Copy(ctx.Integer, nil))
	assert.Same(t, ctx.Nil, types.Copy(ctx.Nil, nil))

	sum := ctx.FindOrMakeSum([]types.Type{ctx.Integer, ctx.String})
	requireInternal(t, diag.UnsupportedVariant, func() { types.Copy(sum, nil) })
}

func TestCopyAliasIdentity(t *testing.T) {
	ctx := types.NewContext()
	tup := types.NewTuple(ctx.Integer, ctx.Float)
	o := &ast.CopyOptions{Aliases: ast.NewAliasMap()}
	first := types.Copy(tup, o)
	assert.NotSame(t, tup, first)
	assert.Same(t, first, types.Copy(tup, o))
}

// class List { class Node { var next: Node; var owner: List; } var head: Node; }
func recursiveList(ctx *types.Context) (*types.Class, *types.Class) {
	list := named("List", types.NewClass())
	node := named("Node", types.NewClass())
	node.AddDeclarations(decls(field("next", node), field("owner", list)), nil)
	list.AddDeclarations(decls(ast.NewTypeDecl(node.Symbol()), field("head", node), field("size", ctx.Integer)), nil)
	return list, node
}

func TestCopyNestedSelfReference(t *testing.T) {
	ctx := types.NewContext()
	list, node := recursiveList(ctx)

	seen := map[any]int{}
	o := &ast.CopyOptions{Deep: true, Aliases: ast.NewAliasMap(), Hook: func(orig, copy any) { seen[orig]++ }}
	cp := types.Copy(list, o).(*types.Class)

	assert.Nil(t, cp.Symbol())
	require.Len(t, cp.NestedTypes(), 1)
	cpNode := cp.NestedTypes()[0].Sym.Type.(*types.Class)
	assert.NotSame(t, node, cpNode)
	assert.Equal(t, "Node", cpNode.Symbol().Name)
	assert.NotSame(t, node.Symbol(), cpNode.Symbol())

	next, ok := cpNode.Field("next")
	require.True(t, ok)
	assert.Same(t, cpNode, next.Sym.Type)
	owner, _ := cpNode.Field("owner")
	assert.Same(t, cp, owner.Sym.Type)
	head, _ := cp.Field("head")
	assert.Same(t, cpNode, head.Sym.Type)
	size, _ := cp.Field("size")
	assert.Same(t, ctx.Integer, size.Sym.Type)

	// the original is untouched
	origNext, _ := node.Field("next")
	assert.Same(t, node, origNext.Sym.Type)

	for orig, n := range seen {
		assert.Equal(t, 1, n, "%v", orig)
	}
	assert.Equal(t, 1, seen[list])
	assert.Equal(t, 1, seen[node])
}

func TestShallowCopyClonesBody(t *testing.T) {
	a := named("A", types.NewClass())
	next := field("next", a)
	a.AddDeclarations(decls(next), nil)

	cp := types.Copy(a, nil).(*types.Class)
	cpNext, ok := cp.Field("next")
	require.True(t, ok)
	assert.NotSame(t, next.Sym, cpNext.Sym)
	assert.Same(t, cp, cpNext.Sym.Type)
	assert.Same(t, cpNext, cpNext.Sym.Def)
	assert.Same(t, next, next.Sym.Def)
	assert.Same(t, a, next.Sym.Type)
}

func TestCopySharesMethods(t *testing.T) {
	rec := named("R", types.NewRecord())
	this := ast.NewSymbol(ast.ParamSym, "this", rec)
	m := ast.NewFnDecl(ast.NewSymbol(ast.FnSym, "get", nil), []*ast.Symbol{this}, nil)
	rec.AddDeclarations(decls(m), nil)
	assert.Same(t, rec.Symbol(), m.ClassBinding)

	cp := types.Copy(rec, &ast.CopyOptions{Deep: true}).(*types.Record)
	got, ok := cp.Method("get")
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Same(t, rec.Symbol(), got.ClassBinding)
}

func TestInstantiate(t *testing.T) {
	ctx := types.NewContext()
	v := types.NewVariable("T")
	subs := types.Substitution{v: ctx.Integer}

	got, ok := types.Instantiate(v, subs)
	require.True(t, ok)
	assert.Same(t, ctx.Integer, got)

	_, ok = types.Instantiate(ctx.Integer, subs)
	assert.False(t, ok)
	_, ok = types.Instantiate(types.NewVariable("U"), subs)
	assert.False(t, ok)
}

func TestSpecialize(t *testing.T) {
	ctx := types.NewContext()
	v := types.NewVariable("T")
	box := named("Box", types.NewRecord())
	box.AddDeclarations(decls(
		field("v", v),
		field("pair", types.NewTuple(v, ctx.Integer)),
		field("n", ctx.Float),
	), nil)

	spec := types.Specialize(box, types.Substitution{v: ctx.String}, nil).(*types.Record)
	f, _ := spec.Field("v")
	assert.Same(t, ctx.String, f.Sym.Type)
	pair, _ := spec.Field("pair")
	tup := pair.Sym.Type.(*types.Tuple)
	assert.Same(t, ctx.String, tup.Components[0])
	assert.Same(t, ctx.Integer, tup.Components[1])

	orig, _ := box.Field("v")
	assert.Same(t, v, orig.Sym.Type)

	requireInternal(t, diag.UnboundTypeVariable, func() {
		types.Specialize(box, types.Substitution{}, nil)
	})
}

func TestTraversal(t *testing.T) {
	ctx := types.NewContext()
	a := named("A", types.NewClass())
	a.AddDeclarations(decls(field("next", a), field("pair", types.NewTuple(a, ctx.Integer))), nil)

	count := func(tr *types.Traversal) []string {
		var visited []string
		tr.Pre = func(t types.Type) { visited = append(visited, t.String()) }
		types.Walk(a, tr)
		return visited
	}
	assert.Equal(t, []string{"A", "A", "(A, integer)", "A", "integer"},
		count(&types.Traversal{ProcessTop: true, ExploreChildTypes: true}))
	assert.Equal(t, []string{"A", "(A, integer)", "A", "integer"},
		count(&types.Traversal{ExploreChildTypes: true}))
	assert.Equal(t, []string{"A"}, count(&types.Traversal{ProcessTop: true}))
}

func TestTraversalNestedDeclarations(t *testing.T) {
	ctx := types.NewContext()
	list, node := recursiveList(ctx)
	var post []types.Type
	var declsSeen int
	types.Walk(list, &types.Traversal{
		ProcessTop:        true,
		ExploreChildTypes: true,
		Post:              func(t types.Type) { post = append(post, t) },
		Decl:              func(ast.Decl) { declsSeen++ },
	})
	// Node is explored where it is declared, so its fields are seen.
	assert.Equal(t, 5, declsSeen)
	assert.Contains(t, post, types.Type(node))
	assert.Same(t, list, post[len(post)-1])
}

func TestSumCache(t *testing.T) {
	ctx := types.NewContext()
	s1 := ctx.FindOrMakeSum([]types.Type{ctx.Integer, ctx.Float})
	s2 := ctx.FindOrMakeSum([]types.Type{ctx.Float, ctx.Integer, ctx.Float})
	assert.Same(t, s1, s2)
	assert.Equal(t, []types.Type{ctx.Integer, ctx.Float}, s1.Components)
	assert.Equal(t, "_sum_type0", s1.Symbol().Name)

	s3 := ctx.FindOrMakeSum([]types.Type{ctx.Integer, ctx.Float, ctx.String})
	assert.NotSame(t, s1, s3)
	assert.Equal(t, "_sum_type1", s3.Symbol().Name)

	requireInternal(t, diag.SumArity, func() {
		ctx.FindOrMakeSum([]types.Type{ctx.Integer, ctx.Integer})
	})
}
