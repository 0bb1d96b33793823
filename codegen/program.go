package codegen

import (
	"io"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
	"go.uber.org/zap"
)

// Collect returns the named types reachable from the declarations of blk,
// each after the types it contains. Reaching a placeholder is an internal
// error.
func Collect(blk *ast.Block) []types.Type {
	var order []types.Type
	seen := make(map[types.Type]bool)
	var add func(t types.Type)
	inner := &types.Traversal{ExploreChildTypes: true}
	inner.Pre = func(t types.Type) {
		if types.IsPlaceholder(t) {
			diag.Fatalf(t.Span(), diag.PlaceholderEmission, "%s type %s reached emission", t.Kind(), t)
		}
	}
	inner.Post = func(t types.Type) { add(t) }
	add = func(t types.Type) {
		if seen[t] || t.Symbol() == nil {
			return
		}
		switch t.(type) {
		case *types.Primitive, *types.Nil:
			return
		}
		seen[t] = true
		types.Walk(t, inner)
		order = append(order, t)
	}
	root := &types.Traversal{
		ProcessTop:        true,
		ExploreChildTypes: true,
		Pre:               inner.Pre,
		Post:              inner.Post,
	}
	walk := func(t ast.Type) {
		if t != nil {
			types.Walk(t.(types.Type), root)
		}
	}
	for _, d := range blk.Decls() {
		switch d := d.(type) {
		case *ast.TypeDecl, *ast.VarDecl:
			walk(d.Symbol().Type)
		case *ast.FnDecl:
			for _, param := range d.Params {
				walk(param.Type)
			}
			walk(d.Ret)
		}
	}
	return order
}

// defStream is where the definition of t goes: typedefs of existing types
// belong in the header, aggregates in the body.
func (e *Emitter) defStream(t types.Type) io.Writer {
	switch t.(type) {
	case *types.Array, types.Structural:
		return e.out.Body
	}
	return e.out.Header
}

// EmitProgram emits every named type reachable from blk: all prototypes,
// then definitions in dependency order, then the IO and config override
// routines. Each type is emitted once.
func (e *Emitter) EmitProgram(blk *ast.Block) {
	order := Collect(blk)
	e.log.Debug("emitting program", zap.Int("count", len(order)))
	for _, t := range order {
		if !e.declared[t] {
			e.Prototype(e.out.Header, t)
		}
	}
	for _, t := range order {
		if !e.defined[t] {
			e.Def(e.defStream(t), t)
		}
	}
	if e.EmitIO {
		for _, t := range order {
			e.IORoutines(t)
		}
	}
	if e.EmitConfigVars {
		for _, t := range order {
			e.ConfigVarRoutines(t)
		}
	}
}
