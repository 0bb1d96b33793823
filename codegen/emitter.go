// Package codegen translates types into C: names in reference position,
// prototypes, definitions, default values, and the read/write and
// config-override routines of each type.
package codegen

import (
	"fmt"
	"io"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/config"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
	"go.uber.org/zap"
)

type Emitter struct {
	ctx *types.Context
	out *Streams
	log *zap.Logger

	// EmitIO enables the read/write routines of each type.
	EmitIO bool
	// EmitConfigVars enables the command-line override routines of enums.
	EmitConfigVars bool

	defined  map[types.Type]bool
	declared map[types.Type]bool
	matchers map[*types.Enum]bool
	// ptrParams are parameters holding a pointer to a C value, such as the
	// receiver of a record method.
	ptrParams map[*ast.Symbol]bool
}

func NewEmitter(ctx *types.Context, out *Streams, cfg *config.Config) *Emitter {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Emitter{
		ctx:            ctx,
		out:            out,
		log:            ctx.Log,
		EmitIO:         cfg.EmitIO,
		EmitConfigVars: cfg.EmitConfigVars,
		defined:        make(map[types.Type]bool),
		declared:       make(map[types.Type]bool),
		matchers:       make(map[*types.Enum]bool),
		ptrParams:      make(map[*ast.Symbol]bool),
	}
}

func p(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// TypeName is the C spelling of t in reference position.
func (e *Emitter) TypeName(t types.Type) string {
	switch t := t.(type) {
	case *types.Primitive:
		if t.Prim == types.PrimUnknown {
			diag.Fatalf(t.Span(), diag.PlaceholderEmission, "cannot emit the unknown type")
		}
	case *types.Variable, *types.Unresolved, *types.Like:
		diag.Fatalf(t.Span(), diag.PlaceholderEmission, "cannot emit %s type %s", t.Kind(), t)
	case *types.Nil, *types.Sum:
		diag.Fatalf(t.Span(), diag.UnsupportedVariant, "cannot emit %s type %s", t.Kind(), t)
	}
	sym := t.Symbol()
	if sym == nil {
		diag.Fatalf(t.Span(), diag.MissingSymbol, "cannot emit anonymous %s type %s", t.Kind(), t)
	}
	return sym.CName
}

// Prototype forward-declares the C struct behind t. Types that are typedefs
// of something else have no prototype.
func (e *Emitter) Prototype(w io.Writer, t types.Type) {
	w = e.out.route(w)
	name := e.TypeName(t)
	switch t.(type) {
	case *types.Array:
		p(w, "typedef struct _%s %s;\n", name, name)
	case *types.Class, *types.Seq:
		p(w, "typedef struct __%s _%s, *%s;\n", name, name, name)
	case *types.Record, *types.Union:
		p(w, "typedef struct __%s %s;\n", name, name)
	default:
		return
	}
	e.declared[t] = true
}

// Def emits the definition of t. Structural types also emit their
// constructor and the methods they declare to the body stream.
func (e *Emitter) Def(w io.Writer, t types.Type) {
	w = e.out.route(w)
	name := e.TypeName(t)
	switch t := t.(type) {
	case *types.Enum:
		e.enumDef(w, t, name)
	case *types.Domain:
		p(w, "typedef struct _%s {\n", name)
		p(w, "  _dom_perdim dim_info[%d];\n", t.NumDims)
		p(w, "} %s;\n\n", name)
	case *types.Index:
		if tt, ok := t.Elem.(*types.Tuple); ok {
			p(w, "typedef struct {\n")
			e.tupleFields(w, tt)
			p(w, "} %s;\n\n", name)
		} else {
			p(w, "typedef %s %s;\n\n", e.TypeName(t.Elem), name)
		}
	case *types.Array:
		elem := e.TypeName(t.Elem)
		p(w, "struct _%s {\n", name)
		p(w, "  int elemsize;\n")
		p(w, "  int size;\n")
		p(w, "  %s* base;\n", elem)
		p(w, "  %s* origin;\n", elem)
		p(w, "  %s* domain;\n", e.TypeName(t.Domain))
		p(w, "  _arr_perdim dim_info[%d];\n", t.Domain.NumDims)
		p(w, "};\n\n")
	case *types.User:
		p(w, "typedef %s %s;\n", e.TypeName(t.Definition), name)
	case *types.Tuple:
		p(w, "typedef struct _%s {\n", name)
		e.tupleFields(w, t)
		p(w, "} %s;\n\n", name)
	case types.Structural:
		e.structDef(w, t, name)
	default:
		diag.Fatalf(t.Span(), diag.UnsupportedVariant, "no definition for %s type %s", t.Kind(), t)
	}
	e.defined[t] = true
	e.log.Debug("emitted definition", zap.String("type", name), zap.Stringer("kind", t.Kind()))
}

// enumDef prints an explicit ordinal only where the sequence breaks.
func (e *Emitter) enumDef(w io.Writer, t *types.Enum, name string) {
	p(w, "typedef enum {")
	last := -1
	for i, m := range t.Members {
		if i > 0 {
			p(w, ", ")
		}
		p(w, "%s", m.Sym.CName)
		if m.Ordinal() != last+1 {
			p(w, " = %d", m.Ordinal())
		}
		last = m.Ordinal()
	}
	p(w, "} %s;\n\n", name)
}

func (e *Emitter) tupleFields(w io.Writer, t *types.Tuple) {
	for i, c := range t.Components {
		p(w, "%s _field%d;\n", e.TypeName(c), i+1)
	}
}

func (e *Emitter) structDef(w io.Writer, t types.Structural, name string) {
	u, isUnion := t.(*types.Union)
	if isUnion && u.Selector == nil {
		diag.Fatalf(t.Span(), diag.UnionSelector, "union %s has no field selector", name)
	}
	p(w, "struct __%s {\n", name)
	if isUnion {
		p(w, "%s _chpl_union_tag;\n", e.TypeName(u.Selector))
		p(w, "union {\n")
	}
	fields := t.Body().Fields()
	for _, f := range fields {
		p(w, "%s %s;\n", e.TypeName(f.Sym.Type.(types.Type)), f.Sym.CName)
	}
	if len(fields) == 0 {
		p(w, "int _emptyStructPlaceholder;\n")
	}
	if isUnion {
		p(w, "} _chpl_union;\n")
	}
	p(w, "};\n\n")

	if ctor := t.Body().Constructor; ctor != nil {
		e.FnDef(e.out.Body, ctor)
	}
	for _, m := range t.Body().Methods() {
		// Copies share the methods of the type they were copied from.
		if m.ClassBinding != t.Symbol() {
			continue
		}
		if len(m.Body.Stmts) == 0 {
			e.FnPrototype(e.out.Header, m)
			continue
		}
		e.FnDef(e.out.Body, m)
	}
}

// varDef declares sym, initialized with init or made safe to free.
func (e *Emitter) varDef(w io.Writer, sym *ast.Symbol, init ast.Expr) {
	p(w, "%s %s", e.TypeName(sym.Type.(types.Type)), sym.CName)
	if init != nil {
		p(w, " = ")
		e.Expr(w, init)
	} else {
		e.SafeInit(w, sym.Type.(types.Type))
	}
	p(w, ";\n")
}

// DefaultValue emits the C initializer of t and reports whether there is
// one. Aggregates have no initializer of their own.
func (e *Emitter) DefaultValue(w io.Writer, t types.Type) bool {
	w = e.out.route(w)
	if e.ctx.IsString(t) {
		p(w, "NULL")
		return true
	}
	switch t := t.(type) {
	case *types.Class, *types.Seq:
		p(w, "%s", types.NilSymbol.CName)
		return true
	case *types.Enum:
		if len(t.Members) == 0 {
			return false
		}
		p(w, "%s", t.Members[0].Sym.CName)
		return true
	case *types.Domain, *types.Array, *types.Tuple, *types.Record, *types.Union:
		return false
	}
	dv := t.DefaultValue()
	if dv == nil {
		return false
	}
	if _, ok := dv.(*ast.TupleExpr); ok {
		return false
	}
	e.Expr(w, dv)
	return true
}

// SafeInit makes a declaration of t safe to release before assignment.
func (e *Emitter) SafeInit(w io.Writer, t types.Type) {
	if e.ctx.IsString(t) {
		p(e.out.route(w), " = NULL")
	}
}
