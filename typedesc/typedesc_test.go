package typedesc_test

import (
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/codegen"
	"github.com/smasher164/ctype/config"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/typedesc"
	"github.com/smasher164/ctype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapes = `
types:
  - {name: Color, kind: enum, members: [RED, GREEN, "BLUE=5", VIOLET]}
  - name: Point
    kind: record
    fields:
      - {name: x, type: integer}
      - {name: y, type: integer, init: "3"}
      - {name: c, type: Color, init: GREEN}
  - name: Shape
    kind: union
    fields:
      - {name: p, type: Point}
      - {name: r, type: float}
  - name: List
    kind: class
    fields:
      - {name: head, type: Point}
      - {name: next, type: List}
  - {name: Temp, kind: alias, of: Celsius}
  - {name: Celsius, kind: alias, of: float, default: "20.5"}
  - {name: D, kind: domain, rank: 2}
  - {name: Grid, kind: array, domain: D, elem: float}
  - {name: Row, kind: array, rank: 1, elem: Color}
  - {name: Pair, kind: tuple, components: [integer, Color]}
  - {name: intseq, kind: seq, elem: integer}
vars:
  - {name: origin, type: Point}
  - {name: hue, type: Color, init: BLUE}
`

func load(t *testing.T, src string) *typedesc.Program {
	t.Helper()
	prog, err := typedesc.Load(types.NewContext(), "desc.yaml", []byte(src))
	require.NoError(t, err)
	return prog
}

func lookup[T types.Type](t *testing.T, prog *typedesc.Program, name string) T {
	t.Helper()
	typ, ok := prog.Lookup(name)
	require.True(t, ok, "no type %s", name)
	v, ok := typ.(T)
	require.True(t, ok, "%s is a %s", name, typ.Kind())
	return v
}

func TestParse(t *testing.T) {
	f, err := typedesc.Parse([]byte(shapes))
	require.NoError(t, err)
	require.Len(t, f.Types, 11)
	assert.Equal(t, "Point", f.Types[1].Name)
	assert.Equal(t, typedesc.KindRecord, f.Types[1].Kind)
	assert.Equal(t, 4, f.Types[1].Line)
	assert.Equal(t, 5, f.Types[1].Column)
	assert.Equal(t, []string{"integer", "Color"}, f.Types[9].Components)
	assert.Equal(t, "3", f.Types[1].Fields[1].Init)
	require.Len(t, f.Vars, 2)
	assert.Equal(t, "BLUE", f.Vars[1].Init)
}

func TestLoad(t *testing.T) {
	prog := load(t, shapes)
	ctx := prog.Ctx

	var names []string
	for _, d := range prog.Block.Decls() {
		names = append(names, d.Symbol().Name)
	}
	want := []string{
		"Color", "Point", "_Shape_union_id_", "Shape", "List", "Celsius", "Temp",
		"D", "Grid", "_Row_domain", "Row", "Pair", "intseq", "origin", "hue",
	}
	if diff := pretty.Diff(want, names); len(diff) > 0 {
		t.Errorf("declaration order: %# v", diff)
	}

	color := lookup[*types.Enum](t, prog, "Color")
	var ords []int
	for _, m := range color.Members {
		ords = append(ords, m.Ordinal())
	}
	assert.Equal(t, []int{0, 1, 5, 6}, ords)

	point := lookup[*types.Record](t, prog, "Point")
	var fields []string
	for _, f := range point.Fields() {
		fields = append(fields, f.Sym.Name)
	}
	assert.Equal(t, []string{"x", "y", "c"}, fields)
	assert.NotNil(t, point.Constructor)
	_, ok := point.Method("write")
	assert.True(t, ok)
	c, _ := point.Field("c")
	assert.Same(t, color, c.Sym.Type)

	shape := lookup[*types.Union](t, prog, "Shape")
	require.NotNil(t, shape.Selector)
	assert.Len(t, shape.Selector.Members, 3)

	list := lookup[*types.Class](t, prog, "List")
	next, ok := list.Field("next")
	require.True(t, ok)
	assert.Same(t, list, next.Sym.Type)

	temp := lookup[*types.User](t, prog, "Temp")
	celsius := lookup[*types.User](t, prog, "Celsius")
	assert.Same(t, celsius, temp.Definition)
	assert.Same(t, ctx.Float, celsius.Definition)
	lit, ok := temp.DefaultValue().(*ast.FloatLit)
	require.True(t, ok)
	assert.Equal(t, "20.5", lit.Text)

	dom := lookup[*types.Domain](t, prog, "D")
	grid := lookup[*types.Array](t, prog, "Grid")
	assert.Same(t, dom, grid.Domain)
	assert.Equal(t, 2, grid.Rank())

	row := lookup[*types.Array](t, prog, "Row")
	assert.Equal(t, "_Row_domain", row.Domain.Symbol().Name)
	assert.Equal(t, 1, row.Rank())

	pair := lookup[*types.Tuple](t, prog, "Pair")
	assert.Equal(t, []types.Type{ctx.Integer, color}, pair.Components)

	seq := lookup[*types.Seq](t, prog, "intseq")
	assert.Same(t, ctx.Integer, seq.Elem)
	_, ok = seq.Node()
	assert.True(t, ok)

	hue, ok := prog.Scopes.Lookup("hue")
	require.True(t, ok)
	hueInit := hue.Def.(*ast.VarDecl).Init.(*ast.Variable)
	assert.Equal(t, "BLUE", hueInit.Sym.Name)

	_, ok = prog.Lookup("hue")
	assert.False(t, ok, "variables are not types")
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		name, src, err string
	}{
		{"syntax", "types: [", "parse type description"},
		{"unknown type", "types:\n  - {name: A, kind: alias, of: Nope}\n", "desc.yaml:2:5: unknown type Nope"},
		{"bad kind", "types:\n  - {name: A, kind: struct}\n", `type A has unknown kind "struct"`},
		{"bad name", "types:\n  - {name: 1A, kind: record}\n", `invalid type name "1A"`},
		{"twice", "types:\n  - {name: A, kind: record}\n  - {name: A, kind: class}\n", "type A declared twice"},
		{"builtin", "types:\n  - {name: integer, kind: record}\n", "redeclares a builtin type"},
		{"alias cycle", "types:\n  - {name: A, kind: alias, of: B}\n  - {name: B, kind: alias, of: A}\n", "refers to itself"},
		{"empty tuple", "types:\n  - {name: T, kind: tuple}\n", "tuple T has no components"},
		{"rankless domain", "types:\n  - {name: D, kind: domain}\n", "domain D needs a positive rank"},
		{"not a domain", "types:\n  - {name: A, kind: array, domain: integer, elem: float}\n", "integer is a primitive, not a domain"},
		{"domain kind", "types:\n  - {name: R, kind: record}\n  - {name: A, kind: array, domain: R, elem: float}\n", "R is a record, not a domain"},
		{"ordinal", "types:\n  - {name: E, kind: enum, members: [A=x]}\n", `enum member A has ordinal "x"`},
		{"member twice", "types:\n  - {name: E, kind: enum, members: [A, A]}\n", "already declared"},
		{"member clash", "types:\n  - {name: E, kind: enum, members: [A]}\n  - {name: A, kind: record}\n", "A is already declared"},
		{"field twice", "types:\n  - name: R\n    kind: record\n    fields: [{name: f, type: integer}, {name: f, type: float}]\n", "R has field f twice"},
		{"write field", "types:\n  - name: R\n    kind: record\n    fields: [{name: write, type: integer}]\n", "reserved"},
		{"recursive record", "types:\n  - name: R\n    kind: record\n    fields: [{name: r, type: R}]\n", "record R contains itself"},
		{"recursive tuple", "types:\n  - name: R\n    kind: record\n    fields: [{name: t, type: T}]\n  - {name: T, kind: tuple, components: [R]}\n", "record R contains itself"},
		{"unset field", "types:\n  - name: U\n    kind: union\n    fields: [{name: _uninitialized, type: integer}]\n", "field name _uninitialized of U is reserved"},
		{"seq node", "types:\n  - {name: intseq, kind: seq, elem: integer}\n  - {name: intseq_node, kind: record}\n", "desc.yaml:3:5: intseq_node collides with a name generated for intseq"},
		{"selector", "types:\n  - {name: U, kind: union, fields: [{name: f, type: integer}]}\n  - {name: E, kind: enum, members: [_U_union_id_f]}\n", "_U_union_id_f collides with a name generated for U"},
		{"class typedef", "types:\n  - {name: C, kind: class}\nvars:\n  - {name: _C, type: integer}\n", "_C collides with a name generated for C"},
		{"array domain", "types:\n  - {name: _A_domain, kind: domain, rank: 1}\n  - {name: A, kind: array, rank: 1, elem: integer}\n", "_A_domain collides with a name generated for A"},
		{"union init", "types:\n  - name: U\n    kind: union\n    fields: [{name: f, type: integer, init: \"1\"}]\n", "cannot have an initializer"},
		{"bad literal", "types:\n  - {name: A, kind: alias, of: integer, default: abc}\n", `"abc" is not an integer`},
		{"no literal", "types:\n  - {name: D, kind: domain, rank: 1}\n  - {name: A, kind: alias, of: D, default: x}\n", "has no literals"},
		{"var clash", "types:\n  - {name: A, kind: record}\nvars:\n  - {name: A, type: integer}\n", "A is already declared"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := typedesc.Load(types.NewContext(), "desc.yaml", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
			assert.False(t, diag.IsInternal(err))
		})
	}
}

func TestEmitDescription(t *testing.T) {
	prog := load(t, shapes)
	var h, b, d strings.Builder
	em := codegen.NewEmitter(prog.Ctx, &codegen.Streams{Header: &h, Body: &b, Default: &d}, config.Default())
	require.NoError(t, diag.Catch(func() { em.EmitProgram(prog.Block) }))

	header, body := h.String(), b.String()
	assert.Contains(t, header, "typedef enum {RED, GREEN, BLUE = 5, VIOLET} Color;\n")
	assert.Contains(t, header, "typedef _float64 Celsius;\n")
	assert.Contains(t, header, "typedef Celsius Temp;\n")
	assert.Contains(t, header, "typedef struct __List _List, *List;\n")
	assert.Contains(t, header, "typedef struct __intseq _intseq, *intseq;\n")
	assert.Contains(t, header, "int setInCommandLineColor(char* varName, Color* value, char* moduleName);\n")
	assert.Less(t, strings.Index(header, "} Color;"), strings.Index(header, "} Pair;"))

	assert.Contains(t, body, "void _construct_Point(Point* this) {\n"+
		"this->x = 0;\n"+
		"this->y = 0;\n"+
		"this->c = RED;\n"+
		"this->y = 3;\n"+
		"this->c = GREEN;\n"+
		"}\n\n")
	assert.Contains(t, body, "struct _Grid {\n")
	assert.Contains(t, body, "  _arr_perdim dim_info[2];\n")
	assert.Contains(t, body, "_ACC1(arr, i0)")
	assert.Less(t, strings.Index(body, "struct __Point {"), strings.Index(body, "struct __Shape {"))
	assert.Empty(t, d.String())
}
