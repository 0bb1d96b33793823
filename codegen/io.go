package codegen

import (
	"io"
	"strconv"
	"strings"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
)

func direction(read bool) string {
	if read {
		return "_read"
	}
	return "_write"
}

// DefaultFormat emits the format used by an IO call on t that was given
// none. Containers and aliases use the format of what they hold.
func (e *Emitter) DefaultFormat(w io.Writer, t types.Type, read bool) {
	w = e.out.route(w)
	switch t := t.(type) {
	case *types.Enum:
		p(w, "_default_format%s_enum", direction(read))
	case *types.Array:
		e.DefaultFormat(w, t.Elem, read)
	case *types.Seq:
		e.DefaultFormat(w, t.Elem, read)
	case *types.User:
		e.DefaultFormat(w, t.Definition, read)
	case *types.Index:
		e.DefaultFormat(w, t.Elem, read)
	default:
		p(w, "_default_format%s%s", direction(read), e.TypeName(t))
	}
}

// IOCall emits a read or write of arg, of type t. It reports whether what it
// wrote is a complete statement; otherwise it is a call expression that the
// caller terminates.
func (e *Emitter) IOCall(w io.Writer, t types.Type, kind ast.IOKind, arg, format ast.Expr) (stmt bool) {
	w = e.out.route(w)
	read := kind == ast.Read
	switch t := t.(type) {
	case *types.Domain:
		p(w, "%s_domain(%s", direction(read), stdio(read))
		if read {
			p(w, "&")
		}
		e.Expr(w, arg)
		p(w, ")")
		return false
	case *types.Index:
		return e.IOCall(w, t.Elem, kind, arg, format)
	case *types.Tuple:
		p(w, "fprintf(stdout, \"(\");\n")
		for i, c := range t.Components {
			if i > 0 {
				p(w, "fprintf(stdout, \", \");\n")
			}
			if !e.IOCall(w, c, kind, &ast.TupleSelect{Base: arg, Index: i + 1}, nil) {
				p(w, ";\n")
			}
		}
		p(w, "fprintf(stdout, \")\");\n")
		return true
	case *types.Class:
		p(w, "if (")
		e.Expr(w, arg)
		p(w, " == %s) {\n", types.NilSymbol.CName)
		p(w, "fprintf(stdout, \"nil\");\n")
		p(w, "} else {\n")
		e.structIOCall(w, t, arg, false)
		p(w, "}\n")
		return true
	case *types.Record, *types.Union:
		e.structIOCall(w, t.(types.Structural), arg, true)
		return true
	}
	p(w, "%s%s(%s", direction(read), e.TypeName(t), stdio(read))
	if format != nil {
		e.Expr(w, format)
	} else {
		e.DefaultFormat(w, t, read)
	}
	p(w, ", ")
	if read {
		p(w, "&")
	}
	e.Expr(w, arg)
	p(w, ")")
	return false
}

func stdio(read bool) string {
	if read {
		return "stdin, "
	}
	return "stdout, "
}

// structIOCall calls the synthesized write method of t. Records and unions
// are C values and are passed by address.
func (e *Emitter) structIOCall(w io.Writer, t types.Structural, arg ast.Expr, byAddr bool) {
	m, ok := t.Body().Method("write")
	if !ok {
		diag.Fatalf(t.Span(), diag.MissingMethod, "%s %s has no write method", t.Kind(), t)
	}
	p(w, "%s(", m.Sym.CName)
	if byAddr {
		p(w, "&(")
		e.Expr(w, arg)
		p(w, ")")
	} else {
		e.Expr(w, arg)
	}
	p(w, ");\n")
}

func (e *Emitter) ioPrototype(w io.Writer, name string, read bool) {
	if read {
		p(w, "void _read%s(FILE* infile, char* format, %s* val)", name, name)
	} else {
		p(w, "void _write%s(FILE* outfile, char* format, %s val)", name, name)
	}
}

// IORoutines emits the read and write routines of t: prototypes to the
// header and bodies to the body stream. Types that are read and written
// through other means emit nothing.
func (e *Emitter) IORoutines(t types.Type) {
	h, b := e.out.Header, e.out.Body
	switch t := t.(type) {
	case *types.Enum:
		name := e.TypeName(t)
		e.stringToEnum(t, name)
		e.ioPrototype(h, name, true)
		p(h, ";\n")
		e.ioPrototype(h, name, false)
		p(h, ";\n\n")

		e.ioPrototype(b, name, true)
		p(b, " {\n")
		p(b, "char* inputString = NULL;\n")
		p(b, "_read_string(infile, format, &inputString);\n")
		p(b, "if (!(_convert_string_to_enum%s(inputString, val))) {\n", name)
		p(b, "fflush(stdout);\n")
		p(b, "fprintf(stderr, \"***ERROR:  Not of %s type***\\n\");\n", name)
		p(b, "exit(1);\n")
		p(b, "}\n")
		p(b, "}\n\n")

		e.ioPrototype(b, name, false)
		p(b, " {\n")
		p(b, "switch (val) {\n")
		for _, m := range t.Members {
			p(b, "case %s:\n", m.Sym.CName)
			p(b, "fprintf(outfile, format, \"%s\");\n", m.Sym.CName)
			p(b, "break;\n")
		}
		p(b, "}\n")
		p(b, "}\n\n")
	case *types.User:
		name, def := e.TypeName(t), e.TypeName(t.Definition)
		e.ioPrototype(h, name, true)
		p(h, ";\n")
		e.ioPrototype(h, name, false)
		p(h, ";\n\n")

		e.ioPrototype(b, name, true)
		p(b, " {\n")
		p(b, "_read%s(infile, format, val);\n", def)
		p(b, "}\n\n")
		e.ioPrototype(b, name, false)
		p(b, " {\n")
		p(b, "_write%s(outfile, format, val);\n", def)
		p(b, "}\n\n")
	case *types.Array:
		e.arrayWrite(t)
	case *types.Seq:
		name := e.TypeName(t)
		p(h, "void _write%s(FILE* F, char* format, %s seq);\n\n", name, name)
		node, ok := t.Node()
		if !ok {
			diag.Fatalf(t.Span(), diag.MissingSymbol, "sequence %s has no node type", name)
		}
		p(b, "void _write%s(FILE* F, char* format, %s seq) {\n", name, name)
		p(b, "%s tmp = seq->first;\n", node.Sym.CName)
		p(b, "while (tmp != nil) {\n")
		p(b, "  fprintf(F, format, tmp->element);\n")
		p(b, "  tmp = tmp->next;\n")
		p(b, "  if (tmp != nil) {\n")
		p(b, "  fprintf(F, \" \");\n")
		p(b, "}\n")
		p(b, "}\n")
		p(b, "}\n\n")
	}
}

// stringToEnum matches a member name in declaration order. It is shared by
// the read routine and the config override routine and emitted once.
func (e *Emitter) stringToEnum(t *types.Enum, name string) {
	if e.matchers[t] {
		return
	}
	e.matchers[t] = true
	h, b := e.out.Header, e.out.Body
	p(h, "int _convert_string_to_enum%s(char* inputString, %s* val);\n", name, name)
	p(b, "int _convert_string_to_enum%s(char* inputString, %s* val) {\n", name, name)
	for _, m := range t.Members {
		p(b, "if (strcmp(inputString, \"%s\") == 0) {\n", m.Sym.CName)
		p(b, "*val = %s;\n", m.Sym.CName)
		p(b, "} else ")
	}
	p(b, "{\n")
	p(b, "return 0;\n")
	p(b, "}\n")
	p(b, "return 1;\n")
	p(b, "}\n\n")
}

// arrayWrite walks the index space in row-major order. Elements of the
// innermost dimension are separated by a space and every other dimension
// ends its row with a newline.
func (e *Emitter) arrayWrite(t *types.Array) {
	h, b := e.out.Header, e.out.Body
	name := e.TypeName(t)
	n := t.Domain.NumDims
	p(h, "void _write%s(FILE* F, char* format, %s arr);\n\n", name, name)

	p(b, "void _write%s(FILE* F, char* format, %s arr) {\n", name, name)
	for d := 0; d < n; d++ {
		p(b, "  int i%d;\n", d)
	}
	p(b, "%s* const dom = arr.domain;\n\n", e.TypeName(t.Domain))
	idx := make([]string, n)
	for d := 0; d < n; d++ {
		p(b, "for (i%d=dom->dim_info[%d].lo; i%d<=dom->dim_info[%d].hi; i%d+=dom->dim_info[%d].str) {\n",
			d, d, d, d, d, d)
		idx[d] = "i" + strconv.Itoa(d)
	}
	p(b, "fprintf(F, format, _ACC%d(arr, %s));\n", n, strings.Join(idx, ", "))
	p(b, "if (i%d<dom->dim_info[%d].hi) {\n", n-1, n-1)
	p(b, "fprintf(F, \" \");\n")
	p(b, "}\n")
	p(b, "}\n")
	for d := 1; d < n; d++ {
		p(b, "fprintf(F, \"\\n\");\n")
		p(b, "}\n")
	}
	p(b, "}\n\n")
}

// ConfigVarRoutines emits the routine that applies a command-line override
// to a config variable of enum type t. Other types have none.
func (e *Emitter) ConfigVarRoutines(t types.Type) {
	en, ok := t.(*types.Enum)
	if !ok {
		return
	}
	h, b := e.out.Header, e.out.Body
	name := e.TypeName(en)
	e.stringToEnum(en, name)
	p(h, "int setInCommandLine%s(char* varName, %s* value, char* moduleName);\n", name, name)
	p(b, "int setInCommandLine%s(char* varName, %s* value, char* moduleName) {\n", name, name)
	p(b, "int varSet = 0;\n")
	p(b, "char* setValue = lookupSetValue(varName, moduleName);\n")
	p(b, "if (setValue) {\n")
	p(b, "int validEnum = _convert_string_to_enum%s(setValue, value);\n", name)
	p(b, "if (validEnum) {\n")
	p(b, "varSet = 1;\n")
	p(b, "} else {\n")
	p(b, "fprintf(stderr, \"***Error: \\\"%%s\\\" is not a valid value for a config var \\\"%%s\\\" of type %s***\\n\", setValue, varName);\n", name)
	p(b, "exit(1);\n")
	p(b, "}\n")
	p(b, "}\n")
	p(b, "return varSet;\n")
	p(b, "}\n\n")
}
