package codegen

import (
	"fmt"
	"io"
	"strconv"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
)

// exprType is the type of x. Literal types come from the context.
func (e *Emitter) exprType(x ast.Expr) types.Type {
	switch x := x.(type) {
	case *ast.BoolLit:
		return e.ctx.Boolean
	case *ast.IntLit:
		return e.ctx.Integer
	case *ast.FloatLit:
		return e.ctx.Float
	case *ast.StringLit:
		return e.ctx.String
	case *ast.TupleSelect:
		if tt, ok := e.exprType(x.Base).(*types.Tuple); ok && x.Index <= len(tt.Components) {
			return tt.Components[x.Index-1]
		}
		return nil
	}
	if t, ok := ast.TypeOf(x).(types.Type); ok {
		return t
	}
	return nil
}

// accessOp is the C member access operator for a member of base.
func (e *Emitter) accessOp(base ast.Expr) string {
	op := "."
	if v, ok := base.(*ast.Variable); ok && e.ptrParams[v.Sym] {
		op = "->"
	}
	switch e.exprType(base).(type) {
	case *types.Class, *types.Seq:
		op = "->"
	case *types.Union:
		op += "_chpl_union."
	}
	return op
}

func (e *Emitter) Expr(w io.Writer, x ast.Expr) {
	w = e.out.route(w)
	switch x := x.(type) {
	case *ast.BoolLit:
		p(w, "%t", x.Value)
	case *ast.IntLit:
		if x.Text != "" {
			p(w, "%s", x.Text)
		} else {
			p(w, "%d", x.Value)
		}
	case *ast.FloatLit:
		if x.Text != "" {
			p(w, "%s", x.Text)
		} else {
			p(w, "%s", strconv.FormatFloat(x.Value, 'g', -1, 64))
		}
	case *ast.StringLit:
		p(w, "%s", strconv.Quote(x.Value))
	case *ast.Variable:
		p(w, "%s", x.Sym.CName)
	case *ast.MemberAccess:
		e.Expr(w, x.Base)
		p(w, "%s%s", e.accessOp(x.Base), x.Member.CName)
	case *ast.TupleExpr:
		p(w, "{")
		e.exprList(w, x.Elems)
		p(w, "}")
	case *ast.TupleSelect:
		e.Expr(w, x.Base)
		p(w, "._field%d", x.Index)
	case *ast.Call:
		e.Expr(w, x.Fn)
		p(w, "(")
		e.exprList(w, x.Args)
		p(w, ")")
	case *ast.Assign:
		e.Expr(w, x.Lhs)
		p(w, " = ")
		if _, ok := x.Rhs.(*ast.TupleExpr); ok {
			if t := e.exprType(x.Lhs); t != nil {
				p(w, "(%s)", e.TypeName(t))
			}
		}
		e.Expr(w, x.Rhs)
	default:
		diag.Fatalf(x.Span(), diag.UnsupportedVariant, "cannot emit expression %T", x)
	}
}

func (e *Emitter) exprList(w io.Writer, xs []ast.Expr) {
	for i, x := range xs {
		if i > 0 {
			p(w, ", ")
		}
		e.Expr(w, x)
	}
}

func (e *Emitter) Stmt(w io.Writer, s ast.Stmt) {
	w = e.out.route(w)
	switch s := s.(type) {
	case *ast.ExprStmt:
		if c, ok := s.X.(*ast.IOCall); ok {
			e.ioStmt(w, c)
			return
		}
		e.Expr(w, s.X)
		p(w, ";\n")
	case *ast.VarDecl:
		e.varDef(w, s.Sym, s.Init)
	case *ast.TypeDecl, *ast.FnDecl:
		// Declarations inside bodies are emitted with the program.
	case *ast.Block:
		p(w, "{\n")
		for _, s := range s.Stmts {
			e.Stmt(w, s)
		}
		p(w, "}\n")
	case *ast.Cond:
		e.cond(w, s)
		p(w, "\n")
	default:
		panic(fmt.Sprintf("unhandled stmt: %T", s))
	}
}

func (e *Emitter) cond(w io.Writer, c *ast.Cond) {
	p(w, "if (")
	e.Expr(w, c.Cond)
	p(w, ") {\n")
	for _, s := range c.Then.Stmts {
		e.Stmt(w, s)
	}
	p(w, "}")
	switch els := c.Else.(type) {
	case nil:
	case *ast.Cond:
		p(w, " else ")
		e.cond(w, els)
	case *ast.Block:
		p(w, " else {\n")
		for _, s := range els.Stmts {
			e.Stmt(w, s)
		}
		p(w, "}")
	default:
		panic(fmt.Sprintf("unhandled else: %T", els))
	}
}

func (e *Emitter) ioStmt(w io.Writer, c *ast.IOCall) {
	for _, arg := range c.Args {
		t := e.exprType(arg)
		if t == nil {
			diag.Fatalf(arg.Span(), diag.MissingSymbol, "untyped argument %s", ast.ExprString(arg))
		}
		if !e.IOCall(w, t, c.Kind, arg, c.Format) {
			p(w, ";\n")
		}
	}
	if c.Kind == ast.Writeln {
		p(w, "fprintf(stdout, \"\\n\");\n")
	}
}

func (e *Emitter) fnHeader(w io.Writer, fn *ast.FnDecl) {
	ret := "void"
	if fn.Ret != nil {
		ret = e.TypeName(fn.Ret.(types.Type))
	}
	p(w, "%s %s(", ret, fn.Sym.CName)
	for i, param := range fn.Params {
		if i > 0 {
			p(w, ", ")
		}
		t := param.Type.(types.Type)
		ptr := ""
		switch t.(type) {
		case *types.Record, *types.Union:
			if i == 0 && fn.Method == ast.PrimaryMethod {
				ptr = "*"
				e.ptrParams[param] = true
			}
		}
		p(w, "%s%s %s", e.TypeName(t), ptr, param.CName)
	}
	if len(fn.Params) == 0 {
		p(w, "void")
	}
	p(w, ")")
}

// FnPrototype declares fn.
func (e *Emitter) FnPrototype(w io.Writer, fn *ast.FnDecl) {
	w = e.out.route(w)
	e.fnHeader(w, fn)
	p(w, ";\n")
}

// FnDef defines fn. Methods of C value types receive a pointer to the
// value they act on.
func (e *Emitter) FnDef(w io.Writer, fn *ast.FnDecl) {
	w = e.out.route(w)
	e.FnPrototype(e.out.Header, fn)
	e.fnHeader(w, fn)
	p(w, " {\n")
	for _, s := range fn.Body.Stmts {
		e.Stmt(w, s)
	}
	p(w, "}\n\n")
}
