package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprString renders e in source form.
func ExprString(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case *BoolLit:
		sb.WriteString(strconv.FormatBool(e.Value))
	case *IntLit:
		sb.WriteString(e.Text)
	case *FloatLit:
		sb.WriteString(e.Text)
	case *StringLit:
		sb.WriteString(strconv.Quote(e.Value))
	case *Variable:
		sb.WriteString(e.Sym.Name)
	case *MemberAccess:
		writeExpr(sb, e.Base)
		sb.WriteByte('.')
		sb.WriteString(e.Member.Name)
	case *TupleExpr:
		sb.WriteByte('(')
		writeExprs(sb, e.Elems)
		sb.WriteByte(')')
	case *TupleSelect:
		writeExpr(sb, e.Base)
		fmt.Fprintf(sb, "(%d)", e.Index)
	case *Call:
		writeExpr(sb, e.Fn)
		sb.WriteByte('(')
		writeExprs(sb, e.Args)
		sb.WriteByte(')')
	case *Assign:
		writeExpr(sb, e.Lhs)
		sb.WriteString(" = ")
		writeExpr(sb, e.Rhs)
	case *IOCall:
		sb.WriteString(e.Kind.String())
		sb.WriteByte('(')
		writeExprs(sb, e.Args)
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("unhandled expr: %T", e))
	}
}

func writeExprs(sb *strings.Builder, es []Expr) {
	for i, e := range es {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, e)
	}
}
