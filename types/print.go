package types

import (
	"fmt"
	"io"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/smasher164/ctype/ast"
)

// Print writes the name of t as it is written at a use site.
func Print(w io.Writer, t Type) {
	if t == nil {
		io.WriteString(w, "<nil>")
		return
	}
	if sym := t.Symbol(); sym != nil {
		io.WriteString(w, sym.Name)
		return
	}
	switch t := t.(type) {
	case *Domain:
		if t.Parent != nil {
			fmt.Fprintf(w, "domain(%s)", ast.ExprString(t.Parent))
		} else {
			fmt.Fprintf(w, "domain(%d)", t.NumDims)
		}
	case *Index:
		io.WriteString(w, "index(")
		Print(w, t.Elem)
		io.WriteString(w, ")")
	case *Array:
		io.WriteString(w, "[")
		if t.DomainExpr != nil {
			io.WriteString(w, ast.ExprString(t.DomainExpr))
		} else {
			Print(w, t.Domain)
		}
		io.WriteString(w, "] ")
		Print(w, t.Elem)
	case *Seq:
		io.WriteString(w, "seq(")
		Print(w, t.Elem)
		io.WriteString(w, ")")
	case *Tuple:
		printList(w, "(", t.Components, ", ", ")")
	case *Sum:
		printList(w, "", t.Components, " | ", "")
	case *Like:
		fmt.Fprintf(w, "like %s", ast.ExprString(t.Expr))
	case *Variable:
		io.WriteString(w, t.Name)
	default:
		fmt.Fprintf(w, "<anonymous %s>", t.Kind())
	}
}

func printList(w io.Writer, open string, ts []Type, sep string, close string) {
	io.WriteString(w, open)
	for i, c := range ts {
		if i > 0 {
			io.WriteString(w, sep)
		}
		Print(w, c)
	}
	io.WriteString(w, close)
}

// PrintDef writes t the way it appears at its declaration.
func PrintDef(w io.Writer, t Type) {
	switch t := t.(type) {
	case *Enum:
		io.WriteString(w, "enum ")
		Print(w, t)
		io.WriteString(w, " = ")
		for i, m := range t.Members {
			if i > 0 {
				io.WriteString(w, " | ")
			}
			io.WriteString(w, m.Sym.Name)
			if m.Explicit {
				fmt.Fprintf(w, " = %d", m.Ordinal())
			}
		}
	case *User:
		io.WriteString(w, "type ")
		Print(w, t)
		io.WriteString(w, " = ")
		Print(w, t.Definition)
	case *Like:
		io.WriteString(w, "like type ")
		Print(w, t)
		fmt.Fprintf(w, " = %s", ast.ExprString(t.Expr))
	case Structural:
		fmt.Fprintf(w, "%s ", t.Kind())
		Print(w, t)
		io.WriteString(w, " {")
		for _, f := range t.Body().Fields() {
			fmt.Fprintf(w, " var %s: %s;", f.Sym.Name, f.Sym.Type)
		}
		io.WriteString(w, " }")
	default:
		Print(w, t)
	}
}

// DefString is PrintDef into a string.
func DefString(t Type) string {
	var sb strings.Builder
	PrintDef(&sb, t)
	return sb.String()
}

var dumpOptions = litter.Options{
	StripPackageNames: true,
	HideZeroValues:    true,
}

// Dump renders the full structure of t for debugging.
func Dump(t Type) string {
	return dumpOptions.Sdump(t)
}
