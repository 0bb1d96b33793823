// Package ast is the slice of the expression and declaration tree that the
// type layer reads and synthesizes: literals, variable and member references,
// calls, assignments, write calls, and the three declaration kinds that make up
// a structural type's body.
package ast

import (
	"fmt"
	"strings"

	"github.com/smasher164/ctype/source"
)

type Node interface {
	Span() source.Span
	ASTString(depth int) string
}

type Expr interface {
	Node
	isExpr()
}

type Stmt interface {
	Node
	isStmt()
}

// Type is the part of a types.Type the tree depends on. Only the types
// package implements it.
type Type interface {
	fmt.Stringer
	Rank() int
	DefaultValue() Expr
	Symbol() *Symbol
	AddSymbol(*Symbol)
}

var (
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*IntLit)(nil)
	_ Expr = (*FloatLit)(nil)
	_ Expr = (*StringLit)(nil)
	_ Expr = (*Variable)(nil)
	_ Expr = (*MemberAccess)(nil)
	_ Expr = (*TupleExpr)(nil)
	_ Expr = (*TupleSelect)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Assign)(nil)
	_ Expr = (*IOCall)(nil)
	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*Block)(nil)
	_ Stmt = (*Cond)(nil)
	_ Decl = (*VarDecl)(nil)
	_ Decl = (*FnDecl)(nil)
	_ Decl = (*TypeDecl)(nil)
)

func indent(depth int) string {
	return fmt.Sprintf("%*s", depth*2, "")
}

func astString(n Node, depth int) string {
	if n == nil {
		return "<nil>"
	}
	return n.ASTString(depth)
}

type BoolLit struct {
	Value bool
	At    source.Span
}

func (*BoolLit) isExpr()             {}
func (b *BoolLit) Span() source.Span { return b.At }
func (b *BoolLit) ASTString(depth int) string {
	return fmt.Sprintf("BoolLit: %t", b.Value)
}

// IntLit keeps the literal's spelling so emission reproduces it exactly.
type IntLit struct {
	Value int64
	Text  string
	At    source.Span
}

func NewIntLit(v int64) *IntLit {
	return &IntLit{Value: v, Text: fmt.Sprint(v)}
}

func (*IntLit) isExpr()             {}
func (i *IntLit) Span() source.Span { return i.At }
func (i *IntLit) ASTString(depth int) string {
	return fmt.Sprintf("IntLit: %s", i.Text)
}

type FloatLit struct {
	Value float64
	Text  string
	At    source.Span
}

func (*FloatLit) isExpr()             {}
func (f *FloatLit) Span() source.Span { return f.At }
func (f *FloatLit) ASTString(depth int) string {
	return fmt.Sprintf("FloatLit: %s", f.Text)
}

type StringLit struct {
	Value string
	At    source.Span
}

func (*StringLit) isExpr()             {}
func (s *StringLit) Span() source.Span { return s.At }
func (s *StringLit) ASTString(depth int) string {
	return fmt.Sprintf("StringLit: %q", s.Value)
}

// Variable is a reference to a symbol.
type Variable struct {
	Sym *Symbol
	At  source.Span
}

func (*Variable) isExpr()             {}
func (v *Variable) Span() source.Span { return v.At }
func (v *Variable) ASTString(depth int) string {
	return fmt.Sprintf("Variable: %s", v.Sym)
}

type MemberAccess struct {
	Base   Expr
	Member *Symbol
	At     source.Span
}

func (*MemberAccess) isExpr() {}
func (m *MemberAccess) Span() source.Span {
	if m.At.IsZero() {
		return spanOf(m.Base)
	}
	return m.At
}
func (m *MemberAccess) ASTString(depth int) string {
	return fmt.Sprintf(
		"MemberAccess\n%sBase: %s\n%sMember: %s",
		indent(depth+1), astString(m.Base, depth+1),
		indent(depth+1), m.Member)
}

type TupleExpr struct {
	Elems []Expr
	At    source.Span
}

func (*TupleExpr) isExpr()             {}
func (t *TupleExpr) Span() source.Span { return t.At }
func (t *TupleExpr) ASTString(depth int) string {
	return fmt.Sprintf("TupleExpr\n%sElems: %s", indent(depth+1), listString(t.Elems, depth+1))
}

// TupleSelect selects the Index'th component (1-based) of a tuple value.
type TupleSelect struct {
	Base  Expr
	Index int
	At    source.Span
}

func (*TupleSelect) isExpr() {}
func (t *TupleSelect) Span() source.Span {
	if t.At.IsZero() {
		return spanOf(t.Base)
	}
	return t.At
}
func (t *TupleSelect) ASTString(depth int) string {
	return fmt.Sprintf("TupleSelect\n%sBase: %s\n%sIndex: %d",
		indent(depth+1), astString(t.Base, depth+1), indent(depth+1), t.Index)
}

type Call struct {
	Fn   Expr
	Args []Expr
	At   source.Span
}

func (*Call) isExpr()             {}
func (c *Call) Span() source.Span { return c.At }
func (c *Call) ASTString(depth int) string {
	return fmt.Sprintf("Call\n%sFn: %s\n%sArgs: %s",
		indent(depth+1), astString(c.Fn, depth+1),
		indent(depth+1), listString(c.Args, depth+1))
}

type Assign struct {
	Lhs Expr
	Rhs Expr
	At  source.Span
}

func (*Assign) isExpr() {}
func (a *Assign) Span() source.Span {
	if a.At.IsZero() {
		return spanOf(a.Lhs).Add(spanOf(a.Rhs))
	}
	return a.At
}
func (a *Assign) ASTString(depth int) string {
	return fmt.Sprintf("Assign\n%sLhs: %s\n%sRhs: %s",
		indent(depth+1), astString(a.Lhs, depth+1),
		indent(depth+1), astString(a.Rhs, depth+1))
}

type IOKind int

const (
	Write IOKind = iota
	Writeln
	Read
)

func (k IOKind) String() string {
	switch k {
	case Write:
		return "write"
	case Writeln:
		return "writeln"
	case Read:
		return "read"
	default:
		panic("unreachable")
	}
}

// IOCall is a formatted read or write of each argument in turn.
type IOCall struct {
	Kind   IOKind
	Args   []Expr
	Format Expr
	At     source.Span
}

func (*IOCall) isExpr()             {}
func (c *IOCall) Span() source.Span { return c.At }
func (c *IOCall) ASTString(depth int) string {
	return fmt.Sprintf("IOCall\n%sKind: %s\n%sArgs: %s",
		indent(depth+1), c.Kind, indent(depth+1), listString(c.Args, depth+1))
}

type ExprStmt struct {
	X Expr
}

func (*ExprStmt) isStmt()             {}
func (s *ExprStmt) Span() source.Span { return spanOf(s.X) }
func (s *ExprStmt) ASTString(depth int) string {
	return fmt.Sprintf("ExprStmt\n%s%s", indent(depth+1), astString(s.X, depth+1))
}

// Cond is an if statement; Else is nil, a *Block or another *Cond.
type Cond struct {
	Cond Expr
	Then *Block
	Else Stmt
	At   source.Span
}

func (*Cond) isStmt()             {}
func (c *Cond) Span() source.Span { return c.At }
func (c *Cond) ASTString(depth int) string {
	var els string
	if c.Else != nil {
		els = c.Else.ASTString(depth + 1)
	}
	return fmt.Sprintf("Cond\n%sCond: %s\n%sThen: %s\n%sElse: %s",
		indent(depth+1), astString(c.Cond, depth+1),
		indent(depth+1), c.Then.ASTString(depth+1),
		indent(depth+1), els)
}

// AddElse hangs s off the end of c's else-if chain.
func (c *Cond) AddElse(s Stmt) {
	for {
		next, ok := c.Else.(*Cond)
		if !ok {
			break
		}
		c = next
	}
	if c.Else != nil {
		panic("cond already has a final else")
	}
	c.Else = s
}

func spanOf(n Node) source.Span {
	if n == nil {
		return source.Span{}
	}
	return n.Span()
}

func listString[N Node](ns []N, depth int) string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, n := range ns {
		fmt.Fprintf(&sb, "\n%s%s", indent(depth+1), astString(n, depth+1))
	}
	sb.WriteString("]")
	return sb.String()
}

// TypeOf is the static type of an expression when the tree records it.
// Literal types live in the compilation context, so nil is returned for them.
func TypeOf(e Expr) Type {
	switch e := e.(type) {
	case *Variable:
		return e.Sym.Type
	case *MemberAccess:
		return e.Member.Type
	case *Assign:
		return TypeOf(e.Lhs)
	}
	return nil
}
