// Package types represents the types of a program and knows how to copy,
// instantiate, traverse and synthesize support code for them.
//
// Type is a closed set of variants. Every variant embeds Common, which holds
// the attributes all types share: the owning symbol, the default value and a
// stable identity used to order sum types canonically.
package types

import (
	"strings"
	"sync/atomic"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
)

type Type interface {
	ast.Type
	Kind() Kind
	ID() uint64
	Span() source.Span
	common() *Common
}

var (
	_ Type = (*Primitive)(nil)
	_ Type = (*Enum)(nil)
	_ Type = (*Domain)(nil)
	_ Type = (*Index)(nil)
	_ Type = (*Array)(nil)
	_ Type = (*User)(nil)
	_ Type = (*Like)(nil)
	_ Type = (*Class)(nil)
	_ Type = (*Record)(nil)
	_ Type = (*Union)(nil)
	_ Type = (*Seq)(nil)
	_ Type = (*Tuple)(nil)
	_ Type = (*Sum)(nil)
	_ Type = (*Variable)(nil)
	_ Type = (*Unresolved)(nil)
	_ Type = (*Nil)(nil)
)

type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindDomain
	KindIndex
	KindArray
	KindUser
	KindLike
	KindClass
	KindRecord
	KindUnion
	KindSeq
	KindTuple
	KindSum
	KindVariable
	KindUnresolved
	KindNil
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindDomain:
		return "domain"
	case KindIndex:
		return "index"
	case KindArray:
		return "array"
	case KindUser:
		return "user"
	case KindLike:
		return "like"
	case KindClass:
		return "class"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindSeq:
		return "seq"
	case KindTuple:
		return "tuple"
	case KindSum:
		return "sum"
	case KindVariable:
		return "variable"
	case KindUnresolved:
		return "unresolved"
	case KindNil:
		return "nil"
	default:
		panic("unreachable")
	}
}

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

type Common struct {
	id         uint64
	sym        *ast.Symbol
	defaultVal ast.Expr
	At         source.Span
}

func newCommon() Common {
	return Common{id: nextID()}
}

func (c *Common) common() *Common { return c }

func (c *Common) ID() uint64 { return c.id }

// Symbol is the type's owning symbol, nil for anonymous types.
func (c *Common) Symbol() *ast.Symbol { return c.sym }

func (c *Common) AddSymbol(s *ast.Symbol) { c.sym = s }

// DefaultValue is the expression a variable of this type starts out with, or
// nil if the type has none.
func (c *Common) DefaultValue() ast.Expr { return c.defaultVal }

func (c *Common) SetDefaultValue(e ast.Expr) { c.defaultVal = e }

func (c *Common) Rank() int { return 0 }

func (c *Common) Span() source.Span {
	if c.At.IsZero() && c.sym != nil {
		return c.sym.Loc
	}
	return c.At
}

func (c *Common) name() string {
	if c.sym == nil {
		return ""
	}
	return c.sym.Name
}

type PrimKind int

const (
	PrimVoid PrimKind = iota
	PrimUnknown
	PrimBoolean
	PrimInteger
	PrimFloat
	PrimComplex
	PrimString
	PrimNumeric
	PrimAny
	PrimObject
	PrimLocale
)

// Primitive is a builtin scalar or pseudo type. Primitives exist once per
// Context and are shared, never copied.
type Primitive struct {
	Common
	Prim PrimKind
}

func (*Primitive) Kind() Kind { return KindPrimitive }
func (p *Primitive) String() string { return typeString(p) }

type EnumMember struct {
	Sym *ast.Symbol
	// Explicit reports whether the ordinal was written out rather than
	// implied by its predecessor.
	Explicit bool
}

func (m *EnumMember) Ordinal() int { return m.Sym.Ordinal }

// Enum is an ordered list of named integer constants. The default value is the
// first member.
type Enum struct {
	Common
	Members []*EnumMember
}

func NewEnum(names ...string) *Enum {
	e := &Enum{Common: newCommon()}
	for _, name := range names {
		e.AddMember(name)
	}
	return e
}

func (*Enum) Kind() Kind { return KindEnum }
func (e *Enum) String() string { return typeString(e) }

// AddMember appends a member whose ordinal follows the previous member's.
func (e *Enum) AddMember(name string) *EnumMember {
	ord := 0
	if n := len(e.Members); n > 0 {
		ord = e.Members[n-1].Ordinal() + 1
	}
	return e.addMember(name, ord, false)
}

// AddMemberValue appends a member with an explicit ordinal.
func (e *Enum) AddMemberValue(name string, ordinal int) *EnumMember {
	return e.addMember(name, ordinal, true)
}

func (e *Enum) addMember(name string, ord int, explicit bool) *EnumMember {
	if _, dup := e.Member(name); dup {
		fatalf(e, diag.DuplicateSymbol, "duplicate enum member %q", name)
	}
	sym := ast.NewSymbol(ast.EnumSym, name, e)
	sym.Ordinal = ord
	return e.appendMember(&EnumMember{Sym: sym, Explicit: explicit})
}

func (e *Enum) appendMember(m *EnumMember) *EnumMember {
	e.Members = append(e.Members, m)
	if len(e.Members) == 1 {
		e.defaultVal = &ast.Variable{Sym: m.Sym}
	}
	return m
}

func (e *Enum) Member(name string) (*EnumMember, bool) {
	for _, m := range e.Members {
		if m.Sym.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Domain describes an index set of NumDims dimensions. A subdomain records the
// expression of the domain it was derived from.
type Domain struct {
	Common
	NumDims int
	Parent  ast.Expr
	Index   *Index
}

func (*Domain) Kind() Kind { return KindDomain }
func (d *Domain) String() string { return typeString(d) }
func (d *Domain) Rank() int { return d.NumDims }

// Index is the type of one position in a domain: the integer type for a
// one-dimensional domain, a tuple of integers otherwise.
type Index struct {
	Common
	Elem Type
	// Domain is the domain this index belongs to. It is not owned.
	Domain *Domain
}

func NewIndex(elem Type) *Index {
	i := &Index{Common: newCommon(), Elem: elem}
	i.defaultVal = copyDefault(elem)
	return i
}

func (*Index) Kind() Kind { return KindIndex }
func (i *Index) String() string { return typeString(i) }

type Array struct {
	Common
	Domain     *Domain
	DomainExpr ast.Expr
	Elem       Type
}

func NewArray(dom *Domain, elem Type) *Array {
	a := &Array{Common: newCommon(), Domain: dom, Elem: elem}
	a.defaultVal = copyDefault(elem)
	return a
}

func (*Array) Kind() Kind { return KindArray }
func (a *Array) String() string { return typeString(a) }
func (a *Array) Rank() int { return a.Domain.Rank() }

// User is a named alias for another type.
type User struct {
	Common
	Definition Type
}

// NewUser aliases def. A nil defaultVal inherits def's default.
func NewUser(def Type, defaultVal ast.Expr) *User {
	u := &User{Common: newCommon(), Definition: def}
	if defaultVal == nil {
		defaultVal = copyDefault(def)
	}
	u.defaultVal = defaultVal
	return u
}

func (*User) Kind() Kind { return KindUser }
func (u *User) String() string { return typeString(u) }

// Like is the type of an expression, resolved later.
type Like struct {
	Common
	Expr ast.Expr
}

func NewLike(e ast.Expr) *Like {
	return &Like{Common: newCommon(), Expr: e}
}

func (*Like) Kind() Kind { return KindLike }
func (l *Like) String() string { return typeString(l) }

// Tuple is an ordered list of component types.
type Tuple struct {
	Common
	Components []Type
}

func NewTuple(first Type, rest ...Type) *Tuple {
	t := &Tuple{Common: newCommon()}
	t.AddType(first)
	for _, r := range rest {
		t.AddType(r)
	}
	return t
}

func (*Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) String() string { return typeString(t) }

// AddType appends a component and rebuilds the default value.
func (t *Tuple) AddType(c Type) {
	t.Components = append(t.Components, c)
	t.RebuildDefaultVal()
}

// RebuildDefaultVal sets the default to a tuple of the component defaults.
func (t *Tuple) RebuildDefaultVal() {
	elems := make([]ast.Expr, len(t.Components))
	for i, c := range t.Components {
		elems[i] = copyDefault(c)
	}
	t.defaultVal = &ast.TupleExpr{Elems: elems}
}

// Sum is the unordered union of its components. Sums are interned by the
// Context; use FindOrMakeSum.
type Sum struct {
	Common
	Components []Type
}

func (*Sum) Kind() Kind { return KindSum }
func (s *Sum) String() string { return typeString(s) }

// Variable is a placeholder for a type supplied at instantiation.
type Variable struct {
	Common
	Name       string
	Constraint Type
}

func NewVariable(name string) *Variable {
	return &Variable{Common: newCommon(), Name: name}
}

func (*Variable) Kind() Kind { return KindVariable }
func (v *Variable) String() string { return typeString(v) }

// Unresolved names a type that has not been looked up yet.
type Unresolved struct {
	Common
	Name string
}

func NewUnresolved(name string) *Unresolved {
	u := &Unresolved{Common: newCommon(), Name: name}
	u.sym = ast.NewSymbol(ast.UnresolvedSym, name, u)
	return u
}

func (*Unresolved) Kind() Kind { return KindUnresolved }
func (u *Unresolved) String() string { return typeString(u) }

// Nil is the type of the nil reference.
type Nil struct {
	Common
}

func (*Nil) Kind() Kind { return KindNil }
func (n *Nil) String() string { return typeString(n) }

func copyDefault(t Type) ast.Expr {
	if t == nil || t.DefaultValue() == nil {
		return nil
	}
	return ast.CopyExpr(t.DefaultValue(), &ast.CopyOptions{})
}

func typeString(t Type) string {
	var sb strings.Builder
	Print(&sb, t)
	return sb.String()
}

// IsPlaceholder reports whether t stands in for a type that is not known yet.
// Placeholders can never be emitted.
func IsPlaceholder(t Type) bool {
	switch t.(type) {
	case *Variable, *Unresolved, *Like:
		return true
	}
	return false
}

func mustSymbol(t Type) *ast.Symbol {
	if t.Symbol() == nil {
		fatalf(t, diag.MissingSymbol, "%s type has no symbol", t.Kind())
	}
	return t.Symbol()
}

func fatalf(t Type, invariant string, format string, args ...any) {
	var span source.Span
	if t != nil {
		span = t.Span()
	}
	diag.Fatalf(span, invariant, format, args...)
}

// symType is the type of s, or nil if s is untyped.
func symType(s *ast.Symbol) Type {
	t, _ := s.Type.(Type)
	return t
}
