package ast

import (
	"fmt"
	"strings"

	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"golang.org/x/exp/slices"
)

type SymbolKind int

const (
	VarSym SymbolKind = iota
	ParamSym
	FnSym
	TypeSym
	EnumSym
	UnresolvedSym
)

func (k SymbolKind) String() string {
	switch k {
	case VarSym:
		return "var"
	case ParamSym:
		return "param"
	case FnSym:
		return "fn"
	case TypeSym:
		return "type"
	case EnumSym:
		return "enum"
	case UnresolvedSym:
		return "unresolved"
	default:
		panic("unreachable")
	}
}

// Symbol is a named entity. CName is the identifier used in generated code and
// starts out equal to Name.
type Symbol struct {
	Name  string
	CName string
	Kind  SymbolKind
	Type  Type
	Def   Decl
	Loc   source.Span

	// Ordinal is the value of an enum member.
	Ordinal int
}

func NewSymbol(kind SymbolKind, name string, t Type) *Symbol {
	return &Symbol{Name: name, CName: name, Kind: kind, Type: t}
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Name
}

// DeclOwner holds an ordered list of declarations that new declarations can be
// spliced into.
type DeclOwner interface {
	InsertDeclsBefore(at Decl, decls ...Decl)
}

type Decl interface {
	Stmt
	Symbol() *Symbol
	Owner() DeclOwner
	SetOwner(DeclOwner)
	isDecl()
}

type declBase struct {
	Sym   *Symbol
	At    source.Span
	owner DeclOwner
}

func (*declBase) isStmt()               {}
func (*declBase) isDecl()               {}
func (d *declBase) Span() source.Span   { return d.At }
func (d *declBase) Symbol() *Symbol     { return d.Sym }
func (d *declBase) Owner() DeclOwner    { return d.owner }
func (d *declBase) SetOwner(o DeclOwner) { d.owner = o }

type VarDecl struct {
	declBase
	Init Expr
}

func NewVarDecl(sym *Symbol, init Expr) *VarDecl {
	d := &VarDecl{declBase: declBase{Sym: sym, At: sym.Loc}, Init: init}
	sym.Def = d
	return d
}

func (d *VarDecl) ASTString(depth int) string {
	var init string
	if d.Init != nil {
		init = d.Init.ASTString(depth + 1)
	}
	return fmt.Sprintf("VarDecl\n%sName: %s\n%sType: %v\n%sInit: %s",
		indent(depth+1), d.Sym, indent(depth+1), d.Sym.Type, indent(depth+1), init)
}

type MethodKind int

const (
	NotMethod MethodKind = iota
	PrimaryMethod
)

type FnDecl struct {
	declBase
	Params []*Symbol
	Ret    Type
	Body   *Block

	// ClassBinding is the symbol of the type the function is a method of.
	ClassBinding *Symbol
	Method       MethodKind
}

func NewFnDecl(sym *Symbol, params []*Symbol, body *Block) *FnDecl {
	if body == nil {
		body = &Block{}
	}
	d := &FnDecl{declBase: declBase{Sym: sym, At: sym.Loc}, Params: params, Body: body}
	sym.Def = d
	for _, p := range params {
		p.Kind = ParamSym
	}
	return d
}

// This is the receiver parameter of a method, or nil.
func (d *FnDecl) This() *Symbol {
	if d.Method == NotMethod || len(d.Params) == 0 {
		return nil
	}
	return d.Params[0]
}

func (d *FnDecl) ASTString(depth int) string {
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = fmt.Sprintf("%s: %v", p, p.Type)
	}
	return fmt.Sprintf("FnDecl\n%sName: %s\n%sParams: (%s)\n%sBody: %s",
		indent(depth+1), d.Sym, indent(depth+1), strings.Join(params, ", "),
		indent(depth+1), d.Body.ASTString(depth+1))
}

// TypeDecl is the declaration point of a named type. The type itself is the
// symbol's Type.
type TypeDecl struct {
	declBase
}

func NewTypeDecl(sym *Symbol) *TypeDecl {
	d := &TypeDecl{declBase{Sym: sym, At: sym.Loc}}
	sym.Def = d
	return d
}

func (d *TypeDecl) ASTString(depth int) string {
	return fmt.Sprintf("TypeDecl\n%sName: %s\n%sType: %v",
		indent(depth+1), d.Sym, indent(depth+1), d.Sym.Type)
}

// Block is an ordered statement list. Declarations appended to a block are
// owned by it.
type Block struct {
	Stmts []Stmt
	At    source.Span
}

func NewBlock(stmts ...Stmt) *Block {
	b := &Block{}
	b.Append(stmts...)
	return b
}

func (*Block) isStmt()             {}
func (b *Block) Span() source.Span { return b.At }
func (b *Block) ASTString(depth int) string {
	return fmt.Sprintf("Block\n%sStmts: %s", indent(depth+1), listString(b.Stmts, depth+1))
}

func (b *Block) adopt(stmts []Stmt) {
	for _, s := range stmts {
		if d, ok := s.(Decl); ok {
			d.SetOwner(b)
		}
	}
}

func (b *Block) Append(stmts ...Stmt) {
	b.adopt(stmts)
	b.Stmts = append(b.Stmts, stmts...)
}

// InsertBefore splices stmts in front of at, which must be in b.
func (b *Block) InsertBefore(at Stmt, stmts ...Stmt) {
	i := slices.Index(b.Stmts, at)
	if i < 0 {
		diag.Fatalf(at.Span(), diag.DeclPlacement, "statement is not in this block")
	}
	b.adopt(stmts)
	b.Stmts = slices.Insert(b.Stmts, i, stmts...)
}

func (b *Block) InsertDeclsBefore(at Decl, decls ...Decl) {
	stmts := make([]Stmt, len(decls))
	for i, d := range decls {
		stmts[i] = d
	}
	b.InsertBefore(at, stmts...)
}

// Decls returns the declarations directly in b, in order.
func (b *Block) Decls() []Decl {
	var ds []Decl
	for _, s := range b.Stmts {
		if d, ok := s.(Decl); ok {
			ds = append(ds, d)
		}
	}
	return ds
}
