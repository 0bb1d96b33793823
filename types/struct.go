package types

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"golang.org/x/exp/slices"
)

// Structural is implemented by the types with a body of declarations: classes,
// records, unions and sequences.
type Structural interface {
	Type
	Body() *Struct
}

var (
	_ Structural    = (*Class)(nil)
	_ Structural    = (*Record)(nil)
	_ Structural    = (*Union)(nil)
	_ Structural    = (*Seq)(nil)
	_ ast.DeclOwner = (*Struct)(nil)
)

// Struct is the body shared by the structural types. The declaration list is
// the source of truth; fields, methods and nested types are derived from it
// and kept in declaration order.
type Struct struct {
	Common
	decls   []ast.Decl
	fields  []*ast.VarDecl
	methods []*ast.FnDecl
	types   []*ast.TypeDecl

	// Scope holds the symbols declared in the body.
	Scope       *ast.Env
	Constructor *ast.FnDecl
}

func (s *Struct) Body() *Struct { return s }

func (s *Struct) Decls() []ast.Decl            { return s.decls }
func (s *Struct) Fields() []*ast.VarDecl       { return s.fields }
func (s *Struct) Methods() []*ast.FnDecl       { return s.methods }
func (s *Struct) NestedTypes() []*ast.TypeDecl { return s.types }

func (s *Struct) Field(name string) (*ast.VarDecl, bool) {
	return lo.Find(s.fields, func(f *ast.VarDecl) bool { return f.Sym.Name == name })
}

func (s *Struct) Method(name string) (*ast.FnDecl, bool) {
	return lo.Find(s.methods, func(m *ast.FnDecl) bool { return m.Sym.Name == name })
}

// AddDeclarations splices decls into the body in front of before, or at the
// end if before is nil. Functions become methods bound to the type's symbol.
func (s *Struct) AddDeclarations(decls []ast.Decl, before ast.Decl) {
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.FnDecl:
			d.ClassBinding = s.sym
			d.Method = ast.PrimaryMethod
		case *ast.VarDecl, *ast.TypeDecl:
		default:
			panic(fmt.Sprintf("unhandled decl: %T", d))
		}
	}
	s.splice(decls, before)
}

func (s *Struct) InsertDeclsBefore(at ast.Decl, decls ...ast.Decl) {
	s.AddDeclarations(decls, at)
}

func (s *Struct) splice(decls []ast.Decl, before ast.Decl) {
	for _, d := range decls {
		d.SetOwner(s)
	}
	if before == nil {
		s.decls = append(s.decls, decls...)
	} else {
		i := slices.Index(s.decls, before)
		if i < 0 {
			diag.Fatalf(before.Span(), diag.DeclPlacement, "%s is not declared in %s", before.Symbol(), s.name())
		}
		s.decls = slices.Insert(s.decls, i, decls...)
	}
	s.derive()
}

func (s *Struct) derive() {
	s.fields = lo.FilterMap(s.decls, func(d ast.Decl, _ int) (*ast.VarDecl, bool) {
		v, ok := d.(*ast.VarDecl)
		return v, ok
	})
	s.methods = lo.FilterMap(s.decls, func(d ast.Decl, _ int) (*ast.FnDecl, bool) {
		f, ok := d.(*ast.FnDecl)
		return f, ok
	})
	s.types = lo.FilterMap(s.decls, func(d ast.Decl, _ int) (*ast.TypeDecl, bool) {
		t, ok := d.(*ast.TypeDecl)
		return t, ok
	})
}

// Class is a reference type. Its default value is nil.
type Class struct {
	Struct
}

func NewClass() *Class {
	c := &Class{Struct{Common: newCommon()}}
	c.defaultVal = &ast.Variable{Sym: NilSymbol}
	return c
}

func (*Class) Kind() Kind { return KindClass }
func (c *Class) String() string { return typeString(c) }

// Record is a value type.
type Record struct {
	Struct
}

func NewRecord() *Record {
	return &Record{Struct{Common: newCommon()}}
}

func (*Record) Kind() Kind { return KindRecord }
func (r *Record) String() string { return typeString(r) }

// Union holds one of its fields at a time. Selector is the enum that tags the
// active field; it is built by BuildFieldSelector once the union has been
// declared.
type Union struct {
	Struct
	Selector *Enum
}

func NewUnion() *Union {
	return &Union{Struct: Struct{Common: newCommon()}}
}

func (*Union) Kind() Kind { return KindUnion }
func (u *Union) String() string { return typeString(u) }

// Seq is a linked sequence of Elem, instantiated from the sequence template.
type Seq struct {
	Class
	Elem Type
}

func NewSeq(elem Type) *Seq {
	s := &Seq{Class: Class{Struct{Common: newCommon()}}, Elem: elem}
	s.defaultVal = &ast.Variable{Sym: NilSymbol}
	return s
}

func (*Seq) Kind() Kind { return KindSeq }
func (s *Seq) String() string { return typeString(s) }

// Node is the sequence's nested node type.
func (s *Seq) Node() (*ast.TypeDecl, bool) {
	return lo.Find(s.types, func(d *ast.TypeDecl) bool { return d.Sym.Name == seqNodeName })
}
