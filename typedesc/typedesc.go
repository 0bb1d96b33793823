// Package typedesc loads a YAML description of named types and elaborates it
// into a declaration block ready for emission.
//
// A description lists types in any order; names may be used before they are
// declared:
//
//	types:
//	  - {name: Color, kind: enum, members: [RED, GREEN, "BLUE=5"]}
//	  - name: Point
//	    kind: record
//	    fields:
//	      - {name: x, type: integer}
//	      - {name: c, type: Color, init: GREEN}
//	  - {name: D, kind: domain, rank: 2}
//	  - {name: Grid, kind: array, domain: D, elem: float}
//	  - {name: intseq, kind: seq, elem: integer}
//	vars:
//	  - {name: origin, type: Point}
package typedesc

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/source"
	"github.com/smasher164/ctype/types"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type File struct {
	Types []TypeDesc `yaml:"types"`
	Vars  []VarDesc  `yaml:"vars,omitempty"`
}

// TypeDesc describes one named type. Which fields apply depends on Kind.
type TypeDesc struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// enum; a member is NAME or NAME=ordinal
	Members []string `yaml:"members,omitempty"`
	// record, class, union
	Fields []FieldDesc `yaml:"fields,omitempty"`
	// tuple
	Components []string `yaml:"components,omitempty"`
	// domain, and array when no named domain is given
	Rank int `yaml:"rank,omitempty"`
	// array
	Domain string `yaml:"domain,omitempty"`
	// array, seq
	Elem string `yaml:"elem,omitempty"`
	// alias
	Of      string `yaml:"of,omitempty"`
	Default string `yaml:"default,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

func (d *TypeDesc) UnmarshalYAML(n *yaml.Node) error {
	type plain TypeDesc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line, d.Column = n.Line, n.Column
	return nil
}

type FieldDesc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Init string `yaml:"init,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

func (d *FieldDesc) UnmarshalYAML(n *yaml.Node) error {
	type plain FieldDesc
	if err := n.Decode((*plain)(d)); err != nil {
		return err
	}
	d.Line, d.Column = n.Line, n.Column
	return nil
}

// VarDesc is a module-level variable. Its type is emitted like any declared
// type.
type VarDesc = FieldDesc

// unsetField names the selector member of a union with no active field.
const unsetField = "_uninitialized"

const (
	KindEnum   = "enum"
	KindRecord = "record"
	KindClass  = "class"
	KindUnion  = "union"
	KindTuple  = "tuple"
	KindDomain = "domain"
	KindArray  = "array"
	KindSeq    = "seq"
	KindAlias  = "alias"
)

// Parse decodes a description without elaborating it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse type description")
	}
	return &f, nil
}

// Program is an elaborated description.
type Program struct {
	Ctx    *types.Context
	Block  *ast.Block
	Scopes *ast.Scopes
}

// Lookup finds a declared type by name.
func (p *Program) Lookup(name string) (types.Type, bool) {
	sym, ok := p.Scopes.Lookup(name)
	if !ok || sym.Kind != ast.TypeSym {
		return nil, false
	}
	t, ok := sym.Type.(types.Type)
	return t, ok
}

// Load parses and elaborates the description in data. filename only labels
// positions.
func Load(ctx *types.Context, filename string, data []byte) (*Program, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return Elaborate(ctx, filename, f)
}

type elaborator struct {
	ctx      *types.Context
	filename string
	scopes   *ast.Scopes
	blk      *ast.Block

	descs    map[string]*TypeDesc
	built    map[string]types.Type
	building map[string]bool
	// structs in the order they were declared
	structs []*TypeDesc
}

// Elaborate turns f into declarations. Types are declared before their
// fields are resolved, so structural types may refer to each other and to
// themselves. Unions then get their field selectors, and every record, class
// and union gets a constructor and a write method.
func Elaborate(ctx *types.Context, filename string, f *File) (*Program, error) {
	e := &elaborator{
		ctx:      ctx,
		filename: filename,
		scopes:   ctx.NewScopes(),
		blk:      ast.NewBlock(),
		descs:    make(map[string]*TypeDesc),
		built:    make(map[string]types.Type),
		building: make(map[string]bool),
	}
	for i := range f.Types {
		d := &f.Types[i]
		if err := e.check(d); err != nil {
			return nil, err
		}
		e.descs[d.Name] = d
	}
	if err := e.reserve(f); err != nil {
		return nil, err
	}
	for i := range f.Types {
		if _, err := e.define(&f.Types[i]); err != nil {
			return nil, err
		}
	}
	for _, d := range e.structs {
		if err := e.fields(d); err != nil {
			return nil, err
		}
	}
	for _, d := range e.structs {
		e.synthesize(e.built[d.Name].(types.Structural))
	}
	for i := range f.Vars {
		if err := e.variable(&f.Vars[i]); err != nil {
			return nil, err
		}
	}
	ctx.Log.Debug("elaborated type description",
		zap.String("file", filename), zap.Int("count", len(e.built)))
	return &Program{Ctx: ctx, Block: e.blk, Scopes: e.scopes}, nil
}

func (e *elaborator) span(line, column int) source.Span {
	return source.At(e.filename, line, column)
}

func (e *elaborator) errorf(at source.Span, format string, args ...any) error {
	return errors.Wrapf(errors.Newf(format, args...), "%s", at)
}

func (e *elaborator) check(d *TypeDesc) error {
	at := e.span(d.Line, d.Column)
	if !source.IsIdent(d.Name) {
		return e.errorf(at, "invalid type name %q", d.Name)
	}
	if _, ok := e.descs[d.Name]; ok {
		return e.errorf(at, "type %s declared twice", d.Name)
	}
	if _, ok := e.ctx.Builtin(d.Name); ok {
		return e.errorf(at, "type %s redeclares a builtin type", d.Name)
	}
	switch d.Kind {
	case KindEnum, KindRecord, KindClass, KindUnion, KindTuple, KindDomain, KindArray, KindSeq, KindAlias:
		return nil
	}
	return e.errorf(at, "type %s has unknown kind %q", d.Name, d.Kind)
}

// reserve rejects declared names that equal a C identifier generated for
// another type: union selectors, array domains, sequence nodes and methods,
// class typedefs, constructors and write methods.
func (e *elaborator) reserve(f *File) error {
	gen := make(map[string]string)
	add := func(owner string, names ...string) {
		for _, n := range names {
			if _, ok := gen[n]; !ok {
				gen[n] = owner
			}
		}
	}
	for _, d := range f.Types {
		switch d.Kind {
		case KindUnion:
			sel := "_" + d.Name + "_union_id_"
			add(d.Name, sel, sel+unsetField)
			for _, fd := range d.Fields {
				add(d.Name, sel+fd.Name)
			}
		case KindArray:
			if d.Domain == "" {
				add(d.Name, source.Mangle("_", d.Name, "_domain"))
			}
		case KindSeq:
			node := source.Mangle(d.Name, "_node")
			add(d.Name, "_"+d.Name, node, "_"+node,
				source.Mangle(d.Name, "_append"), source.Mangle(d.Name, "_prepend"), source.Mangle(d.Name, "_copy"))
		}
		switch d.Kind {
		case KindClass:
			add(d.Name, "_"+d.Name)
			fallthrough
		case KindRecord, KindUnion:
			add(d.Name, source.Mangle(d.Name, "_write"), source.Mangle("_construct_", d.Name))
		}
	}
	clash := func(name string, line, column int) error {
		if owner, ok := gen[name]; ok {
			return e.errorf(e.span(line, column), "%s collides with a name generated for %s", name, owner)
		}
		return nil
	}
	for _, d := range f.Types {
		if err := clash(d.Name, d.Line, d.Column); err != nil {
			return err
		}
		for _, m := range d.Members {
			name, _, _ := strings.Cut(m, "=")
			if err := clash(strings.TrimSpace(name), d.Line, d.Column); err != nil {
				return err
			}
		}
	}
	for _, v := range f.Vars {
		if err := clash(v.Name, v.Line, v.Column); err != nil {
			return err
		}
	}
	return nil
}

// declare names t and adds its declaration to the block.
func (e *elaborator) declare(d *TypeDesc, t types.Type) error {
	at := e.span(d.Line, d.Column)
	if _, ok := e.scopes.Current().LookupLocal(d.Name); ok {
		return e.errorf(at, "%s is already declared", d.Name)
	}
	sym := t.Symbol()
	if sym == nil {
		sym = ast.NewSymbol(ast.TypeSym, d.Name, t)
		t.AddSymbol(sym)
	}
	sym.Loc = at
	e.scopes.Define(sym)
	e.blk.Append(ast.NewTypeDecl(sym))
	e.built[d.Name] = t
	return nil
}

// define builds the type described by d, first building the types it refers
// to. Structural types only get a shell here.
func (e *elaborator) define(d *TypeDesc) (types.Type, error) {
	if t, ok := e.built[d.Name]; ok {
		return t, nil
	}
	at := e.span(d.Line, d.Column)
	if e.building[d.Name] {
		return nil, e.errorf(at, "type %s refers to itself", d.Name)
	}
	e.building[d.Name] = true
	defer delete(e.building, d.Name)

	var t types.Type
	switch d.Kind {
	case KindRecord, KindClass, KindUnion:
		var s types.Structural
		switch d.Kind {
		case KindRecord:
			s = types.NewRecord()
		case KindClass:
			s = types.NewClass()
		default:
			s = types.NewUnion()
		}
		s.AddSymbol(ast.NewSymbol(ast.TypeSym, d.Name, s))
		s.Body().Scope = e.scopes.Current().AddScope(ast.TypeScope)
		e.structs = append(e.structs, d)
		t = s
	case KindEnum:
		en, err := e.enum(d)
		if err != nil {
			return nil, err
		}
		t = en
	case KindTuple:
		if len(d.Components) == 0 {
			return nil, e.errorf(at, "tuple %s has no components", d.Name)
		}
		cs := make([]types.Type, len(d.Components))
		for i, c := range d.Components {
			ct, err := e.ref(c, at)
			if err != nil {
				return nil, err
			}
			cs[i] = ct
		}
		t = types.NewTuple(cs[0], cs[1:]...)
	case KindDomain:
		if d.Rank < 1 {
			return nil, e.errorf(at, "domain %s needs a positive rank", d.Name)
		}
		t = e.ctx.NewDomain(d.Rank)
	case KindArray:
		elem, err := e.ref(d.Elem, at)
		if err != nil {
			return nil, err
		}
		dom, err := e.arrayDomain(d, at)
		if err != nil {
			return nil, err
		}
		t = types.NewArray(dom, elem)
	case KindSeq:
		elem, err := e.ref(d.Elem, at)
		if err != nil {
			return nil, err
		}
		t = e.ctx.CreateSeqType(e.scopes, d.Name, elem)
	case KindAlias:
		def, err := e.ref(d.Of, at)
		if err != nil {
			return nil, err
		}
		var dv ast.Expr
		if d.Default != "" {
			if dv, err = e.literal(def, d.Default, at); err != nil {
				return nil, err
			}
		}
		t = types.NewUser(def, dv)
	}
	if err := e.declare(d, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (e *elaborator) enum(d *TypeDesc) (*types.Enum, error) {
	at := e.span(d.Line, d.Column)
	en := types.NewEnum()
	for _, m := range d.Members {
		name, value, explicit := strings.Cut(m, "=")
		name = strings.TrimSpace(name)
		if !source.IsIdent(name) {
			return nil, e.errorf(at, "invalid member %q of enum %s", m, d.Name)
		}
		if _, ok := e.scopes.Current().LookupLocal(name); ok {
			return nil, e.errorf(at, "enum member %s of %s is already declared", name, d.Name)
		}
		if _, dup := en.Member(name); dup {
			return nil, e.errorf(at, "enum %s has member %s twice", d.Name, name)
		}
		var em *types.EnumMember
		if explicit {
			ord, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, e.errorf(at, "enum member %s has ordinal %q", name, value)
			}
			em = en.AddMemberValue(name, ord)
		} else {
			em = en.AddMember(name)
		}
		em.Sym.Loc = at
		e.scopes.Define(em.Sym)
	}
	return en, nil
}

// arrayDomain is the named domain of d, or a fresh domain named after the
// array when only a rank is given.
func (e *elaborator) arrayDomain(d *TypeDesc, at source.Span) (*types.Domain, error) {
	if d.Domain == "" {
		if d.Rank < 1 {
			return nil, e.errorf(at, "array %s needs a domain or a positive rank", d.Name)
		}
		dom := e.ctx.NewDomain(d.Rank)
		name := source.Mangle("_", d.Name, "_domain")
		if err := e.declare(&TypeDesc{Name: name, Kind: KindDomain, Line: d.Line, Column: d.Column}, dom); err != nil {
			return nil, err
		}
		return dom, nil
	}
	t, err := e.ref(d.Domain, at)
	if err != nil {
		return nil, err
	}
	dom, ok := t.(*types.Domain)
	if !ok {
		return nil, e.errorf(at, "array %s: %s is a %s, not a domain", d.Name, d.Domain, t.Kind())
	}
	return dom, nil
}

// ref resolves a type name used at at.
func (e *elaborator) ref(name string, at source.Span) (types.Type, error) {
	if name == "" {
		return nil, e.errorf(at, "missing type name")
	}
	if d, ok := e.descs[name]; ok {
		return e.define(d)
	}
	if t, ok := e.ctx.Builtin(name); ok {
		if p, ok := t.(*types.Primitive); ok && p != e.ctx.Void && p != e.ctx.Unknown {
			return p, nil
		}
	}
	return nil, e.errorf(at, "unknown type %s", name)
}

// literal parses text as a constant of type t.
func (e *elaborator) literal(t types.Type, text string, at source.Span) (ast.Expr, error) {
	under := t
	for {
		u, ok := under.(*types.User)
		if !ok {
			break
		}
		under = u.Definition
	}
	switch u := under.(type) {
	case *types.Primitive:
		switch u {
		case e.ctx.Boolean:
			v, err := strconv.ParseBool(text)
			if err != nil {
				return nil, e.errorf(at, "%q is not a boolean", text)
			}
			return &ast.BoolLit{Value: v, At: at}, nil
		case e.ctx.Integer:
			v, err := strconv.ParseInt(text, 0, 64)
			if err != nil {
				return nil, e.errorf(at, "%q is not an integer", text)
			}
			return &ast.IntLit{Value: v, Text: text, At: at}, nil
		case e.ctx.Float, e.ctx.Complex:
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, e.errorf(at, "%q is not a float", text)
			}
			return &ast.FloatLit{Value: v, Text: text, At: at}, nil
		case e.ctx.String:
			return &ast.StringLit{Value: text, At: at}, nil
		}
	case *types.Enum:
		m, ok := u.Member(text)
		if !ok {
			return nil, e.errorf(at, "%s is not a member of %s", text, t)
		}
		return &ast.Variable{Sym: m.Sym, At: at}, nil
	}
	return nil, e.errorf(at, "type %s has no literals", t)
}

func (e *elaborator) fields(d *TypeDesc) error {
	s := e.built[d.Name].(types.Structural)
	var decls []ast.Decl
	for _, f := range d.Fields {
		at := e.span(f.Line, f.Column)
		if !source.IsIdent(f.Name) {
			return e.errorf(at, "invalid field name %q", f.Name)
		}
		if f.Name == "write" {
			return e.errorf(at, "field name write of %s is reserved for the write method", d.Name)
		}
		if d.Kind == KindUnion && f.Name == unsetField {
			return e.errorf(at, "field name %s of %s is reserved for the unset state", unsetField, d.Name)
		}
		if _, dup := s.Body().Scope.LookupLocal(f.Name); dup {
			return e.errorf(at, "%s has field %s twice", d.Name, f.Name)
		}
		ft, err := e.ref(f.Type, at)
		if err != nil {
			return err
		}
		if d.Kind != KindClass && embeds(ft, s, make(map[types.Type]bool)) {
			return e.errorf(at, "%s %s contains itself through field %s", d.Kind, d.Name, f.Name)
		}
		var init ast.Expr
		if f.Init != "" {
			if d.Kind == KindUnion {
				return e.errorf(at, "union field %s cannot have an initializer", f.Name)
			}
			if init, err = e.literal(ft, f.Init, at); err != nil {
				return err
			}
		}
		sym := ast.NewSymbol(ast.VarSym, f.Name, ft)
		sym.Loc = at
		s.Body().Scope.Add(sym)
		decls = append(decls, ast.NewVarDecl(sym, init))
	}
	s.Body().AddDeclarations(decls, nil)
	return nil
}

// embeds reports whether a value of type t holds a value of type target
// directly, as opposed to through a reference.
func embeds(t, target types.Type, seen map[types.Type]bool) bool {
	if t == target {
		return true
	}
	if seen[t] {
		return false
	}
	seen[t] = true
	switch t := t.(type) {
	case *types.Record:
		for _, f := range t.Fields() {
			if embeds(f.Sym.Type.(types.Type), target, seen) {
				return true
			}
		}
	case *types.Union:
		for _, f := range t.Fields() {
			if embeds(f.Sym.Type.(types.Type), target, seen) {
				return true
			}
		}
	case *types.Tuple:
		for _, c := range t.Components {
			if embeds(c, target, seen) {
				return true
			}
		}
	case *types.User:
		return embeds(t.Definition, target, seen)
	}
	return false
}

func (e *elaborator) synthesize(s types.Structural) {
	if u, ok := s.(*types.Union); ok {
		e.ctx.BuildFieldSelector(u)
	}
	e.ctx.BuildConstructor(s)
	e.ctx.BuildWriteMethod(s)
}

func (e *elaborator) variable(v *VarDesc) error {
	at := e.span(v.Line, v.Column)
	if !source.IsIdent(v.Name) {
		return e.errorf(at, "invalid variable name %q", v.Name)
	}
	if _, ok := e.scopes.Current().LookupLocal(v.Name); ok {
		return e.errorf(at, "%s is already declared", v.Name)
	}
	t, err := e.ref(v.Type, at)
	if err != nil {
		return err
	}
	var init ast.Expr
	if v.Init != "" {
		if init, err = e.literal(t, v.Init, at); err != nil {
			return err
		}
	}
	sym := ast.NewSymbol(ast.VarSym, v.Name, t)
	sym.Loc = at
	e.scopes.Define(sym)
	e.blk.Append(ast.NewVarDecl(sym, init))
	return nil
}
