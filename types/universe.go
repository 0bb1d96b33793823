package types

import (
	"github.com/benbjohnson/immutable"
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"go.uber.org/zap"
)

// The nil reference is universal: it does not depend on any Context.
var (
	NilType   = &Nil{Common: newCommon()}
	NilSymbol = ast.NewSymbol(ast.VarSym, "nil", NilType)
)

func init() {
	NilType.sym = ast.NewSymbol(ast.TypeSym, "_nilType", NilType)
}

// Names of the internal helpers that synthesized code calls.
const (
	InitStringFn      = "_init_string"
	UnionSetFn        = "_UNION_SET"
	UnionCheckFn      = "_UNION_CHECK"
	UnionCheckQuietFn = "_UNION_CHECK_QUIET"

	seqTemplateName = "_seq"
	seqNodeName     = "_node"
	seqElemName     = "elt"
)

// Context is the state of one compilation: the builtin types, the internal
// scope and the sum-type cache. The builtin registry is populated once by
// NewContext and never changes afterwards.
type Context struct {
	Void    *Primitive
	Unknown *Primitive
	Boolean *Primitive
	Integer *Primitive
	Float   *Primitive
	Complex *Primitive
	String  *Primitive
	Numeric *Primitive
	Any     *Primitive
	Object  *Primitive
	Locale  *Primitive

	Nil *Nil

	// Internal is the outermost scope. It holds the builtin types and the
	// helpers that synthesized code refers to.
	Internal *ast.Env

	Log *zap.Logger

	builtins *immutable.SortedMap
	seq      *Class
	sums     map[string]*Sum
	sumUID   int
}

type Option func(*Context)

func WithLogger(l *zap.Logger) Option {
	return func(c *Context) { c.Log = l }
}

func NewContext(opts ...Option) *Context {
	c := &Context{
		Nil:      NilType,
		Internal: ast.NewEnv(nil, ast.InternalScope),
		Log:      zap.NewNop(),
		sums:     make(map[string]*Sum),
	}
	for _, opt := range opts {
		opt(c)
	}
	b := immutable.NewSortedMapBuilder(immutable.NewSortedMap(nil))
	prim := func(kind PrimKind, name, cname string, def ast.Expr) *Primitive {
		p := &Primitive{Common: newCommon(), Prim: kind}
		sym := ast.NewSymbol(ast.TypeSym, name, p)
		sym.CName = cname
		p.sym = sym
		p.defaultVal = def
		b.Set(name, p)
		c.Internal.Add(sym)
		return p
	}
	c.Void = prim(PrimVoid, "void", "void", nil)
	c.Unknown = prim(PrimUnknown, "???", "???", nil)
	c.Boolean = prim(PrimBoolean, "boolean", "_boolean", &ast.BoolLit{Value: false})
	c.Integer = prim(PrimInteger, "integer", "_integer64", ast.NewIntLit(0))
	c.Float = prim(PrimFloat, "float", "_float64", &ast.FloatLit{Value: 0, Text: "0.0"})
	c.Complex = prim(PrimComplex, "complex", "_complex128", &ast.FloatLit{Value: 0, Text: "0.0"})
	c.String = prim(PrimString, "string", "_string", &ast.StringLit{Value: ""})
	c.Numeric = prim(PrimNumeric, "numeric", "_numeric", nil)
	c.Any = prim(PrimAny, "any", "_any", nil)
	c.Object = prim(PrimObject, "object", "_object", nil)
	c.Locale = prim(PrimLocale, "locale", "_locale", nil)

	c.Internal.Add(NilSymbol)
	b.Set(NilType.sym.Name, NilType)
	for _, name := range []string{InitStringFn, UnionSetFn, UnionCheckFn, UnionCheckQuietFn} {
		c.Internal.Add(ast.NewSymbol(ast.FnSym, name, c.Void))
	}

	c.seq = c.newSeqTemplate()
	b.Set(seqTemplateName, c.seq)
	c.builtins = b.Map()
	return c
}

// Builtin looks up a builtin type by its source name.
func (c *Context) Builtin(name string) (Type, bool) {
	t, ok := c.builtins.Get(name)
	if !ok {
		return nil, false
	}
	return t.(Type), true
}

// BuiltinNames lists the builtin types in name order.
func (c *Context) BuiltinNames() []string {
	var names []string
	it := c.builtins.Iterator()
	for !it.Done() {
		k, _ := it.Next()
		names = append(names, k.(string))
	}
	return names
}

// LookupInternal returns the internal symbol with the given name. A missing
// internal symbol means the Context was not set up properly.
func (c *Context) LookupInternal(name string) *ast.Symbol {
	sym, ok := c.Internal.LookupLocal(name)
	if !ok {
		diag.Fatalf(source.Span{}, diag.MissingSymbol, "no internal symbol %q", name)
	}
	return sym
}

// NewScopes starts a scope stack below the internal scope.
func (c *Context) NewScopes() *ast.Scopes {
	s := ast.NewScopes(c.Internal)
	s.Push(ast.ModuleScope)
	return s
}

// SeqTemplate is the generic sequence class that CreateSeqType instantiates.
func (c *Context) SeqTemplate() *Class { return c.seq }

// IsString reports whether t is, or aliases, the builtin string type.
func (c *Context) IsString(t Type) bool {
	for {
		switch u := t.(type) {
		case *User:
			t = u.Definition
		case *Primitive:
			return u == c.String
		default:
			return false
		}
	}
}
