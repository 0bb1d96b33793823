package ast

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type ScopeKind int

const (
	InternalScope ScopeKind = iota
	ModuleScope
	TypeScope
	FnScope
	LocalScope
)

func (k ScopeKind) String() string {
	switch k {
	case InternalScope:
		return "internal"
	case ModuleScope:
		return "module"
	case TypeScope:
		return "type"
	case FnScope:
		return "fn"
	case LocalScope:
		return "local"
	default:
		panic("unreachable")
	}
}

type Env struct {
	Parent  *Env
	Kind    ScopeKind
	Symbols map[string]*Symbol
}

func NewEnv(parent *Env, kind ScopeKind) *Env {
	return &Env{
		Parent:  parent,
		Kind:    kind,
		Symbols: make(map[string]*Symbol),
	}
}

func (e *Env) AddScope(kind ScopeKind) *Env {
	return NewEnv(e, kind)
}

// Add defines sym in e. Defining a name twice in one scope is an internal
// error; shadowing an outer scope is not.
func (e *Env) Add(sym *Symbol) {
	if sym.Name == "_" {
		return
	}
	if prev, ok := e.Symbols[sym.Name]; ok && prev != sym {
		diag.Fatalf(sym.Loc, diag.DuplicateSymbol, "duplicate symbol %q in %s scope", sym.Name, e.Kind)
	}
	e.Symbols[sym.Name] = sym
}

func (e *Env) LookupLocal(name string) (*Symbol, bool) {
	s, ok := e.Symbols[name]
	return s, ok
}

func (e *Env) LookupStack(name string) (s *Symbol, p *Env, ok bool) {
	p = e
	for p != nil {
		if s, ok = p.LookupLocal(name); ok {
			return s, p, ok
		}
		p = p.Parent
	}
	return nil, nil, false
}

func (e *Env) String() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', 0)
	envString(w, e)
	w.Flush()
	return sb.String()
}

func envString(buf io.Writer, e *Env) {
	if e.Parent != nil {
		envString(buf, e.Parent)
		fmt.Fprint(buf, "↑\n")
	}
	if len(e.Symbols) == 0 {
		fmt.Fprintf(buf, "(empty %s)\n", e.Kind)
		return
	}
	names := maps.Keys(e.Symbols)
	slices.Sort(names)
	for _, name := range names {
		s := e.Symbols[name]
		fmt.Fprintf(buf, "%s:\t%s\t%v\n", name, s.Kind, s.Type)
	}
}

// Scopes is the stack of lexical scopes that declarations are defined into
// while the tree is being built or extended. Pushes and pops must pair up.
type Scopes struct {
	root  *Env
	cur   *Env
	depth int
}

func NewScopes(root *Env) *Scopes {
	return &Scopes{root: root, cur: root}
}

func (s *Scopes) Current() *Env { return s.cur }
func (s *Scopes) Depth() int    { return s.depth }

func (s *Scopes) Push(kind ScopeKind) *Env {
	s.cur = s.cur.AddScope(kind)
	s.depth++
	return s.cur
}

// Pop leaves the current scope and returns it.
func (s *Scopes) Pop() *Env {
	if s.cur == s.root {
		diag.Fatalf(source.Span{}, diag.ScopeDiscipline, "pop of the root scope")
	}
	e := s.cur
	s.cur = e.Parent
	s.depth--
	return e
}

func (s *Scopes) Define(sym *Symbol) {
	s.cur.Add(sym)
}

// DefineDecls defines the symbol of every declaration in ds.
func (s *Scopes) DefineDecls(ds []Decl) {
	for _, d := range ds {
		s.Define(d.Symbol())
	}
}

func (s *Scopes) Lookup(name string) (*Symbol, bool) {
	sym, _, ok := s.cur.LookupStack(name)
	return sym, ok
}
