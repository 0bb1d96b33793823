package types

import (
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"go.uber.org/zap"
)

// newSeqTemplate builds the generic sequence class:
//
//	class _seq {
//	  type elt;
//	  class _node { var element: elt; var next: _node; }
//	  var length: integer;
//	  var first: _node;
//	  var last: _node;
//	  fn append(e: elt);
//	  fn prepend(e: elt);
//	  fn copy(): _seq;
//	}
//
// The element type variable must stay the first declaration.
func (c *Context) newSeqTemplate() *Class {
	seq := NewClass()
	seqSym := ast.NewSymbol(ast.TypeSym, seqTemplateName, seq)
	seq.AddSymbol(seqSym)
	ast.NewTypeDecl(seqSym)

	elt := NewVariable(seqElemName)
	eltSym := ast.NewSymbol(ast.TypeSym, seqElemName, elt)
	elt.AddSymbol(eltSym)

	node := NewClass()
	nodeSym := ast.NewSymbol(ast.TypeSym, seqNodeName, node)
	node.AddSymbol(nodeSym)
	node.AddDeclarations([]ast.Decl{
		ast.NewVarDecl(ast.NewSymbol(ast.VarSym, "element", elt), nil),
		ast.NewVarDecl(ast.NewSymbol(ast.VarSym, "next", node), nil),
	}, nil)

	scope := c.Internal.AddScope(ast.TypeScope)
	node.Scope = scope.AddScope(ast.TypeScope)
	for _, d := range node.decls {
		node.Scope.Add(d.Symbol())
	}

	method := func(name string, ret Type, params ...*ast.Symbol) *ast.FnDecl {
		this := ast.NewSymbol(ast.ParamSym, "this", seq)
		fn := ast.NewFnDecl(ast.NewSymbol(ast.FnSym, name, nil), append([]*ast.Symbol{this}, params...), nil)
		if ret != nil {
			fn.Ret = ret
		}
		return fn
	}
	seq.AddDeclarations([]ast.Decl{
		ast.NewTypeDecl(eltSym),
		ast.NewTypeDecl(nodeSym),
		ast.NewVarDecl(ast.NewSymbol(ast.VarSym, "length", c.Integer), ast.NewIntLit(0)),
		ast.NewVarDecl(ast.NewSymbol(ast.VarSym, "first", node), nil),
		ast.NewVarDecl(ast.NewSymbol(ast.VarSym, "last", node), nil),
		method("append", nil, ast.NewSymbol(ast.ParamSym, "e", elt)),
		method("prepend", nil, ast.NewSymbol(ast.ParamSym, "e", elt)),
		method("copy", seq),
	}, nil)
	seq.Scope = scope
	for _, d := range seq.decls {
		scope.Add(d.Symbol())
	}
	return seq
}

// CreateSeqType instantiates the sequence template for elem under the given
// name. Every declaration of the template after the element variable is
// deep-copied into a fresh scope with the element variable replaced by elem
// and the template replaced by the new type. Methods and the node type get C
// names prefixed by name so that distinct instantiations never collide.
func (c *Context) CreateSeqType(scopes *ast.Scopes, name string, elem Type) *Seq {
	tmpl := c.seq
	seq := NewSeq(elem)
	sym := ast.NewSymbol(ast.TypeSym, name, seq)
	seq.AddSymbol(sym)

	o := withTypeCopier(&ast.CopyOptions{Deep: true})
	o.Aliases.Put(tmpl, seq)
	o.Aliases.Put(tmpl.sym, sym)
	o.Aliases.Put(tmpl.decls[0].Symbol().Type, elem)

	scope := scopes.Push(ast.TypeScope)
	decls := ast.CopyDecls(tmpl.decls[1:], o)
	seq.AddDeclarations(decls, nil)
	scopes.DefineDecls(decls)
	if popped := scopes.Pop(); popped != scope {
		diag.Fatalf(source.Span{}, diag.ScopeDiscipline, "scope changed while instantiating %s", name)
	}
	seq.Scope = scope

	for _, m := range seq.methods {
		m.Sym.CName = source.Mangle(name, "_", m.Sym.Name)
	}
	node, ok := scope.LookupLocal(seqNodeName)
	if !ok {
		diag.Fatalf(source.Span{}, diag.MissingSymbol, "sequence template has no %s", seqNodeName)
	}
	node.CName = source.Mangle(name, seqNodeName)

	c.Log.Debug("instantiated sequence", zap.String("name", name), zap.Stringer("elem", elem))
	return seq
}
