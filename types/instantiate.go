package types

import (
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
)

// Substitution binds type variables to concrete types.
type Substitution map[*Variable]Type

// Instantiate resolves a type variable against subs. Only variables can be
// instantiated; for any other type, or an unbound variable, ok is false.
func Instantiate(t Type, subs Substitution) (inst Type, ok bool) {
	v, isVar := t.(*Variable)
	if !isVar {
		return nil, false
	}
	inst, ok = subs[v]
	return inst, ok
}

// Specialize deep-copies t with every variable in subs replaced by its
// binding. Types in the result that no variable reaches are shared with t. A
// variable that is still present in the result is an internal error.
func Specialize(t Type, subs Substitution, o *ast.CopyOptions) Type {
	var opts ast.CopyOptions
	if o != nil {
		opts = ast.CopyOptions{Aliases: o.Aliases, Hook: o.Hook}
	}
	opts.Deep = true
	so := withTypeCopier(&opts)
	for v, c := range subs {
		so.Aliases.Put(v, c)
	}
	s := Copy(t, so)
	checkBound(s)
	return s
}

func checkBound(t Type) {
	Walk(t, &Traversal{
		ProcessTop:        true,
		ExploreChildTypes: true,
		Pre: func(u Type) {
			if v, ok := u.(*Variable); ok {
				fatalf(v, diag.UnboundTypeVariable, "type variable %s is unbound in %s", v.Name, t)
			}
		},
	})
}
